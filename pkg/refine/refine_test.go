package refine

import (
	"context"
	"testing"
	"time"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
	"github.com/archform/layoutgen/pkg/packing"
)

func smallBrief(t *testing.T) *brief.Brief {
	t.Helper()
	b, err := brief.LoadBriefFromBytes([]byte(`
w: 6000
h: 5000
seed: 99
rooms:
  - name: living
    minW: 3000
    minH: 3000
  - name: bed1
    minW: 2000
    minH: 2000
  - name: bath1
    minW: 1500
    minH: 1500
`))
	if err != nil {
		t.Fatalf("LoadBriefFromBytes: %v", err)
	}
	return b
}

func TestRefineReturnsFeasibleOrInfeasible(t *testing.T) {
	b := smallBrief(t)
	seed := packing.HubFirstPack(b)
	cfg := Config{TimeLimit: 200 * time.Millisecond, Workers: 2, Restarts: 2, MaxIters: 50}
	res := Refine(context.Background(), b, seed, b.Seed, cfg)
	if res.Status != StatusFeasible && res.Status != StatusOptimal && res.Status != StatusInfeasible {
		t.Fatalf("unexpected status %q", res.Status)
	}
	if res.Status == StatusFeasible || res.Status == StatusOptimal {
		for i := 0; i < len(res.Layout.Rooms); i++ {
			for j := i + 1; j < len(res.Layout.Rooms); j++ {
				if layout.Overlaps(res.Layout.Rooms[i], res.Layout.Rooms[j]) {
					t.Errorf("feasible result still has overlap: %+v vs %+v", res.Layout.Rooms[i], res.Layout.Rooms[j])
				}
			}
		}
	}
}

func TestRefineIsDeterministicGivenSeed(t *testing.T) {
	b := smallBrief(t)
	seed := packing.HubFirstPack(b)
	cfg := Config{TimeLimit: 150 * time.Millisecond, Workers: 2, Restarts: 2, MaxIters: 50}

	r1 := Refine(context.Background(), b, seed, 555, cfg)
	r2 := Refine(context.Background(), b, seed, 555, cfg)

	if r1.Status != r2.Status {
		t.Fatalf("status differs across runs: %q vs %q", r1.Status, r2.Status)
	}
	if r1.Layout == nil || r2.Layout == nil {
		return
	}
	for i := range r1.Layout.Rooms {
		if r1.Layout.Rooms[i] != r2.Layout.Rooms[i] {
			t.Fatalf("Refine not deterministic at room %d: %+v vs %+v", i, r1.Layout.Rooms[i], r2.Layout.Rooms[i])
		}
	}
}

func TestRefineRespectsContextCancellation(t *testing.T) {
	b := smallBrief(t)
	seed := packing.HubFirstPack(b)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{TimeLimit: time.Second, Workers: 2, Restarts: 2, MaxIters: 10000}
	res := Refine(ctx, b, seed, b.Seed, cfg)
	if res.Status == "" {
		t.Fatal("Refine returned zero-value status under cancelled context")
	}
}
