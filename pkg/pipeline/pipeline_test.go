package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
)

func mustBrief(t *testing.T, yaml string) *brief.Brief {
	t.Helper()
	b, err := brief.LoadBriefFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("LoadBriefFromBytes: %v", err)
	}
	return b
}

// S1: five rooms placed, no overlap, living touches kitchen.
func TestScenarioS1FiveRoomsNoOverlapLivingTouchesKitchen(t *testing.T) {
	b := mustBrief(t, `
w: 2000
h: 1200
seed: 101
rooms:
  - name: living
    minW: 600
    minH: 400
  - name: kitchen
    minW: 400
    minH: 300
  - name: bed1
    minW: 300
    minH: 300
  - name: bed2
    minW: 300
    minH: 300
  - name: bath
    minW: 200
    minH: 200
`)

	resp, err := Generate(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(resp.Layout.Dropped) != 0 {
		t.Fatalf("Layout.Dropped = %v, want empty", resp.Layout.Dropped)
	}
	// All 5 requested rooms must be placed; the private-room count (3)
	// meets the corridor threshold, so a 6th synthetic "corridor" room is
	// also expected in the output.
	placed := make(map[string]bool, len(resp.Layout.Rooms))
	for _, r := range resp.Layout.Rooms {
		placed[r.Name] = true
	}
	for _, name := range []string{"living", "kitchen", "bed1", "bed2", "bath"} {
		if !placed[name] {
			t.Fatalf("room %q not placed, got %+v", name, resp.Layout.Rooms)
		}
	}
	for i := 0; i < len(resp.Layout.Rooms); i++ {
		for j := i + 1; j < len(resp.Layout.Rooms); j++ {
			if layout.Overlaps(resp.Layout.Rooms[i], resp.Layout.Rooms[j]) {
				t.Fatalf("rooms %s and %s overlap", resp.Layout.Rooms[i].Name, resp.Layout.Rooms[j].Name)
			}
		}
	}

	var living, kitchen layout.PlacedRoom
	var foundLiving, foundKitchen bool
	for _, r := range resp.Layout.Rooms {
		switch r.Name {
		case "living":
			living, foundLiving = r, true
		case "kitchen":
			kitchen, foundKitchen = r, true
		}
	}
	if !foundLiving || !foundKitchen {
		t.Fatalf("expected both living and kitchen placed")
	}
	if !layout.Touches(living, kitchen) {
		t.Fatalf("living %+v does not touch kitchen %+v", living, kitchen)
	}
}

// S2: with an adjacency preference on (kitchen, living) satisfied, the
// adjacency_missing cost term is zero.
func TestScenarioS2AdjacencyPreferenceSatisfied(t *testing.T) {
	b := mustBrief(t, `
w: 1200
h: 800
seed: 202
rooms:
  - name: living
    minW: 600
    minH: 400
    targetArea: 120000
  - name: kitchen
    minW: 400
    minH: 300
    targetArea: 75000
  - name: bed1
    minW: 300
    minH: 300
    targetArea: 90000
  - name: bed2
    minW: 300
    minH: 300
    targetArea: 90000
  - name: bath
    minW: 200
    minH: 200
    targetArea: 30000
objectives:
  adjacencyPairs:
    - a: kitchen
      b: living
`)

	resp, err := Generate(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := resp.Cost.Terms["adjacency_missing"]; got != 0 {
		t.Fatalf("cost.terms.adjacency_missing = %v, want 0", got)
	}
}

// S3: private-room count >= threshold triggers a corridor that every
// private room shares >= 50mm of edge with.
func TestScenarioS3CorridorInsertedAndTouchedByPrivateRooms(t *testing.T) {
	b := mustBrief(t, `
w: 6000
h: 5000
seed: 303
rooms:
  - name: living
    minW: 3000
    minH: 2000
  - name: bed1
    minW: 2000
    minH: 2000
  - name: bed2
    minW: 2000
    minH: 2000
  - name: bath
    minW: 1500
    minH: 1500
constraints:
  minCorridorWidth: 900
`)

	resp, err := Generate(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var corridor layout.PlacedRoom
	found := false
	for _, r := range resp.Layout.Rooms {
		if r.Name == "corridor" {
			corridor, found = r, true
		}
	}
	if !found {
		t.Fatal("expected a corridor room in layout.rooms")
	}

	for _, r := range resp.Layout.Rooms {
		if !layout.IsPrivate(r.Name) {
			continue
		}
		if layout.SharedEdgeOverlap(r, corridor) < 50 {
			t.Fatalf("private room %s shares only %d mm with corridor, want >= 50", r.Name, layout.SharedEdgeOverlap(r, corridor))
		}
	}

	if resp.Metrics.CorridorRatio <= 0 {
		t.Fatalf("metrics.corridor_ratio = %v, want > 0", resp.Metrics.CorridorRatio)
	}
}

// S4: a too-small bedroom is flagged as non-compliant.
func TestScenarioS4TinyBedroomFlagsNonCompliant(t *testing.T) {
	b := mustBrief(t, `
w: 4000
h: 3000
seed: 404
rooms:
  - name: living
    minW: 2500
    minH: 2000
  - name: bed1
    minW: 200
    minH: 200
`)

	resp, err := Generate(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Validation.Compliant {
		t.Fatal("validation.compliant = true, want false for a 200x200 bedroom")
	}

	foundAreaViolation := false
	for _, v := range resp.Validation.Violations {
		if strings.Contains(v, "] bedroom_min_area:") {
			foundAreaViolation = true
		}
	}
	if !foundAreaViolation {
		t.Fatalf("expected a bedroom_min_area violation, got %v", resp.Validation.Violations)
	}
}

// S5: a room whose target area cannot fit the envelope is dropped, and
// the envelope invariant holds for every placed room.
func TestScenarioS5OversizedRoomDropped(t *testing.T) {
	b := mustBrief(t, `
w: 1000
h: 1000
seed: 505
rooms:
  - name: living
    minW: 500
    minH: 500
    targetArea: 2250000
`)

	resp, err := Generate(context.Background(), b, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	dropped := false
	for _, name := range resp.Layout.Dropped {
		if name == "living" {
			dropped = true
		}
	}
	if !dropped {
		t.Fatalf("Layout.Dropped = %v, want living dropped", resp.Layout.Dropped)
	}
	for _, r := range resp.Layout.Rooms {
		if err := r.ValidateEnvelope(b.W, b.H); err != nil {
			t.Fatalf("ValidateEnvelope: %v", err)
		}
	}
}

// S6: identical (brief, seed) produces identical layout.rooms.
func TestScenarioS6DeterministicGivenSeed(t *testing.T) {
	yaml := `
w: 5000
h: 4000
seed: 606
rooms:
  - name: living
    minW: 3000
    minH: 2500
  - name: kitchen
    minW: 2000
    minH: 1500
  - name: bed1
    minW: 2000
    minH: 2000
  - name: bath
    minW: 1200
    minH: 1200
`
	b1 := mustBrief(t, yaml)
	b2 := mustBrief(t, yaml)

	r1, err := Generate(context.Background(), b1, Options{})
	if err != nil {
		t.Fatalf("Generate (1): %v", err)
	}
	r2, err := Generate(context.Background(), b2, Options{})
	if err != nil {
		t.Fatalf("Generate (2): %v", err)
	}

	if len(r1.Layout.Rooms) != len(r2.Layout.Rooms) {
		t.Fatalf("room count differs: %d vs %d", len(r1.Layout.Rooms), len(r2.Layout.Rooms))
	}
	for i := range r1.Layout.Rooms {
		if r1.Layout.Rooms[i] != r2.Layout.Rooms[i] {
			t.Fatalf("room %d differs between runs: %+v vs %+v", i, r1.Layout.Rooms[i], r2.Layout.Rooms[i])
		}
	}
}

func TestGenerateRejectsInvalidBrief(t *testing.T) {
	b := &brief.Brief{W: 0, H: 0}
	if _, err := Generate(context.Background(), b, Options{}); err == nil {
		t.Fatal("Generate() error = nil, want validation error for non-positive envelope")
	}
}

func TestGenerateRespectsContextCancellation(t *testing.T) {
	b := mustBrief(t, `
w: 2000
h: 2000
seed: 707
rooms:
  - name: living
    minW: 1000
    minH: 1000
`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Generate(ctx, b, Options{}); err == nil {
		t.Fatal("Generate() error = nil, want context.Canceled")
	}
}
