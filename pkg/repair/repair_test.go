package repair

import (
	"testing"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
)

func testBrief(t *testing.T) *brief.Brief {
	t.Helper()
	b, err := brief.LoadBriefFromBytes([]byte(`
w: 8000
h: 6000
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

func testBriefWithCorridor(t *testing.T) *brief.Brief {
	t.Helper()
	b, err := brief.LoadBriefFromBytes([]byte(`
w: 8000
h: 6000
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
  - name: bath1
    minW: 1500
    minH: 1500
`))
	if err != nil {
		t.Fatalf("LoadBriefFromBytes: %v", err)
	}
	return b
}

// TestRunResolvesCorridorOverlap seeds a non-private room squarely on top
// of the corridor band (the mistake PackWithCorridor used to make) and
// checks repair clears it, including the room-vs-corridor pair itself.
func TestRunResolvesCorridorOverlap(t *testing.T) {
	b := testBriefWithCorridor(t)
	corridorH := brief.DefaultMinCorridorWidth

	res := layout.NewResult()
	res.Upsert(layout.PlacedRoom{Name: "corridor", X: 0, Y: 0, W: b.W, H: corridorH})
	res.Upsert(layout.PlacedRoom{Name: "living", X: 0, Y: 0, W: 3000, H: 2000})
	res.Upsert(layout.PlacedRoom{Name: "bed1", X: 0, Y: corridorH, W: 2000, H: 2000})
	res.Upsert(layout.PlacedRoom{Name: "bed2", X: 2000, Y: corridorH, W: 2000, H: 2000})
	res.Upsert(layout.PlacedRoom{Name: "bath1", X: 4000, Y: corridorH, W: 1500, H: 1500})

	out := Run(b, res, Options{})
	for i := 0; i < len(out.Rooms); i++ {
		for j := i + 1; j < len(out.Rooms); j++ {
			if layout.Overlaps(out.Rooms[i], out.Rooms[j]) {
				t.Fatalf("residual overlap after repair: %+v vs %+v", out.Rooms[i], out.Rooms[j])
			}
		}
	}
	for _, r := range out.Rooms {
		if err := r.ValidateEnvelope(b.W, b.H); err != nil {
			t.Errorf("room escapes envelope after repair: %v", err)
		}
	}
}

func TestRunResolvesOverlap(t *testing.T) {
	b := testBrief(t)
	res := layout.NewResult()
	res.Upsert(layout.PlacedRoom{Name: "living", X: 0, Y: 0, W: 3000, H: 3000})
	res.Upsert(layout.PlacedRoom{Name: "bed1", X: 1000, Y: 1000, W: 2000, H: 2000})
	res.Upsert(layout.PlacedRoom{Name: "bath1", X: 3000, Y: 0, W: 1500, H: 1500})

	out := Run(b, res, Options{})
	for i := 0; i < len(out.Rooms); i++ {
		for j := i + 1; j < len(out.Rooms); j++ {
			if layout.Overlaps(out.Rooms[i], out.Rooms[j]) {
				t.Fatalf("residual overlap after repair: %+v vs %+v", out.Rooms[i], out.Rooms[j])
			}
		}
	}
}

func TestRunStaysWithinEnvelope(t *testing.T) {
	b := testBrief(t)
	res := layout.NewResult()
	res.Upsert(layout.PlacedRoom{Name: "living", X: -500, Y: 0, W: 3000, H: 3000})
	res.Upsert(layout.PlacedRoom{Name: "bed1", X: 7500, Y: 5500, W: 2000, H: 2000})
	res.Upsert(layout.PlacedRoom{Name: "bath1", X: 3000, Y: 0, W: 1500, H: 1500})

	out := Run(b, res, Options{})
	for _, r := range out.Rooms {
		if err := r.ValidateEnvelope(b.W, b.H); err != nil {
			t.Errorf("room escapes envelope after repair: %v", err)
		}
	}
}

func TestRunIsIdempotentOnceStable(t *testing.T) {
	b := testBrief(t)
	res := layout.NewResult()
	res.Upsert(layout.PlacedRoom{Name: "living", X: 0, Y: 0, W: 3000, H: 3000})
	res.Upsert(layout.PlacedRoom{Name: "bed1", X: 4000, Y: 0, W: 2000, H: 2000})
	res.Upsert(layout.PlacedRoom{Name: "bath1", X: 3000, Y: 0, W: 1000, H: 1000})

	once := Run(b, res, Options{})
	twice := Run(b, once, Options{})

	if len(once.Rooms) != len(twice.Rooms) {
		t.Fatalf("room count changed on second pass: %d vs %d", len(once.Rooms), len(twice.Rooms))
	}
	for i := range once.Rooms {
		if once.Rooms[i] != twice.Rooms[i] {
			t.Fatalf("repair not idempotent at room %d: %+v vs %+v", i, once.Rooms[i], twice.Rooms[i])
		}
	}
}

func TestSnapRoundsToGrid(t *testing.T) {
	if got := snap(107, 10); got != 110 {
		t.Errorf("snap(107, 10) = %d, want 110", got)
	}
	if got := snap(104, 10); got != 100 {
		t.Errorf("snap(104, 10) = %d, want 100", got)
	}
}

func TestLegalizeEliminatesOverlapWhenOtherPassesCannot(t *testing.T) {
	b := testBrief(t)
	res := layout.NewResult()
	// Heavily overlapping seed that the iterative passes alone may not
	// fully untangle within the round cap.
	res.Upsert(layout.PlacedRoom{Name: "living", X: 0, Y: 0, W: 3000, H: 3000})
	res.Upsert(layout.PlacedRoom{Name: "bed1", X: 500, Y: 500, W: 2000, H: 2000})
	res.Upsert(layout.PlacedRoom{Name: "bath1", X: 1000, Y: 1000, W: 1500, H: 1500})

	out := legalize(b, res, false)
	for i := 0; i < len(out.Rooms); i++ {
		for j := i + 1; j < len(out.Rooms); j++ {
			if layout.Overlaps(out.Rooms[i], out.Rooms[j]) {
				t.Fatalf("legalize left overlap: %+v vs %+v", out.Rooms[i], out.Rooms[j])
			}
		}
	}
}
