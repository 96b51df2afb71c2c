package packing

import (
	"testing"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
)

func testBrief(t *testing.T, yamlDoc string) *brief.Brief {
	t.Helper()
	b, err := brief.LoadBriefFromBytes([]byte(yamlDoc))
	if err != nil {
		t.Fatalf("LoadBriefFromBytes: %v", err)
	}
	return b
}

const fourRoomBrief = `
w: 8000
h: 6000
rooms:
  - name: living
    minW: 3000
    minH: 3000
  - name: kitchen
    minW: 2000
    minH: 2000
  - name: bed1
    minW: 2500
    minH: 2500
  - name: bath1
    minW: 1500
    minH: 1500
`

func TestNextFitRowPlacesOrDropsEveryRoom(t *testing.T) {
	b := testBrief(t, fourRoomBrief)
	res := NextFitRow(b)
	seen := map[string]bool{}
	for _, r := range res.Rooms {
		seen[r.Name] = true
	}
	for _, d := range res.Dropped {
		seen[d] = true
	}
	for _, rs := range b.Rooms {
		if !seen[rs.Name] {
			t.Errorf("room %q neither placed nor dropped", rs.Name)
		}
	}
}

func TestNextFitRowStaysWithinEnvelopeWidth(t *testing.T) {
	b := testBrief(t, fourRoomBrief)
	res := NextFitRow(b)
	for _, r := range res.Rooms {
		if r.X+r.W > b.W {
			t.Errorf("room %+v exceeds envelope width %d", r, b.W)
		}
	}
}

func TestHubFirstPackPlacesHubAtOrigin(t *testing.T) {
	b := testBrief(t, fourRoomBrief)
	res := HubFirstPack(b)
	hub, ok := res.Get("living")
	if !ok {
		t.Fatal("hub room 'living' not placed")
	}
	if hub.X != 0 || hub.Y != 0 {
		t.Fatalf("hub placed at (%d,%d), want (0,0)", hub.X, hub.Y)
	}
}

func TestHubFirstPackPrefersCorridorHub(t *testing.T) {
	b := testBrief(t, `
w: 8000
h: 6000
rooms:
  - name: living
    minW: 3000
    minH: 3000
  - name: corridor
    minW: 8000
    minH: 900
`)
	res := HubFirstPack(b)
	hub, ok := res.Get("corridor")
	if !ok {
		t.Fatal("hub room 'corridor' not placed")
	}
	if hub.X != 0 || hub.Y != 0 {
		t.Fatalf("corridor hub placed at (%d,%d), want (0,0)", hub.X, hub.Y)
	}
}

func TestNeedsCorridorThreshold(t *testing.T) {
	b := testBrief(t, fourRoomBrief) // only bed1, bath1 -> 2 private rooms
	if NeedsCorridor(b) {
		t.Fatal("NeedsCorridor() = true with 2 private rooms, want false (default threshold 3)")
	}
	b.Rooms = append(b.Rooms, brief.RoomSpec{Name: "bed2", MinW: 2000, MinH: 2000})
	if !NeedsCorridor(b) {
		t.Fatal("NeedsCorridor() = false with 3 private rooms, want true")
	}
}

// corridorRoomyBrief has the same rooms as fourRoomBrief plus bed2 (5
// rooms, 3 private -> corridor triggers), but a tall enough envelope that
// the requested corridor width doesn't need to shrink: the above band
// needs 3000 (living), the below band needs 2500 (bed1), leaving well
// over 900 of slack at h=9000.
const corridorRoomyBrief = `
w: 8000
h: 9000
rooms:
  - name: living
    minW: 3000
    minH: 3000
  - name: kitchen
    minW: 2000
    minH: 2000
  - name: bed1
    minW: 2500
    minH: 2500
  - name: bath1
    minW: 1500
    minH: 1500
  - name: bed2
    minW: 2000
    minH: 2000
`

func TestPackWithCorridorReservesFullWidthBand(t *testing.T) {
	b := testBrief(t, corridorRoomyBrief)
	res := PackWithCorridor(b)
	c, ok := res.Get(CorridorName)
	if !ok {
		t.Fatal("corridor room not placed")
	}
	if c.W != b.W {
		t.Fatalf("corridor width = %d, want full envelope width %d", c.W, b.W)
	}
	if c.H != b.Constraints.MinCorridorWidth {
		t.Fatalf("corridor height = %d, want %d", c.H, b.Constraints.MinCorridorWidth)
	}
}

func TestPackWithCorridorPlacesPrivateRoomsBelowBand(t *testing.T) {
	b := testBrief(t, corridorRoomyBrief)
	res := PackWithCorridor(b)
	c, _ := res.Get(CorridorName)
	for _, rs := range b.Rooms {
		if !layout.IsPrivate(rs.Name) {
			continue
		}
		r, ok := res.Get(rs.Name)
		if !ok {
			continue // dropped is acceptable under tight envelopes
		}
		if r.Y < c.Y+c.H {
			t.Errorf("private room %+v placed above/inside corridor band (ends at %d)", r, c.Y+c.H)
		}
	}
}

// TestPackWithCorridorAboveBandDoesNotOverlapCorridor crosses the
// NeedsCorridor threshold (3 private rooms) and checks that the
// non-private rooms packed above the band land entirely outside the
// corridor's own rectangle, not inside it.
func TestPackWithCorridorAboveBandDoesNotOverlapCorridor(t *testing.T) {
	b := testBrief(t, corridorRoomyBrief)
	res := PackWithCorridor(b)
	c, ok := res.Get(CorridorName)
	if !ok {
		t.Fatal("corridor room not placed")
	}
	for _, rs := range b.Rooms {
		if layout.IsPrivate(rs.Name) {
			continue
		}
		r, ok := res.Get(rs.Name)
		if !ok {
			continue // dropped is acceptable under tight envelopes
		}
		if layout.Overlaps(r, c) {
			t.Errorf("above-band room %+v overlaps corridor %+v", r, c)
		}
	}
}

// TestPackWithCorridorAllRoomsMutuallyNonOverlapping is a universal
// pairwise check (no corridor exception) on the heuristic packer's own
// output, matching spec.md §8's non-overlap property.
func TestPackWithCorridorAllRoomsMutuallyNonOverlapping(t *testing.T) {
	b := testBrief(t, corridorRoomyBrief)
	res := PackWithCorridor(b)
	for i := 0; i < len(res.Rooms); i++ {
		for j := i + 1; j < len(res.Rooms); j++ {
			if layout.Overlaps(res.Rooms[i], res.Rooms[j]) {
				t.Errorf("rooms overlap: %+v vs %+v", res.Rooms[i], res.Rooms[j])
			}
		}
	}
}

// TestPackWithCorridorShrinksWhenEnvelopeIsTight checks that a requested
// corridor width wider than the envelope can afford is reduced rather
// than left to overlap either band, consuming exactly the slack left
// after both bands get the height they need.
func TestPackWithCorridorShrinksWhenEnvelopeIsTight(t *testing.T) {
	b := testBrief(t, fourRoomBrief) // w=8000 h=6000; needs 900 corridor, only 500 slack
	b.Rooms = append(b.Rooms, brief.RoomSpec{Name: "bed2", MinW: 2000, MinH: 2000})
	res := PackWithCorridor(b)
	c, ok := res.Get(CorridorName)
	if !ok {
		t.Fatal("corridor room not placed")
	}
	const wantShrunkH = 500 // 6000 - 3000 (living row) - 2500 (bed1 row)
	if c.H != wantShrunkH {
		t.Fatalf("corridor height = %d, want %d (shrunk from %d)", c.H, wantShrunkH, b.Constraints.MinCorridorWidth)
	}
	for i := 0; i < len(res.Rooms); i++ {
		for j := i + 1; j < len(res.Rooms); j++ {
			if layout.Overlaps(res.Rooms[i], res.Rooms[j]) {
				t.Errorf("rooms overlap: %+v vs %+v", res.Rooms[i], res.Rooms[j])
			}
		}
	}
}
