// Package packing implements the heuristic rectangle packer (S4) and the
// corridor inserter (S5). Both stages produce a first valid-ish layout
// that the CP refiner and geometric repair stages subsequently tighten.
package packing

import (
	"sort"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
)

// sizedRoom pairs a RoomSpec with its fixed (w,h) from the sizer.
type sizedRoom struct {
	spec brief.RoomSpec
	w, h int
}

func sizeAll(b *brief.Brief) []sizedRoom {
	out := make([]sizedRoom, len(b.Rooms))
	for i, rs := range b.Rooms {
		w, h := brief.Size(rs, b.W, b.H)
		out[i] = sizedRoom{spec: rs, w: w, h: h}
	}
	return out
}

// NextFitRow packs rooms row by row: sort by descending height, place
// left to right, start a new row when the envelope width is exceeded.
// Rooms that don't fit vertically (the row doesn't fit below the
// envelope's bottom edge) are dropped. After packing, the swap heuristic
// relocates any preferred-adjacency pair whose Manhattan center distance
// exceeds W/2 (spec.md §4.5).
func NextFitRow(b *brief.Brief) *layout.Result {
	sized := sizeAll(b)
	sort.SliceStable(sized, func(i, j int) bool { return sized[i].h > sized[j].h })

	res := layout.NewResult()
	x, y, rowH := 0, 0, 0
	for _, sr := range sized {
		if x+sr.w > b.W {
			x = 0
			y += rowH
			rowH = 0
		}
		if y+sr.h > b.H {
			res.Drop(sr.spec.Name)
			continue
		}
		res.Upsert(layout.PlacedRoom{Name: sr.spec.Name, X: x, Y: y, W: sr.w, H: sr.h})
		x += sr.w
		if sr.h > rowH {
			rowH = sr.h
		}
	}

	applySwapHeuristic(res, b)
	return res
}

// applySwapHeuristic swaps the positions of any preferred adjacency pair
// whose Manhattan center distance exceeds W/2.
func applySwapHeuristic(res *layout.Result, b *brief.Brief) {
	threshold := b.W / 2
	for _, pair := range b.Objectives.AdjacencyPairs {
		ia := res.Index(pair.A)
		ib := res.Index(pair.B)
		if ia < 0 || ib < 0 {
			continue
		}
		a, bb := res.Rooms[ia], res.Rooms[ib]
		if layout.ManhattanCenterDistance(a, bb) > threshold {
			res.Rooms[ia], res.Rooms[ib] = swapPositions(a, bb)
		}
	}
}

// swapPositions exchanges a and b's origins while keeping each room's own
// size, so neither room changes shape.
func swapPositions(a, b layout.PlacedRoom) (layout.PlacedRoom, layout.PlacedRoom) {
	a.X, b.X = b.X, a.X
	a.Y, b.Y = b.Y, a.Y
	return a, b
}

// HubFirstPack detects the hub (first corridor*, else first living*, else
// first room in declaration order), places it at (0,0), then stacks
// subsequent rooms along the hub's right edge while they fit, overflowing
// to the bottom; rooms that fit neither are dropped (spec.md §4.5).
func HubFirstPack(b *brief.Brief) *layout.Result {
	sized := sizeAll(b)
	if len(sized) == 0 {
		return layout.NewResult()
	}

	hubIdx := findHubIndex(b)
	res := layout.NewResult()

	hub := sized[hubIdx]
	res.Upsert(layout.PlacedRoom{Name: hub.spec.Name, X: 0, Y: 0, W: hub.w, H: hub.h})

	rightX := hub.w
	rightY := 0
	bottomX := 0
	bottomY := hub.h

	for i, sr := range sized {
		if i == hubIdx {
			continue
		}
		if rightX+sr.w <= b.W && rightY+sr.h <= b.H {
			res.Upsert(layout.PlacedRoom{Name: sr.spec.Name, X: rightX, Y: rightY, W: sr.w, H: sr.h})
			rightY += sr.h
			continue
		}
		if bottomX+sr.w <= b.W && bottomY+sr.h <= b.H {
			res.Upsert(layout.PlacedRoom{Name: sr.spec.Name, X: bottomX, Y: bottomY, W: sr.w, H: sr.h})
			bottomX += sr.w
			continue
		}
		res.Drop(sr.spec.Name)
	}

	return res
}

func findHubIndex(b *brief.Brief) int {
	for i, rs := range b.Rooms {
		if layout.IsCorridor(rs.Name) {
			return i
		}
	}
	for i, rs := range b.Rooms {
		if hasLivingPrefix(rs.Name) {
			return i
		}
	}
	return 0
}

func hasLivingPrefix(name string) bool {
	return len(name) >= len("living") && foldEqual(name[:len("living")], "living")
}

func foldEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
