package packing

import (
	"sort"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
)

// CorridorName is the synthetic room name given to the reserved corridor
// band.
const CorridorName = "corridor"

// NeedsCorridor reports whether b's private-room count meets the
// connectivity extension's threshold for corridor insertion (spec.md
// §4.6/§9).
func NeedsCorridor(b *brief.Brief) bool {
	count := 0
	for _, rs := range b.Rooms {
		if layout.IsPrivate(rs.Name) {
			count++
		}
	}
	return count >= b.Connectivity.MinPrivateForCorridor
}

// PackWithCorridor is a deterministic heuristic that places a corridor
// band and packs all other rooms above and below it, honoring each
// room's sized dimensions. The corridor spans the full envelope width,
// nominally at height Constraints.MinCorridorWidth (spec.md §4.6, §9 —
// the contract this symbol was reimplemented from), but shrinks (down to
// 0) rather than forcing either band to overlap it when the envelope
// can't fit both bands at their natural height plus the requested
// corridor — a shrunk corridor surfaces downstream as a
// corridor_min_width rule violation, not a hard packing failure.
func PackWithCorridor(b *brief.Brief) *layout.Result {
	sized := sizeAll(b)
	sort.SliceStable(sized, func(i, j int) bool { return sized[i].h > sized[j].h })

	requestedCorridorH := b.Constraints.MinCorridorWidth
	if requestedCorridorH <= 0 {
		requestedCorridorH = brief.DefaultMinCorridorWidth
	}
	if requestedCorridorH > b.H {
		requestedCorridorH = b.H
	}

	// Pack non-private/non-corridor rooms above the band, private rooms
	// below it, each using the same row-packing rule as NextFitRow.
	var above, below []sizedRoom
	for _, sr := range sized {
		if layout.IsPrivate(sr.spec.Name) {
			below = append(below, sr)
		} else {
			above = append(above, sr)
		}
	}

	// Measure how tall each band needs to be when given the whole
	// envelope height, so a wide requested corridor can't starve a band
	// that would otherwise fit entirely.
	aboveNeeded := packRow(layout.NewResult(), above, b.W, 0, b.H)
	belowNeeded := packRow(layout.NewResult(), below, b.W, 0, b.H)

	corridorH := requestedCorridorH
	if slack := b.H - aboveNeeded - belowNeeded; slack < corridorH {
		corridorH = slack
	}
	if corridorH < 0 {
		corridorH = 0
	}

	res := layout.NewResult()

	aboveAvail := b.H - corridorH - belowNeeded
	if aboveAvail < 0 {
		aboveAvail = 0
	}
	aboveH := packRow(res, above, b.W, 0, aboveAvail)

	corridorY := aboveH
	res.Upsert(layout.PlacedRoom{Name: CorridorName, X: 0, Y: corridorY, W: b.W, H: corridorH})

	belowTop := corridorY + corridorH
	belowAvail := b.H - belowTop
	packRow(res, below, b.W, belowTop, belowAvail)

	return res
}

// packRow places rooms row by row inside [0, rowW] x [top, top+avail],
// growing downward from top; rooms that don't fit are dropped onto res.
// It returns the height actually consumed by placed rows (<= avail).
func packRow(res *layout.Result, rooms []sizedRoom, rowW, top, avail int) int {
	x, yOff, rowH, used := 0, 0, 0, 0
	for _, sr := range rooms {
		if x+sr.w > rowW {
			x = 0
			yOff += rowH
			rowH = 0
		}
		if yOff+sr.h > avail {
			res.Drop(sr.spec.Name)
			continue
		}
		res.Upsert(layout.PlacedRoom{Name: sr.spec.Name, X: x, Y: top + yOff, W: sr.w, H: sr.h})
		x += sr.w
		if sr.h > rowH {
			rowH = sr.h
		}
		if yOff+sr.h > used {
			used = yOff + sr.h
		}
	}
	return used
}
