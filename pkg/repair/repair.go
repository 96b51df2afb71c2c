// Package repair implements the geometric repair stage (S7): eight
// idempotent passes that resolve residual overlaps, attract rooms to the
// circulation hub and corridor, snap isolated rooms to neighbors, and
// align everything to a coordinate grid. It runs after the refiner
// (always) or directly after heuristic packing (when the refiner is
// skipped).
package repair

import (
	"sort"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
)

const (
	DefaultGridSize = 10
	DefaultMargin   = 20
)

// Options tunes the repair passes. Zero values fall back to defaults.
type Options struct {
	GridSize int
	Margin   int
	Step     int // hub/corridor attraction step, default 50
}

func (o Options) withDefaults() Options {
	if o.GridSize <= 0 {
		o.GridSize = DefaultGridSize
	}
	if o.Margin <= 0 {
		o.Margin = DefaultMargin
	}
	if o.Step <= 0 {
		o.Step = 50
	}
	return o
}

// Run applies all eight passes in order, iterating passes 1-6 to a fixed
// point (capped to bound runtime) before snap & align and the legalize
// fallback.
func Run(b *brief.Brief, res *layout.Result, opts Options) *layout.Result {
	opts = opts.withDefaults()
	out := res.Clone()
	hub := layout.HubName(out.Rooms)
	_, hasCorridor := out.Get("corridor")

	const maxRounds = 25
	for round := 0; round < maxRounds; round++ {
		changed := false
		changed = resolveOverlaps(b, out) || changed
		changed = hubAttraction(out, hub, opts.Step) || changed
		if hasCorridor {
			changed = corridorAttraction(out, opts.Step) || changed
			changed = overlapLengthFix(b, out) || changed
		}
		changed = connectivitySnap(out) || changed
		if hasCorridor {
			changed = keepCorridorClear(out, b.H) || changed
		}
		if !changed {
			break
		}
	}

	snapAndAlign(out, b.W, b.H, opts.GridSize, opts.Margin)

	if hasResidualOverlap(out) {
		out = legalize(b, out, hasCorridor)
	}

	return out
}

// resolveOverlaps moves each overlapping non-corridor room by the
// smallest of four candidate displacements (tangent on each side of the
// other room), subject to the envelope. Full containment is resolved by
// pushing the inner room to the nearest outer side.
func resolveOverlaps(b *brief.Brief, res *layout.Result) bool {
	changed := false
	for i := 0; i < len(res.Rooms); i++ {
		if layout.IsCorridor(res.Rooms[i].Name) {
			continue
		}
		for j := 0; j < len(res.Rooms); j++ {
			if i == j || layout.IsCorridor(res.Rooms[j].Name) {
				continue
			}
			a, o := res.Rooms[i], res.Rooms[j]
			if !layout.Overlaps(a, o) {
				continue
			}
			moved := smallestDisplacement(a, o, b.W, b.H)
			res.Rooms[i] = moved
			changed = true
		}
	}
	return changed
}

// smallestDisplacement returns a moved so it is tangent to o on whichever
// of its four sides requires the smallest translation, clamped to the
// envelope.
func smallestDisplacement(a, o layout.PlacedRoom, envW, envH int) layout.PlacedRoom {
	candidates := []layout.PlacedRoom{
		withX(a, o.X-a.W), // tangent left of o
		withX(a, o.X+o.W), // tangent right of o
		withY(a, o.Y-a.H), // tangent above o
		withY(a, o.Y+o.H), // tangent below o
	}
	best := candidates[0]
	bestDist := manhattanShift(a, best)
	for _, c := range candidates[1:] {
		if d := manhattanShift(a, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return layout.Clamp(best, envW, envH)
}

func withX(r layout.PlacedRoom, x int) layout.PlacedRoom { r.X = x; return r }
func withY(r layout.PlacedRoom, y int) layout.PlacedRoom { r.Y = y; return r }

func manhattanShift(a, b layout.PlacedRoom) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

// hubAttraction translates every non-hub room not touching the hub by
// step toward the hub on both axes until tangent or clamped.
func hubAttraction(res *layout.Result, hub string, step int) bool {
	hubRoom, ok := res.Get(hub)
	if !ok {
		return false
	}
	changed := false
	for i := range res.Rooms {
		if res.Rooms[i].Name == hub || layout.Touches(res.Rooms[i], hubRoom) {
			continue
		}
		res.Rooms[i] = stepToward(res.Rooms[i], hubRoom, step)
		changed = true
	}
	return changed
}

func stepToward(r, target layout.PlacedRoom, step int) layout.PlacedRoom {
	rx, ry := r.Center()
	tx, ty := target.Center()
	if rx < tx {
		r.X += min(step, tx-rx)
	} else if rx > tx {
		r.X -= min(step, rx-tx)
	}
	if ry < ty {
		r.Y += min(step, ty-ry)
	} else if ry > ty {
		r.Y -= min(step, ry-ty)
	}
	return r
}

// corridorAttraction drifts private rooms toward the corridor band along
// whichever axis requires the shorter move.
func corridorAttraction(res *layout.Result, step int) bool {
	corridor, ok := res.Get("corridor")
	if !ok {
		return false
	}
	changed := false
	for i := range res.Rooms {
		r := res.Rooms[i]
		if !layout.IsPrivate(r.Name) || layout.Touches(r, corridor) {
			continue
		}
		rx, ry := r.Center()
		cx, cy := corridor.Center()
		dx, dy := absInt(rx-cx), absInt(ry-cy)
		if dx <= dy {
			res.Rooms[i] = stepTowardAxis(r, cx-rx, step, true)
		} else {
			res.Rooms[i] = stepTowardAxis(r, cy-ry, step, false)
		}
		changed = true
	}
	return changed
}

func stepTowardAxis(r layout.PlacedRoom, delta, step int, xAxis bool) layout.PlacedRoom {
	move := clampAbs(delta, step)
	if xAxis {
		r.X += move
	} else {
		r.Y += move
	}
	return r
}

func clampAbs(v, limit int) int {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// overlapLengthFix slides a room sharing only a thin edge segment with
// the corridor along the shared axis until it reaches min_overlap.
func overlapLengthFix(b *brief.Brief, res *layout.Result) bool {
	corridor, ok := res.Get("corridor")
	if !ok {
		return false
	}
	minOverlap := b.Connectivity.MinOverlap
	if minOverlap <= 0 {
		minOverlap = brief.DefaultMinOverlap
	}
	changed := false
	for i := range res.Rooms {
		r := res.Rooms[i]
		if !layout.IsPrivate(r.Name) {
			continue
		}
		ov := layout.SharedEdgeOverlap(r, corridor)
		if ov <= 0 || ov >= minOverlap {
			continue
		}
		needed := minOverlap - ov
		// Shared edge is horizontal when rooms differ in Y; slide along X
		// in that case, else slide along Y.
		if r.Y+r.H == corridor.Y || corridor.Y+corridor.H == r.Y {
			if r.X < corridor.X {
				r.X += needed
			} else {
				r.X -= needed
			}
		} else {
			if r.Y < corridor.Y {
				r.Y += needed
			} else {
				r.Y -= needed
			}
		}
		res.Rooms[i] = r
		changed = true
	}
	return changed
}

// connectivitySnap finds any room with zero adjacency neighbors and
// snaps it to its nearest other room by center L1 distance: to its
// right if there's y-overlap, else directly below it.
func connectivitySnap(res *layout.Result) bool {
	changed := false
	for i := range res.Rooms {
		if hasNeighbor(res.Rooms, i) {
			continue
		}
		nearest := nearestOther(res.Rooms, i)
		if nearest < 0 {
			continue
		}
		r, n := res.Rooms[i], res.Rooms[nearest]
		if layout.OverlapY(r, n) > 0 {
			r.X = n.X + n.W
		} else {
			r.X = n.X
			r.Y = n.Y + n.H
		}
		res.Rooms[i] = r
		changed = true
	}
	return changed
}

func hasNeighbor(rooms []layout.PlacedRoom, i int) bool {
	for j := range rooms {
		if j != i && layout.Adjacent(rooms[i], rooms[j]) {
			return true
		}
	}
	return false
}

func nearestOther(rooms []layout.PlacedRoom, i int) int {
	best, bestDist := -1, -1
	for j := range rooms {
		if j == i {
			continue
		}
		d := layout.ManhattanCenterDistance(rooms[i], rooms[j])
		if best == -1 || d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

// keepCorridorClear pushes any room intersecting the corridor band above
// or below it based on which side the room's center falls on, clamped so
// it can never be pushed past the envelope edge.
func keepCorridorClear(res *layout.Result, envH int) bool {
	corridor, ok := res.Get("corridor")
	if !ok {
		return false
	}
	changed := false
	for i := range res.Rooms {
		r := res.Rooms[i]
		if layout.IsCorridor(r.Name) || !layout.Overlaps(r, corridor) {
			continue
		}
		_, cy := r.Center()
		_, corrCy := corridor.Center()
		if cy < corrCy {
			r.Y = corridor.Y - r.H
		} else {
			r.Y = corridor.Y + corridor.H
		}
		if r.Y < 0 {
			r.Y = 0
		}
		if r.Y+r.H > envH {
			r.Y = envH - r.H
		}
		res.Rooms[i] = r
		changed = true
	}
	return changed
}

// snapAndAlign rounds every coordinate to gridSize, enforces an outer
// margin, and merges near-equal row/column keys so rectangles that
// nearly share a row or column share it exactly. A room too large to keep
// the margin on both sides (such as a full-width corridor) is clamped to
// the envelope instead.
func snapAndAlign(res *layout.Result, envW, envH, gridSize, margin int) {
	for i := range res.Rooms {
		r := res.Rooms[i]
		r.X = snap(r.X, gridSize)
		r.Y = snap(r.Y, gridSize)
		if r.X < margin {
			r.X = margin
		}
		if r.Y < margin {
			r.Y = margin
		}
		if r.X+r.W > envW-margin {
			r.X = envW - margin - r.W
		}
		if r.Y+r.H > envH-margin {
			r.Y = envH - margin - r.H
		}
		res.Rooms[i] = layout.Clamp(r, envW, envH)
	}
	mergeAxisKeys(res, gridSize, true)
	mergeAxisKeys(res, gridSize, false)
}

func snap(v, grid int) int {
	if grid <= 0 {
		return v
	}
	return ((v + grid/2) / grid) * grid
}

// mergeAxisKeys groups room origins on the chosen axis that fall within
// gridSize of each other and replaces them with their group's smallest
// value, so near-aligned edges become exactly aligned.
func mergeAxisKeys(res *layout.Result, gridSize int, xAxis bool) {
	keys := make([]int, len(res.Rooms))
	for i, r := range res.Rooms {
		if xAxis {
			keys[i] = r.X
		} else {
			keys[i] = r.Y
		}
	}
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return keys[order[i]] < keys[order[j]] })

	groupStart := 0
	for idx := 1; idx <= len(order); idx++ {
		if idx < len(order) && keys[order[idx]]-keys[order[groupStart]] <= gridSize {
			continue
		}
		rep := keys[order[groupStart]]
		for k := groupStart; k < idx; k++ {
			i := order[k]
			if xAxis {
				res.Rooms[i].X = rep
			} else {
				res.Rooms[i].Y = rep
			}
		}
		groupStart = idx
	}
}

// hasResidualOverlap reports whether any two rooms overlap, including a
// room and the corridor band. spec.md §8's non-overlap property has no
// corridor exception.
func hasResidualOverlap(res *layout.Result) bool {
	for i := 0; i < len(res.Rooms); i++ {
		for j := i + 1; j < len(res.Rooms); j++ {
			if layout.Overlaps(res.Rooms[i], res.Rooms[j]) {
				return true
			}
		}
	}
	return false
}

// legalize is the repair fallback: re-pack preserving each room's size,
// using bands above and below the corridor (if present) else the whole
// envelope, largest-area-first row packing.
func legalize(b *brief.Brief, res *layout.Result, hasCorridor bool) *layout.Result {
	sized := make([]layout.PlacedRoom, 0, len(res.Rooms))
	var corridor *layout.PlacedRoom
	for _, r := range res.Rooms {
		if hasCorridor && layout.IsCorridor(r.Name) {
			rc := r
			corridor = &rc
			continue
		}
		sized = append(sized, r)
	}
	sort.SliceStable(sized, func(i, j int) bool { return sized[i].Area() > sized[j].Area() })

	out := layout.NewResult()
	if corridor != nil {
		out.Upsert(*corridor)
		var above, below []layout.PlacedRoom
		for _, r := range sized {
			if layout.IsPrivate(r.Name) {
				below = append(below, r)
			} else {
				above = append(above, r)
			}
		}
		rowPackInto(out, above, b.W, 0, corridor.Y)
		rowPackInto(out, below, b.W, corridor.Y+corridor.H, b.H-(corridor.Y+corridor.H))
	} else {
		rowPackInto(out, sized, b.W, 0, b.H)
	}
	out.Dropped = append(out.Dropped, res.Dropped...)
	return out
}

func rowPackInto(out *layout.Result, rooms []layout.PlacedRoom, rowW, top, avail int) {
	x, yOff, rowH := 0, 0, 0
	for _, r := range rooms {
		if x+r.W > rowW {
			x = 0
			yOff += rowH
			rowH = 0
		}
		if yOff+r.H > avail {
			out.Drop(r.Name)
			continue
		}
		r.X, r.Y = x, top+yOff
		out.Upsert(r)
		x += r.W
		if r.H > rowH {
			rowH = r.H
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
