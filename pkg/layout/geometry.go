package layout

// OverlapX returns the length of the overlapping interval of a and b along
// the X axis (0 if they don't overlap).
func OverlapX(a, b PlacedRoom) int {
	lo := max(a.X, b.X)
	hi := min(a.X+a.W, b.X+b.W)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// OverlapY returns the length of the overlapping interval of a and b along
// the Y axis (0 if they don't overlap).
func OverlapY(a, b PlacedRoom) int {
	lo := max(a.Y, b.Y)
	hi := min(a.Y+a.H, b.Y+b.H)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Overlaps reports whether a and b have positive 2D intersection (spec.md
// invariant 3: overlap_x * overlap_y = 0 must hold for all non-overlapping
// pairs; this returns true exactly when that product is positive).
func Overlaps(a, b PlacedRoom) bool {
	return OverlapX(a, b) > 0 && OverlapY(a, b) > 0
}

// IntersectionArea returns the area of the overlap between a and b.
func IntersectionArea(a, b PlacedRoom) int {
	return OverlapX(a, b) * OverlapY(a, b)
}

// Touches reports whether a and b share a boundary: zero-distance on one
// axis and positive-length overlap on the other (spec.md §8 invariant 4/5,
// GLOSSARY "Adjacency"). Corner-only touches (zero overlap on both axes)
// do not count.
func Touches(a, b PlacedRoom) bool {
	sharedX := sharesEdgeX(a, b) && OverlapY(a, b) > 0
	sharedY := sharesEdgeY(a, b) && OverlapX(a, b) > 0
	return sharedX || sharedY
}

// sharesEdgeX reports whether a's right edge meets b's left edge, or
// vice versa.
func sharesEdgeX(a, b PlacedRoom) bool {
	return a.X+a.W == b.X || b.X+b.W == a.X
}

// sharesEdgeY reports whether a's bottom edge meets b's top edge, or
// vice versa.
func sharesEdgeY(a, b PlacedRoom) bool {
	return a.Y+a.H == b.Y || b.Y+b.H == a.Y
}

// Adjacent reports whether two rooms touch OR overlap (spec.md GLOSSARY:
// "two rooms whose rectangles touch or overlap (inclusive)").
func Adjacent(a, b PlacedRoom) bool {
	return Touches(a, b) || Overlaps(a, b)
}

// SharedEdgeOverlap returns the length of the coincident segment when a and
// b share a vertical or horizontal boundary line (spec.md GLOSSARY
// "Shared-edge overlap"). Returns 0 if they don't share an edge line at all
// (even if they overlap in 2D).
func SharedEdgeOverlap(a, b PlacedRoom) int {
	if sharesEdgeX(a, b) {
		if ov := OverlapY(a, b); ov > 0 {
			return ov
		}
	}
	if sharesEdgeY(a, b) {
		if ov := OverlapX(a, b); ov > 0 {
			return ov
		}
	}
	return 0
}

// ManhattanCenterDistance returns |dx|+|dy| between the centers of a and b.
func ManhattanCenterDistance(a, b PlacedRoom) int {
	ax, ay := a.Center()
	bx, by := b.Center()
	return absInt(ax-bx) + absInt(ay-by)
}

// Clamp translates and, if necessary, shrinks r so it fits entirely inside
// the (0,0)-(envW,envH) envelope, per spec.md §4.4's "clamp each placed
// rectangle to (W,H)" requirement. Size is never grown.
func Clamp(r PlacedRoom, envW, envH int) PlacedRoom {
	if r.W > envW {
		r.W = envW
	}
	if r.H > envH {
		r.H = envH
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.X+r.W > envW {
		r.X = envW - r.W
	}
	if r.Y+r.H > envH {
		r.Y = envH - r.H
	}
	return r
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

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
