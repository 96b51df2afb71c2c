package brief

import "math"

// Size chooses the fixed (w,h) for a room per spec.md §4.2:
//   - if TargetArea is set, w = max(minW, floor(sqrt(targetArea))),
//     h = max(minH, ceil(targetArea/w))
//   - else (minW, minH)
//   - always clamped to the (envW, envH) envelope
func Size(rs RoomSpec, envW, envH int) (w, h int) {
	if rs.TargetArea > 0 {
		w = rs.MinW
		if isw := int(math.Sqrt(float64(rs.TargetArea))); isw > w {
			w = isw
		}
		h = rs.MinH
		if ch := ceilDiv(rs.TargetArea, w); ch > h {
			h = ch
		}
	} else {
		w, h = rs.MinW, rs.MinH
	}
	if w > envW {
		w = envW
	}
	if h > envH {
		h = envH
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return a
	}
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}
