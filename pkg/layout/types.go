// Package layout defines the placed-room geometry shared by every stage of
// the floor-plan pipeline: the heuristic packer, the CP refiner, the
// geometric repair passes, the scene lifter, and the critic.
package layout

import "fmt"

// PlacedRoom is an axis-aligned rectangular room placement, in millimetres.
// Coordinates and dimensions are integers: the pipeline never reasons about
// sub-millimetre geometry.
type PlacedRoom struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
}

// Bounds returns the rectangle's corners (minX, minY, maxX, maxY).
func (r PlacedRoom) Bounds() (int, int, int, int) {
	return r.X, r.Y, r.X + r.W, r.Y + r.H
}

// Center returns the room's center point, rounded toward zero on odd sizes.
func (r PlacedRoom) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Area returns w*h.
func (r PlacedRoom) Area() int {
	return r.W * r.H
}

// AspectRatio returns max(w,h)/min(w,h), which is >= 1 for a room of
// positive size; it returns 0 if either side is 0.
func (r PlacedRoom) AspectRatio() float64 {
	if r.W == 0 || r.H == 0 {
		return 0
	}
	w, h := float64(r.W), float64(r.H)
	if w < h {
		w, h = h, w
	}
	return w / h
}

// ValidateEnvelope checks invariants 1 and 2 of spec.md §8: the room must
// have positive size and fit entirely inside the (W,H) envelope.
func (r PlacedRoom) ValidateEnvelope(envW, envH int) error {
	if r.W < 1 || r.H < 1 {
		return fmt.Errorf("room %s: size must be >= 1x1, got %dx%d", r.Name, r.W, r.H)
	}
	if r.X < 0 || r.Y < 0 {
		return fmt.Errorf("room %s: origin must be >= 0, got (%d,%d)", r.Name, r.X, r.Y)
	}
	if r.X+r.W > envW || r.Y+r.H > envH {
		return fmt.Errorf("room %s: extends past envelope %dx%d: (%d,%d)+%dx%d", r.Name, envW, envH, r.X, r.Y, r.W, r.H)
	}
	return nil
}

// Result is the output of the pipeline's placement stages: an ordered
// sequence of PlacedRoom plus any room names that could not be placed.
// Names are unique within a Result; the pipeline uses last-wins on
// duplicates (see Result.Upsert).
type Result struct {
	Rooms   []PlacedRoom `json:"rooms"`
	Dropped []string     `json:"dropped"`
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{Rooms: []PlacedRoom{}, Dropped: []string{}}
}

// Clone returns a deep copy safe to mutate independently of the original.
func (res *Result) Clone() *Result {
	out := &Result{
		Rooms:   make([]PlacedRoom, len(res.Rooms)),
		Dropped: make([]string, len(res.Dropped)),
	}
	copy(out.Rooms, res.Rooms)
	copy(out.Dropped, res.Dropped)
	return out
}

// Upsert adds room, replacing any existing room with the same name
// (last-wins, per spec.md §3).
func (res *Result) Upsert(room PlacedRoom) {
	for i := range res.Rooms {
		if res.Rooms[i].Name == room.Name {
			res.Rooms[i] = room
			return
		}
	}
	res.Rooms = append(res.Rooms, room)
}

// Get returns the room with the given name and whether it was found.
func (res *Result) Get(name string) (PlacedRoom, bool) {
	for _, r := range res.Rooms {
		if r.Name == name {
			return r, true
		}
	}
	return PlacedRoom{}, false
}

// Index returns the slice index of the named room, or -1.
func (res *Result) Index(name string) int {
	for i := range res.Rooms {
		if res.Rooms[i].Name == name {
			return i
		}
	}
	return -1
}

// Drop moves name from Rooms (if present) into Dropped.
func (res *Result) Drop(name string) {
	if i := res.Index(name); i >= 0 {
		res.Rooms = append(res.Rooms[:i], res.Rooms[i+1:]...)
	}
	for _, d := range res.Dropped {
		if d == name {
			return
		}
	}
	res.Dropped = append(res.Dropped, name)
}

// IsPrivate reports whether a room name denotes a private room (spec.md
// GLOSSARY: name begins with "bed" or "bath").
func IsPrivate(name string) bool {
	return hasPrefixFold(name, "bed") || hasPrefixFold(name, "bath")
}

// IsHabitable reports whether a room name denotes a habitable room
// (bedroom, living, or kitchen per spec.md GLOSSARY).
func IsHabitable(name string) bool {
	return hasPrefixFold(name, "bed") || hasPrefixFold(name, "living") || hasPrefixFold(name, "kitchen")
}

// IsCorridor reports whether a room name denotes the circulation corridor.
func IsCorridor(name string) bool {
	return hasPrefixFold(name, "corridor")
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		a, b := s[i], prefix[i]
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}

// HubName picks the circulation hub among placed rooms per spec.md §4.5 /
// GLOSSARY: the first corridor* room, else the first living* room, else the
// first room in declaration order. Returns "" if rooms is empty.
func HubName(rooms []PlacedRoom) string {
	for _, r := range rooms {
		if IsCorridor(r.Name) {
			return r.Name
		}
	}
	for _, r := range rooms {
		if hasPrefixFold(r.Name, "living") {
			return r.Name
		}
	}
	if len(rooms) > 0 {
		return rooms[0].Name
	}
	return ""
}
