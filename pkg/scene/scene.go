// Package scene lifts a flat PlacedRoom layout into the richer scene
// graph (S8): spaces with boundary segments, doors on shared edges,
// perimeter windows, multi-floor replication, and stairs (S12). The
// scene drives both rule validation and soft-cost evaluation.
package scene

import (
	"sort"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
)

// OpeningKind is a tagged variant for the kinds of opening a Space can
// carry, per SPEC_FULL.md §3's "tagged variants, not string dispatch"
// note.
type OpeningKind string

const (
	OpeningDoor   OpeningKind = "door"
	OpeningWindow OpeningKind = "window"
)

// FixtureKind is a tagged variant for scene fixtures.
type FixtureKind string

const (
	FixtureStairs FixtureKind = "stairs"
)

// Point is a 2D coordinate in millimetres.
type Point struct {
	X, Y int
}

// Boundary is one edge segment of a Space's rectangle.
type Boundary struct {
	From, To  Point
	Thickness int
}

// Opening is a door or window placed on a boundary.
type Opening struct {
	Kind OpeningKind
	At   Point
	W, H int
}

// Fixture is a non-opening scene object, such as a stair.
type Fixture struct {
	Kind FixtureKind
	At   Point
	W, H int
}

// Space is the scene-graph counterpart of a PlacedRoom.
type Space struct {
	Name       string
	Rect       layout.PlacedRoom
	Boundaries [4]Boundary
	Openings   []Opening
	Fixtures   []Fixture
}

// Floor is one building level.
type Floor struct {
	Index     int
	Elevation int
	Spaces    []Space
	Dropped   []string
}

// Building is the top-level scene container.
type Building struct {
	W, H   int
	Floors []Floor
}

// BoundaryThickness is the fixed wall thickness used for every Space's
// boundary segments (spec.md §4.9).
const BoundaryThickness = 100

// DoorSize and WindowSize are the fixed opening dimensions of spec.md §4.9.
var (
	DoorSize   = [2]int{90, 2000}
	WindowSize = [2]int{120, 1200}
)

// FloorElevationStep is the per-floor elevation delta in millimetres.
const FloorElevationStep = 3000

// Lift builds a Building scene from (b, result) for every floor (spec.md
// §4.9). All floors share the same room layout (floors are independently
// replicated, not separately solved, per spec.md §1 Non-goals).
func Lift(b *brief.Brief, result *layout.Result) *Building {
	floors := b.Floors
	if floors < 1 {
		floors = 1
	}
	bld := &Building{W: b.W, H: b.H, Floors: make([]Floor, floors)}
	for i := 0; i < floors; i++ {
		bld.Floors[i] = liftFloor(b, result, i)
	}
	return bld
}

func liftFloor(b *brief.Brief, result *layout.Result, index int) Floor {
	floor := Floor{Index: index, Elevation: index * FloorElevationStep, Dropped: append([]string(nil), result.Dropped...)}

	floor.Spaces = make([]Space, len(result.Rooms))
	for i, r := range result.Rooms {
		floor.Spaces[i] = Space{Name: r.Name, Rect: r, Boundaries: boundariesOf(r)}
	}

	placeDoors(&floor)
	placePerimeterWindows(&floor, b.W, b.H)

	if b.Floors > 1 {
		placeStairs(&floor, b.W, b.H)
	}

	return floor
}

func boundariesOf(r layout.PlacedRoom) [4]Boundary {
	return [4]Boundary{
		{From: Point{r.X, r.Y}, To: Point{r.X + r.W, r.Y}, Thickness: BoundaryThickness},         // top
		{From: Point{r.X + r.W, r.Y}, To: Point{r.X + r.W, r.Y + r.H}, Thickness: BoundaryThickness}, // right
		{From: Point{r.X + r.W, r.Y + r.H}, To: Point{r.X, r.Y + r.H}, Thickness: BoundaryThickness}, // bottom
		{From: Point{r.X, r.Y + r.H}, To: Point{r.X, r.Y}, Thickness: BoundaryThickness},         // left
	}
}

// placeDoors iterates over every pair of spaces and places a door where
// spec.md §4.9's two policies apply: corridor<->{private|living} on a
// shared vertical edge with sufficient y-overlap, and living<->kitchen on
// a shared horizontal edge.
func placeDoors(floor *Floor) {
	for i := range floor.Spaces {
		for j := i + 1; j < len(floor.Spaces); j++ {
			a, bSpace := &floor.Spaces[i], &floor.Spaces[j]
			ra, rb := a.Rect, bSpace.Rect

			if sharesVerticalEdge(ra, rb) {
				ov := layout.OverlapY(ra, rb)
				if ov >= brief.DefaultMinOverlap && involvesCorridorPair(ra.Name, rb.Name) {
					midY := verticalOverlapMid(ra, rb)
					x := verticalEdgeX(ra, rb)
					door := Opening{Kind: OpeningDoor, At: Point{x, midY}, W: DoorSize[0], H: DoorSize[1]}
					a.Openings = append(a.Openings, door)
					bSpace.Openings = append(bSpace.Openings, door)
				}
			}

			if sharesHorizontalEdge(ra, rb) {
				ov := layout.OverlapX(ra, rb)
				if ov > 0 && livingKitchenPair(ra.Name, rb.Name) {
					midX := horizontalOverlapMid(ra, rb)
					y := horizontalEdgeY(ra, rb)
					door := Opening{Kind: OpeningDoor, At: Point{midX, y}, W: DoorSize[0], H: DoorSize[1]}
					a.Openings = append(a.Openings, door)
					bSpace.Openings = append(bSpace.Openings, door)
				}
			}
		}
	}
}

func sharesVerticalEdge(a, b layout.PlacedRoom) bool {
	return a.X+a.W == b.X || b.X+b.W == a.X
}

func sharesHorizontalEdge(a, b layout.PlacedRoom) bool {
	return a.Y+a.H == b.Y || b.Y+b.H == a.Y
}

func verticalEdgeX(a, b layout.PlacedRoom) int {
	if a.X+a.W == b.X {
		return a.X + a.W
	}
	return b.X + b.W
}

func horizontalEdgeY(a, b layout.PlacedRoom) int {
	if a.Y+a.H == b.Y {
		return a.Y + a.H
	}
	return b.Y + b.H
}

func verticalOverlapMid(a, b layout.PlacedRoom) int {
	lo := maxInt(a.Y, b.Y)
	hi := minInt(a.Y+a.H, b.Y+b.H)
	return (lo + hi) / 2
}

func horizontalOverlapMid(a, b layout.PlacedRoom) int {
	lo := maxInt(a.X, b.X)
	hi := minInt(a.X+a.W, b.X+b.W)
	return (lo + hi) / 2
}

func involvesCorridorPair(a, b string) bool {
	if layout.IsCorridor(a) {
		return layout.IsPrivate(b) || hasPrefix(b, "living")
	}
	if layout.IsCorridor(b) {
		return layout.IsPrivate(a) || hasPrefix(a, "living")
	}
	return false
}

func livingKitchenPair(a, b string) bool {
	return (hasPrefix(a, "living") && hasPrefix(b, "kitchen")) || (hasPrefix(a, "kitchen") && hasPrefix(b, "living"))
}

func hasPrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		c1, c2 := s[i], prefix[i]
		if 'A' <= c1 && c1 <= 'Z' {
			c1 += 'a' - 'A'
		}
		if 'A' <= c2 && c2 <= 'Z' {
			c2 += 'a' - 'A'
		}
		if c1 != c2 {
			return false
		}
	}
	return true
}

// placePerimeterWindows adds a window to every non-bath space for each of
// its edges that lies on the building envelope boundary.
func placePerimeterWindows(floor *Floor, envW, envH int) {
	for i := range floor.Spaces {
		s := &floor.Spaces[i]
		if layout.IsPrivate(s.Name) && hasPrefix(s.Name, "bath") {
			continue
		}
		r := s.Rect
		if r.X == 0 {
			s.Openings = append(s.Openings, Opening{Kind: OpeningWindow, At: Point{0, r.Y + r.H/2}, W: WindowSize[0], H: WindowSize[1]})
		}
		if r.X+r.W == envW {
			s.Openings = append(s.Openings, Opening{Kind: OpeningWindow, At: Point{envW, r.Y + r.H/2}, W: WindowSize[0], H: WindowSize[1]})
		}
		if r.Y == 0 {
			s.Openings = append(s.Openings, Opening{Kind: OpeningWindow, At: Point{r.X + r.W/2, 0}, W: WindowSize[0], H: WindowSize[1]})
		}
		if r.Y+r.H == envH {
			s.Openings = append(s.Openings, Opening{Kind: OpeningWindow, At: Point{r.X + r.W/2, envH}, W: WindowSize[0], H: WindowSize[1]})
		}
	}
}

// placeStairs adds a STAIRS fixture at the envelope center, attached to
// the first space containing that point, or the first space if none
// contains it.
func placeStairs(floor *Floor, envW, envH int) {
	if len(floor.Spaces) == 0 {
		return
	}
	cx, cy := envW/2, envH/2
	target := 0
	for i, s := range floor.Spaces {
		if contains(s.Rect, cx, cy) {
			target = i
			break
		}
	}
	floor.Spaces[target].Fixtures = append(floor.Spaces[target].Fixtures, Fixture{
		Kind: FixtureStairs, At: Point{cx, cy}, W: 1000, H: 1000,
	})
}

func contains(r layout.PlacedRoom, x, y int) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// AdjacencyGraph derives the undirected touch/overlap adjacency graph for
// a floor, as an adjacency list. It is never persisted; callers derive it
// fresh from the scene whenever needed (spec.md §9).
func AdjacencyGraph(floor Floor) map[string][]string {
	graph := make(map[string][]string, len(floor.Spaces))
	for _, s := range floor.Spaces {
		graph[s.Name] = nil
	}
	for i := range floor.Spaces {
		for j := i + 1; j < len(floor.Spaces); j++ {
			a, b := floor.Spaces[i], floor.Spaces[j]
			if layout.Adjacent(a.Rect, b.Rect) {
				graph[a.Name] = append(graph[a.Name], b.Name)
				graph[b.Name] = append(graph[b.Name], a.Name)
			}
		}
	}
	for name := range graph {
		sort.Strings(graph[name])
	}
	return graph
}

// IsolatedSpaces returns the names of spaces with zero adjacency
// neighbors, sorted for deterministic reporting.
func IsolatedSpaces(floor Floor) []string {
	graph := AdjacencyGraph(floor)
	var isolated []string
	for name, neighbors := range graph {
		if len(neighbors) == 0 {
			isolated = append(isolated, name)
		}
	}
	sort.Strings(isolated)
	return isolated
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
