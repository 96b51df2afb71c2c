package brief

import "fmt"

// Default soft-field and weight values applied by Normalize (spec.md §4.1).
const (
	DefaultAspectRatioTarget    = 1.5
	DefaultAspectRatioTolerance = 0.5
	DefaultWeightAdjacency      = 1.0
	DefaultWeightPrivacy        = 1.0
	DefaultWeightAspect         = 0.5
	DefaultWeightArea           = 0.2
	DefaultWeightHub            = 0.3

	// DefaultMinCorridorWidth is the reservation band height used by the
	// corridor inserter (S5) when the brief doesn't set one.
	DefaultMinCorridorWidth = 900

	// DefaultMinOverlap and DefaultMinPrivateForCorridor are the
	// connectivity extension's defaults (spec.md §9).
	DefaultMinOverlap            = 50
	DefaultMinPrivateForCorridor = 3
)

// Validate checks the synchronous "brief invalid" conditions of spec.md §7:
// non-positive envelope or an empty room list. It also rejects a room with
// an empty name and two rooms sharing a name.
func (b *Brief) Validate() error {
	if b.W <= 0 || b.H <= 0 {
		return &ValidationError{Reason: fmt.Sprintf("envelope must be positive, got %dx%d", b.W, b.H)}
	}
	if len(b.Rooms) == 0 {
		return &ValidationError{Reason: "rooms list is empty"}
	}
	seen := make(map[string]bool, len(b.Rooms))
	for _, rs := range b.Rooms {
		if rs.Name == "" {
			return &ValidationError{Reason: "room name must not be empty"}
		}
		if seen[rs.Name] {
			return &ValidationError{Reason: fmt.Sprintf("duplicate room name %q", rs.Name)}
		}
		seen[rs.Name] = true
	}
	return nil
}

// Normalize applies the S1 brief normalizer (spec.md §4.1): clamps
// min_w/min_h to >= 1, fills in default soft fields and weights. It does
// not mutate b; it returns a normalized copy.
func Normalize(b *Brief) *Brief {
	out := *b
	out.Rooms = make([]RoomSpec, len(b.Rooms))
	copy(out.Rooms, b.Rooms)
	for i := range out.Rooms {
		if out.Rooms[i].MinW < 1 {
			out.Rooms[i].MinW = 1
		}
		if out.Rooms[i].MinH < 1 {
			out.Rooms[i].MinH = 1
		}
	}

	if out.Floors < 1 {
		out.Floors = 1
	}

	if out.Objectives.AspectRatioTarget == 0 {
		out.Objectives.AspectRatioTarget = DefaultAspectRatioTarget
	}
	if out.Objectives.AspectRatioTolerance == 0 {
		out.Objectives.AspectRatioTolerance = DefaultAspectRatioTolerance
	}
	if out.Objectives.EnforcePrivacy == nil {
		t := true
		out.Objectives.EnforcePrivacy = &t
	}

	if out.Weights.Adjacency == 0 {
		out.Weights.Adjacency = DefaultWeightAdjacency
	}
	if out.Weights.Privacy == 0 {
		out.Weights.Privacy = DefaultWeightPrivacy
	}
	if out.Weights.Aspect == 0 {
		out.Weights.Aspect = DefaultWeightAspect
	}
	if out.Weights.Area == 0 {
		out.Weights.Area = DefaultWeightArea
	}
	if out.Weights.Hub == 0 {
		out.Weights.Hub = DefaultWeightHub
	}

	if out.Constraints.MinCorridorWidth == 0 {
		out.Constraints.MinCorridorWidth = DefaultMinCorridorWidth
	}

	if out.Connectivity.MinOverlap == 0 {
		out.Connectivity.MinOverlap = DefaultMinOverlap
	}
	if out.Connectivity.MinPrivateForCorridor == 0 {
		out.Connectivity.MinPrivateForCorridor = DefaultMinPrivateForCorridor
	}

	return &out
}
