// Package brief defines the Brief request type and the S1 normalizer /
// §4.2 sizer that prepare a Brief for the rest of the layout pipeline.
package brief

// RoomSpec describes one room the caller wants placed.
type RoomSpec struct {
	Name       string `yaml:"name" json:"name"`
	MinW       int    `yaml:"minW" json:"minW"`
	MinH       int    `yaml:"minH" json:"minH"`
	TargetArea int    `yaml:"targetArea,omitempty" json:"targetArea,omitempty"`
}

// AreaBound is a hard per-room (or per-selector) area constraint.
type AreaBound struct {
	Selector string `yaml:"selector" json:"selector"` // room name or name prefix
	MinArea  int    `yaml:"minArea,omitempty" json:"minArea,omitempty"`
	MaxArea  int    `yaml:"maxArea,omitempty" json:"maxArea,omitempty"`
}

// Constraints carries the brief's hard requirements.
type Constraints struct {
	RoomAreaBounds     []AreaBound `yaml:"roomAreaBounds,omitempty" json:"roomAreaBounds,omitempty"`
	MinCorridorWidth   int         `yaml:"minCorridorWidth,omitempty" json:"minCorridorWidth,omitempty"`
}

// AdjacencyPair names two rooms the caller would like placed next to each
// other.
type AdjacencyPair struct {
	A string `yaml:"a" json:"a"`
	B string `yaml:"b" json:"b"`
}

// Objectives carries the brief's soft preferences.
type Objectives struct {
	AdjacencyPairs      []AdjacencyPair `yaml:"adjacencyPairs,omitempty" json:"adjacencyPairs,omitempty"`
	EnforcePrivacy      *bool           `yaml:"enforcePrivacy,omitempty" json:"enforcePrivacy,omitempty"`
	AspectRatioTarget   float64         `yaml:"aspectRatioTarget,omitempty" json:"aspectRatioTarget,omitempty"`
	AspectRatioTolerance float64        `yaml:"aspectRatioTolerance,omitempty" json:"aspectRatioTolerance,omitempty"`
}

// Weights scales the soft-cost terms of §4.11.
type Weights struct {
	Adjacency float64 `yaml:"adjacency,omitempty" json:"adjacency,omitempty"`
	Privacy   float64 `yaml:"privacy,omitempty" json:"privacy,omitempty"`
	Aspect    float64 `yaml:"aspect,omitempty" json:"aspect,omitempty"`
	Area      float64 `yaml:"area,omitempty" json:"area,omitempty"`
	Hub       float64 `yaml:"hub,omitempty" json:"hub,omitempty"`
}

// Connectivity is the optional extension named in spec.md §9 ("referenced
// but not present in the Brief schema in source"): the minimum shared-edge
// overlap a room must have with its hub/corridor, and the private-room
// count that triggers corridor insertion.
type Connectivity struct {
	MinOverlap             int `yaml:"minOverlap,omitempty" json:"minOverlap,omitempty"`
	MinPrivateForCorridor  int `yaml:"minPrivateForCorridor,omitempty" json:"minPrivateForCorridor,omitempty"`
}

// Brief is the full layout-generation request (spec.md §3).
type Brief struct {
	W            int          `yaml:"w" json:"w"`
	H            int          `yaml:"h" json:"h"`
	Floors       int          `yaml:"floors,omitempty" json:"floors,omitempty"`
	Rooms        []RoomSpec   `yaml:"rooms" json:"rooms"`
	Constraints  Constraints  `yaml:"constraints,omitempty" json:"constraints,omitempty"`
	Objectives   Objectives   `yaml:"objectives,omitempty" json:"objectives,omitempty"`
	Weights      Weights      `yaml:"weights,omitempty" json:"weights,omitempty"`
	Connectivity Connectivity `yaml:"connectivity,omitempty" json:"connectivity,omitempty"`
	Seed         uint64       `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// MillimetersPerMeter is used only to express metrics in m² (spec.md §6
// metrics.violations_per_100m²); the core never converts geometry itself.
const MillimetersPerMeter = 1000

// ValidationError reports that a Brief failed the synchronous checks of
// spec.md §7 ("Brief invalid"): non-positive envelope, empty room list, or
// an empty or duplicate room name.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid brief: " + e.Reason
}
