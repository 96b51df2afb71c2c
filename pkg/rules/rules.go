// Package rules declares the catalog of rules evaluated by the rule
// validator (S9): a closed set of tagged rule kinds, each with a
// {id, title, severity, kind, params} shape, plus the catalog loading
// policy (caller-supplied path list, falling back to built-in defaults).
package rules

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
	"github.com/archform/layoutgen/pkg/scene"
)

// Severity is a tagged variant for a rule's enforcement level.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Kind is a tagged variant naming one of the exhaustive rule kinds of
// spec.md §4.10.
type Kind string

const (
	KindMinCorridorWidth       Kind = "min_corridor_width"
	KindBedroomEgressWindow    Kind = "bedroom_egress_window"
	KindHabitableDaylight      Kind = "habitable_daylight_window"
	KindMinRoomArea            Kind = "min_room_area"
	KindConnectedRooms         Kind = "connected_rooms"
	KindPrivateRoomsToCorridor Kind = "private_rooms_to_corridor"
	KindCorridorTouchesLiving  Kind = "corridor_touches_living"
)

// Params carries the kind-specific parameters a Rule needs. Only the
// fields relevant to Rule.Kind are populated.
type Params struct {
	Min      int    `json:"min,omitempty"`
	Selector string `json:"selector,omitempty"`
}

// Rule is one declarative catalog entry.
type Rule struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Params   Params   `json:"params,omitempty"`
}

// Violation is one failed rule evaluation, per spec.md §6.
type Violation struct {
	ID         string
	Title      string
	Severity   Severity
	Where      string
	Suggestion string
}

// String formats a violation exactly as spec.md §6 requires:
// "[severity] id: title @ where — suggestion".
func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s @ %s — %s", v.Severity, v.ID, v.Title, v.Where, v.Suggestion)
}

// DefaultCatalog returns the built-in rule set named in spec.md §6:
// corridor minimum 900mm (error), bedroom egress window (error),
// habitable daylight (warn), bedroom minimum area 70000mm² (error).
func DefaultCatalog() []Rule {
	return []Rule{
		{
			ID: "corridor_min_width", Title: "Corridor must meet minimum width",
			Severity: SeverityError, Kind: KindMinCorridorWidth,
			Params: Params{Min: brief.DefaultMinCorridorWidth},
		},
		{
			ID: "bedroom_egress_window", Title: "Every bedroom needs an egress window",
			Severity: SeverityError, Kind: KindBedroomEgressWindow,
		},
		{
			ID: "habitable_daylight_window", Title: "Habitable rooms should have daylight",
			Severity: SeverityWarn, Kind: KindHabitableDaylight,
		},
		{
			ID: "bedroom_min_area", Title: "Bedrooms must meet minimum area",
			Severity: SeverityError, Kind: KindMinRoomArea,
			Params: Params{Min: 70000, Selector: "bed"},
		},
	}
}

// LoadCatalog reads rule catalogs (JSON arrays of Rule) from paths in
// order, returning the first one that parses successfully. It falls back
// to DefaultCatalog if paths is empty or every path is missing/invalid
// (spec.md §6).
func LoadCatalog(paths []string) []Rule {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var catalog []Rule
		if err := json.Unmarshal(data, &catalog); err != nil {
			continue
		}
		return catalog
	}
	return DefaultCatalog()
}

// Evaluate runs every rule in catalog against the building and layout,
// returning the resulting violations.
func Evaluate(catalog []Rule, b *brief.Brief, bld *scene.Building, result *layout.Result) []Violation {
	var violations []Violation
	for _, rule := range catalog {
		violations = append(violations, evaluateRule(rule, b, bld, result)...)
	}
	for _, name := range result.Dropped {
		violations = append(violations, Violation{
			ID: "packing_drop", Title: "Room could not be placed",
			Severity: SeverityError, Where: name,
			Suggestion: "enlarge the envelope or reduce room sizes",
		})
	}
	return violations
}

// Compliant reports whether violations contains no error-severity entry
// (spec.md §4.10).
func Compliant(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityError {
			return false
		}
	}
	return true
}

func evaluateRule(rule Rule, b *brief.Brief, bld *scene.Building, result *layout.Result) []Violation {
	switch rule.Kind {
	case KindMinCorridorWidth:
		return checkMinCorridorWidth(rule, result)
	case KindBedroomEgressWindow:
		return checkWindowPresence(rule, bld, isBedroom)
	case KindHabitableDaylight:
		return checkWindowPresence(rule, bld, layout.IsHabitable)
	case KindMinRoomArea:
		return checkMinRoomArea(rule, result)
	case KindConnectedRooms:
		return checkConnectedRooms(rule, bld)
	case KindPrivateRoomsToCorridor:
		return checkPrivateRoomsToCorridor(rule, b, result)
	case KindCorridorTouchesLiving:
		return checkCorridorTouchesLiving(rule, b, result)
	default:
		return nil
	}
}

func isBedroom(name string) bool {
	return hasPrefix(name, "bed")
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

func checkMinCorridorWidth(rule Rule, result *layout.Result) []Violation {
	corridor, ok := result.Get("corridor")
	if !ok {
		return nil
	}
	minSide := corridor.W
	if corridor.H < minSide {
		minSide = corridor.H
	}
	if minSide >= rule.Params.Min {
		return nil
	}
	return []Violation{{
		ID: rule.ID, Title: rule.Title, Severity: rule.Severity, Where: "corridor",
		Suggestion: fmt.Sprintf("widen corridor to at least %dmm (currently %dmm)", rule.Params.Min, minSide),
	}}
}

func checkWindowPresence(rule Rule, bld *scene.Building, selector func(string) bool) []Violation {
	var violations []Violation
	for _, f := range bld.Floors {
		for _, s := range f.Spaces {
			if !selector(s.Name) {
				continue
			}
			hasWindow := false
			for _, o := range s.Openings {
				if o.Kind == scene.OpeningWindow {
					hasWindow = true
					break
				}
			}
			if !hasWindow {
				violations = append(violations, Violation{
					ID: rule.ID, Title: rule.Title, Severity: rule.Severity, Where: s.Name,
					Suggestion: "move room to an exterior wall or widen the envelope",
				})
			}
		}
	}
	return violations
}

func checkMinRoomArea(rule Rule, result *layout.Result) []Violation {
	var violations []Violation
	for _, r := range result.Rooms {
		if rule.Params.Selector != "" && !hasPrefix(r.Name, rule.Params.Selector) {
			continue
		}
		if r.Area() < rule.Params.Min {
			violations = append(violations, Violation{
				ID: rule.ID, Title: rule.Title, Severity: rule.Severity, Where: r.Name,
				Suggestion: fmt.Sprintf("increase area to at least %d mm² (currently %d)", rule.Params.Min, r.Area()),
			})
		}
	}
	return violations
}

func checkConnectedRooms(rule Rule, bld *scene.Building) []Violation {
	var violations []Violation
	for _, f := range bld.Floors {
		for _, isolated := range scene.IsolatedSpaces(f) {
			violations = append(violations, Violation{
				ID: rule.ID, Title: rule.Title, Severity: rule.Severity, Where: isolated,
				Suggestion: "connect room to a neighbor or the corridor",
			})
		}
	}
	return violations
}

func checkPrivateRoomsToCorridor(rule Rule, b *brief.Brief, result *layout.Result) []Violation {
	corridor, ok := result.Get("corridor")
	if !ok {
		return nil
	}
	minOverlap := b.Connectivity.MinOverlap
	if minOverlap <= 0 {
		minOverlap = brief.DefaultMinOverlap
	}
	var violations []Violation
	for _, r := range result.Rooms {
		if !layout.IsPrivate(r.Name) {
			continue
		}
		if layout.SharedEdgeOverlap(r, corridor) < minOverlap {
			violations = append(violations, Violation{
				ID: rule.ID, Title: rule.Title, Severity: rule.Severity, Where: r.Name,
				Suggestion: "move room to share more edge length with the corridor",
			})
		}
	}
	return violations
}

func checkCorridorTouchesLiving(rule Rule, b *brief.Brief, result *layout.Result) []Violation {
	corridor, ok := result.Get("corridor")
	if !ok {
		return nil
	}
	hasLiving := false
	for _, r := range result.Rooms {
		if !hasPrefix(r.Name, "living") {
			continue
		}
		hasLiving = true
		if layout.Touches(r, corridor) && touchesEnvelopeEnd(r, corridor, b.W, b.H) {
			return nil
		}
	}
	if !hasLiving {
		return nil
	}
	return []Violation{{
		ID: rule.ID, Title: rule.Title, Severity: rule.Severity, Where: "living",
		Suggestion: "align living room with a corridor end on the envelope boundary",
	}}
}

func touchesEnvelopeEnd(r, corridor layout.PlacedRoom, envW, envH int) bool {
	return r.X == 0 || r.Y == 0 || r.X+r.W == envW || r.Y+r.H == envH ||
		corridor.X == 0 || corridor.Y == 0 || corridor.X+corridor.W == envW || corridor.Y+corridor.H == envH
}
