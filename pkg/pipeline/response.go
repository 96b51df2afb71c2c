package pipeline

import "github.com/archform/layoutgen/pkg/layout"

// LayoutOut is the layout section of a Response (spec.md §6).
type LayoutOut struct {
	Rooms   []layout.PlacedRoom `json:"rooms"`
	Dropped []string            `json:"dropped"`
}

// ValidationOut is the validation section of a Response. Violations are
// pre-formatted strings ("[severity] id: title @ where — suggestion"),
// per spec.md §6.
type ValidationOut struct {
	Compliant  bool     `json:"compliant"`
	Violations []string `json:"violations"`
}

// Metrics carries the derived reporting metrics named in spec.md §6 and
// defined in SPEC_FULL.md's supplemented features section.
type Metrics struct {
	ProgramSatisfactionPct float64 `json:"program_satisfaction_pct"`
	CorridorRatio          float64 `json:"corridor_ratio"`
	CompliancePass         int     `json:"compliance_pass"`
	ViolationsPer100m2     float64 `json:"violations_per_100m2"`
	StructAlignmentScore   float64 `json:"struct_alignment_score"`
	MepAlignmentScore      float64 `json:"mep_alignment_score"`
}

// Governance carries the run's audit fields. TenantID and ConsentExternal
// are reserved passthrough fields: the core never reads or enforces them,
// an external collaborator (the HTTP surface) is expected to set them.
type Governance struct {
	RunID           string   `json:"run_id"`
	Seed            uint64   `json:"seed"`
	TenantID        string   `json:"tenant_id,omitempty"`
	ConsentExternal bool     `json:"consent_external"`
	RuleIDs         []string `json:"rule_ids"`
}

// Response is the external result of a layout generation request
// (spec.md §6).
type Response struct {
	Layout     LayoutOut     `json:"layout"`
	Validation ValidationOut `json:"validation"`
	Cost       CostOut       `json:"cost"`
	Metrics    Metrics       `json:"metrics"`
	Governance Governance    `json:"governance"`
}

// CostOut mirrors cost.Result with JSON tags matching spec.md §6's
// cost = {total, terms}.
type CostOut struct {
	Total float64            `json:"total"`
	Terms map[string]float64 `json:"terms"`
}
