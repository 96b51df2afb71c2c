// Package pipeline wires the brief, topology, packing, refine, repair,
// scene, rules, cost and critic packages into the external interface of
// spec.md §6: Generate takes a Brief and returns a Response, orchestrating
// the S1-S12 stages sequentially per request (spec.md §5).
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/critic"
	"github.com/archform/layoutgen/pkg/layout"
	"github.com/archform/layoutgen/pkg/packing"
	"github.com/archform/layoutgen/pkg/refine"
	"github.com/archform/layoutgen/pkg/repair"
	"github.com/archform/layoutgen/pkg/rules"
	"github.com/archform/layoutgen/pkg/topology"
)

// Options tunes a single Generate call with fields the Brief itself does
// not carry: the rule catalog source and audit passthroughs the core
// never interprets.
type Options struct {
	RuleCatalogPaths []string
	TenantID         string
	ConsentExternal  bool
}

// PostconditionError reports that geometric repair left overlapping rooms
// even after the one bounded retry from heuristic packing (spec.md §7).
// It is the single case where the pipeline itself fails fast rather than
// carrying the defect forward as data, because downstream stages assume
// the non-overlap invariant holds.
type PostconditionError struct {
	Overlapping []string
}

func (e *PostconditionError) Error() string {
	return fmt.Sprintf("geometric repair left %d overlapping room(s) after retry", len(e.Overlapping))
}

// Generate runs the full layout pipeline for b and returns the response
// described in spec.md §6. b is normalized and validated before any stage
// runs; a non-positive envelope or empty room list surfaces synchronously
// as a *brief.ValidationError with no layout produced.
func Generate(ctx context.Context, b *brief.Brief, opts Options) (*Response, error) {
	nb := brief.Normalize(b)
	if err := nb.Validate(); err != nil {
		return nil, err
	}
	if err := checkDone(ctx); err != nil {
		return nil, err
	}

	catalog := rules.LoadCatalog(opts.RuleCatalogPaths)

	// S2 + S3: topology and retrieval seeds feed the critic's candidate
	// pool directly; they never go through refine/repair themselves.
	topologySeeds := topology.Seed(nb, nb.Seed, topology.DefaultSeedCount)
	if retrieved := topology.Retrieve(nb, topology.DefaultCatalog()); retrieved != nil {
		topologySeeds = append(topologySeeds, retrieved)
	}
	if err := checkDone(ctx); err != nil {
		return nil, err
	}

	repaired, err := packRefineRepair(ctx, nb)
	if err != nil {
		return nil, err
	}
	if err := checkDone(ctx); err != nil {
		return nil, err
	}

	// S11: critic candidate pool and selection.
	candidates := critic.BuildCandidates(nb, topologySeeds, repaired, nb.Seed, critic.DefaultJitterCount)
	chosen := critic.Select(nb, candidates, catalog)
	if chosen == nil {
		return nil, fmt.Errorf("pipeline: no candidate layout produced")
	}

	return buildResponse(nb, opts, catalog, chosen), nil
}

// retrySeedSalt perturbs the refiner's master seed on the bounded retry
// (spec.md §7) so the retry explores a different local-search trajectory
// rather than deterministically reproducing the same failure.
const retrySeedSalt = 0x9e3779b97f4a7c15

// packRefineRepair runs S4-S7: heuristic pack, CP refiner substitute,
// geometric repair. If repair still leaves any overlap (room-room or
// room-corridor), it retries once from heuristic pack before failing
// with a *PostconditionError (spec.md §7).
func packRefineRepair(ctx context.Context, nb *brief.Brief) (*layout.Result, error) {
	var lastRepaired *layout.Result
	for attempt := 0; attempt < 2; attempt++ {
		heuristic := heuristicPack(nb, attempt)

		refineSeed := nb.Seed
		if attempt > 0 {
			refineSeed ^= retrySeedSalt
		}
		refined := refine.Refine(ctx, nb, heuristic, refineSeed, refine.Config{})
		if err := checkDone(ctx); err != nil {
			return nil, err
		}

		// A non-optimal/non-feasible refiner result is a silent downgrade
		// (spec.md §7): the pipeline keeps the heuristic layout and repairs
		// it directly rather than surfacing the refiner's failure.
		base := refined.Layout
		if refined.Status == refine.StatusInfeasible || refined.Status == refine.StatusUnknown {
			base = heuristic
		}

		lastRepaired = repair.Run(nb, base, repair.Options{})
		if !hasOverlap(lastRepaired) {
			return lastRepaired, nil
		}
	}

	return nil, &PostconditionError{Overlapping: overlappingRoomNames(lastRepaired)}
}

// heuristicPack runs S5 or S4: when the brief's private-room count
// warrants a corridor, the corridor inserter packs every room around the
// corridor band by itself; otherwise hub-first packing is used when a hub
// room (corridor*/living*) exists, else next-fit row packing. On the retry
// attempt (attempt > 0) the non-corridor path falls back to plain next-fit
// row packing instead of hub-first, giving the retry a structurally
// different starting point.
func heuristicPack(nb *brief.Brief, attempt int) *layout.Result {
	if packing.NeedsCorridor(nb) {
		return packing.PackWithCorridor(nb)
	}
	if attempt == 0 && hasHubPrefix(nb) {
		return packing.HubFirstPack(nb)
	}
	return packing.NextFitRow(nb)
}

func hasHubPrefix(nb *brief.Brief) bool {
	for _, rs := range nb.Rooms {
		if layout.IsCorridor(rs.Name) || hasPrefixFold(rs.Name, "living") {
			return true
		}
	}
	return false
}

func hasPrefixFold(s, prefix string) bool {
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

// hasOverlap reports whether any two rooms overlap, including a room and
// the corridor band. spec.md §8's non-overlap property has no corridor
// exception.
func hasOverlap(res *layout.Result) bool {
	for i := 0; i < len(res.Rooms); i++ {
		for j := i + 1; j < len(res.Rooms); j++ {
			if layout.Overlaps(res.Rooms[i], res.Rooms[j]) {
				return true
			}
		}
	}
	return false
}

func overlappingRoomNames(res *layout.Result) []string {
	var names []string
	seen := make(map[string]bool)
	for i := 0; i < len(res.Rooms); i++ {
		for j := i + 1; j < len(res.Rooms); j++ {
			if layout.Overlaps(res.Rooms[i], res.Rooms[j]) {
				for _, n := range []string{res.Rooms[i].Name, res.Rooms[j].Name} {
					if !seen[n] {
						seen[n] = true
						names = append(names, n)
					}
				}
			}
		}
	}
	return names
}

func buildResponse(nb *brief.Brief, opts Options, catalog []rules.Rule, chosen *critic.Candidate) *Response {
	violationStrings := make([]string, len(chosen.Violations))
	for i, v := range chosen.Violations {
		violationStrings[i] = v.String()
	}

	ruleIDs := make([]string, len(catalog))
	for i, r := range catalog {
		ruleIDs[i] = r.ID
	}

	return &Response{
		Layout: LayoutOut{
			Rooms:   chosen.Layout.Rooms,
			Dropped: chosen.Layout.Dropped,
		},
		Validation: ValidationOut{
			Compliant:  rules.Compliant(chosen.Violations),
			Violations: violationStrings,
		},
		Cost: CostOut{
			Total: chosen.Cost.Total,
			Terms: chosen.Cost.Terms,
		},
		Metrics: computeMetrics(nb, chosen),
		Governance: Governance{
			RunID:           uuid.New().String(),
			Seed:            nb.Seed,
			TenantID:        opts.TenantID,
			ConsentExternal: opts.ConsentExternal,
			RuleIDs:         ruleIDs,
		},
	}
}

func computeMetrics(nb *brief.Brief, chosen *critic.Candidate) Metrics {
	requested := len(nb.Rooms)
	placed := 0
	for _, rs := range nb.Rooms {
		if _, ok := chosen.Layout.Get(rs.Name); ok {
			placed++
		}
	}
	satisfactionPct := 0.0
	if requested > 0 {
		satisfactionPct = 100 * float64(placed) / float64(requested)
	}

	corridorRatio := 0.0
	if corridorRoom, ok := chosen.Layout.Get(packing.CorridorName); ok && nb.W > 0 && nb.H > 0 {
		corridorRatio = float64(corridorRoom.Area()) / float64(nb.W*nb.H)
	}

	envelopeAreaM2 := float64(nb.W*nb.H) / float64(brief.MillimetersPerMeter*brief.MillimetersPerMeter)
	violationsPer100m2 := 0.0
	if envelopeAreaM2 > 0 {
		violationsPer100m2 = 100 * float64(len(chosen.Violations)) / envelopeAreaM2
	}

	compliancePass := 0
	if rules.Compliant(chosen.Violations) {
		compliancePass = 1
	}

	return Metrics{
		ProgramSatisfactionPct: satisfactionPct,
		CorridorRatio:          corridorRatio,
		CompliancePass:         compliancePass,
		ViolationsPer100m2:     violationsPer100m2,
		StructAlignmentScore:   1.0,
		MepAlignmentScore:      1.0,
	}
}

func checkDone(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
