// Package critic implements the candidate-scoring critic (S11): it
// builds a candidate set (topology seeds, refined base, and jittered
// variants), scores each by soft cost plus a daylight penalty, filters
// out candidates with error-severity rule violations, and returns the
// best-scoring survivor.
package critic

import (
	"sort"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/cost"
	"github.com/archform/layoutgen/pkg/layout"
	"github.com/archform/layoutgen/pkg/rng"
	"github.com/archform/layoutgen/pkg/rules"
	"github.com/archform/layoutgen/pkg/scene"
)

// DefaultJitterCount is K, the number of deterministic jittered variants
// added to the candidate set (spec.md §4.12).
const DefaultJitterCount = 4

// Candidate is one scored layout under consideration.
type Candidate struct {
	Source     string // diagnostic label; score sets "candidate" for every entry
	Layout     *layout.Result
	Building   *scene.Building
	Cost       cost.Result
	Violations []rules.Violation
	Score      float64
}

// BuildCandidates assembles the candidate set: the topology seeds, the
// refined base (if non-nil), and K deterministic jittered variants of the
// refined base (or, absent one, the first topology seed).
func BuildCandidates(b *brief.Brief, topologySeeds []*layout.Result, refinedBase *layout.Result, masterSeed uint64, k int) []*layout.Result {
	if k <= 0 {
		k = DefaultJitterCount
	}
	candidates := make([]*layout.Result, 0, len(topologySeeds)+1+k)
	candidates = append(candidates, topologySeeds...)

	base := refinedBase
	if base == nil && len(topologySeeds) > 0 {
		base = topologySeeds[0]
	}
	if refinedBase != nil {
		candidates = append(candidates, refinedBase)
	}
	if base == nil {
		return candidates
	}

	r := rng.NewRNG(masterSeed, "critic_jitter", b.Hash())
	for i := 0; i < k; i++ {
		candidates = append(candidates, jitter(base, b, r, i))
	}
	return candidates
}

// jitter applies a deterministic per-index offset to each room's
// (x,y,w,h), clamped to the envelope.
func jitter(base *layout.Result, b *brief.Brief, r *rng.RNG, index int) *layout.Result {
	out := base.Clone()
	spread := 20 + index*10
	for i := range out.Rooms {
		room := out.Rooms[i]
		room.X += r.IntRange(-spread, spread)
		room.Y += r.IntRange(-spread, spread)
		room.W += r.IntRange(-spread/4, spread/4)
		room.H += r.IntRange(-spread/4, spread/4)
		if room.W < 1 {
			room.W = 1
		}
		if room.H < 1 {
			room.H = 1
		}
		out.Rooms[i] = layout.Clamp(room, b.W, b.H)
	}
	return out
}

// Select scores every candidate and returns the highest-scoring survivor
// of the error-severity filter (or, if the filter empties the set, the
// highest-scoring unfiltered candidate). catalog is the rule catalog used
// both for the filter and for the returned Candidate's Violations.
func Select(b *brief.Brief, candidates []*layout.Result, catalog []rules.Rule) *Candidate {
	scored := make([]*Candidate, 0, len(candidates))
	for i, res := range candidates {
		scored = append(scored, score(b, res, catalog, i))
	}
	if len(scored) == 0 {
		return nil
	}

	filtered := make([]*Candidate, 0, len(scored))
	for _, c := range scored {
		if !hasErrorViolation(c.Violations) {
			filtered = append(filtered, c)
		}
	}
	pool := filtered
	if len(pool) == 0 {
		pool = scored
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Score > pool[j].Score })
	return pool[0]
}

func hasErrorViolation(violations []rules.Violation) bool {
	for _, v := range violations {
		if v.Severity == rules.SeverityError {
			return true
		}
	}
	return false
}

func score(b *brief.Brief, res *layout.Result, catalog []rules.Rule, index int) *Candidate {
	bld := scene.Lift(b, res)
	softCost := cost.Evaluate(b, bld, res)
	violations := rules.Evaluate(catalog, b, bld, res)
	daylightPenalty := countWindowlessRooms(bld)

	finalScore := -(softCost.Total + 0.5*float64(daylightPenalty))

	return &Candidate{
		Source:     "candidate",
		Layout:     res,
		Building:   bld,
		Cost:       softCost,
		Violations: violations,
		Score:      finalScore,
	}
}

func countWindowlessRooms(bld *scene.Building) int {
	count := 0
	for _, f := range bld.Floors {
		for _, s := range f.Spaces {
			hasWindow := false
			for _, o := range s.Openings {
				if o.Kind == scene.OpeningWindow {
					hasWindow = true
					break
				}
			}
			if !hasWindow {
				count++
			}
		}
	}
	return count
}
