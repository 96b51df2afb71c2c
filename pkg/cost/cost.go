// Package cost implements the soft-cost evaluator (S10): five
// lower-is-better terms computed over a scene's layout and adjacency
// graph, combined into a weighted total (spec.md §4.11).
package cost

import (
	"math"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
	"github.com/archform/layoutgen/pkg/scene"
)

// Terms holds each unweighted cost term, named exactly as spec.md §4.11
// and §6 do.
type Terms struct {
	AdjacencyMissing     float64
	BedroomPrivacy       float64
	AspectRatioDeviation float64
	AreaTargetDeviation  float64
	HubDistance          float64
}

// Result is the cost evaluator's output: the weighted total plus each
// term's weighted contribution, keyed by name (spec.md §6 cost.terms).
type Result struct {
	Total float64
	Terms map[string]float64
}

// Evaluate computes all five terms for result against b's objectives and
// weights, using bld's floor-0 adjacency graph (a single-floor soft-cost
// evaluation; floors are independently replicated per spec.md §1).
func Evaluate(b *brief.Brief, bld *scene.Building, result *layout.Result) Result {
	var floor scene.Floor
	if len(bld.Floors) > 0 {
		floor = bld.Floors[0]
	}
	graph := scene.AdjacencyGraph(floor)

	terms := Terms{
		AdjacencyMissing:     adjacencyMissing(b, graph),
		BedroomPrivacy:       bedroomPrivacy(graph),
		AspectRatioDeviation: aspectRatioDeviation(b, result),
		AreaTargetDeviation:  areaTargetDeviation(b, result),
		HubDistance:          hubDistance(b, result),
	}

	w := b.Weights
	weighted := map[string]float64{
		"adjacency_missing":      w.Adjacency * terms.AdjacencyMissing,
		"bedroom_privacy":        w.Privacy * terms.BedroomPrivacy,
		"aspect_ratio_deviation": w.Aspect * terms.AspectRatioDeviation,
		"area_target_deviation":  w.Area * terms.AreaTargetDeviation,
		"hub_distance":           w.Hub * terms.HubDistance,
	}

	total := 0.0
	for _, v := range weighted {
		total += v
	}

	return Result{Total: total, Terms: weighted}
}

// adjacencyMissing counts preferred pairs not adjacent in the graph,
// including pairs whose endpoint doesn't exist at all.
func adjacencyMissing(b *brief.Brief, graph map[string][]string) float64 {
	count := 0.0
	for _, pair := range b.Objectives.AdjacencyPairs {
		if !isAdjacent(graph, pair.A, pair.B) {
			count++
		}
	}
	return count
}

func isAdjacent(graph map[string][]string, a, bName string) bool {
	neighbors, ok := graph[a]
	if !ok {
		return false
	}
	for _, n := range neighbors {
		if n == bName {
			return true
		}
	}
	return false
}

// bedroomPrivacy counts bedroom<->(living|kitchen) adjacency edges; this
// is lower-is-better because such edges compromise bedroom privacy.
func bedroomPrivacy(graph map[string][]string) float64 {
	count := 0.0
	for name, neighbors := range graph {
		if !layout.IsPrivate(name) || !hasPrefix(name, "bed") {
			continue
		}
		for _, n := range neighbors {
			if hasPrefix(n, "living") || hasPrefix(n, "kitchen") {
				count++
			}
		}
	}
	return count
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

// aspectRatioDeviation sums max(0, |aspect - target| - tolerance) across
// all placed rooms.
func aspectRatioDeviation(b *brief.Brief, result *layout.Result) float64 {
	target := b.Objectives.AspectRatioTarget
	tol := b.Objectives.AspectRatioTolerance
	total := 0.0
	for _, r := range result.Rooms {
		dev := math.Abs(r.AspectRatio()-target) - tol
		if dev > 0 {
			total += dev
		}
	}
	return total
}

// areaTargetDeviation sums |w*h - target|/target over rooms with a
// configured target area.
func areaTargetDeviation(b *brief.Brief, result *layout.Result) float64 {
	total := 0.0
	for _, rs := range b.Rooms {
		if rs.TargetArea <= 0 {
			continue
		}
		r, ok := result.Get(rs.Name)
		if !ok {
			continue
		}
		total += math.Abs(float64(r.Area()-rs.TargetArea)) / float64(rs.TargetArea)
	}
	return total
}

// hubDistance sums (|cx-hx|+|cy-hy|)/(W+H) over non-hub rooms.
func hubDistance(b *brief.Brief, result *layout.Result) float64 {
	hub := layout.HubName(result.Rooms)
	hubRoom, ok := result.Get(hub)
	if !ok {
		return 0
	}
	denom := float64(b.W + b.H)
	if denom == 0 {
		return 0
	}
	hx, hy := hubRoom.Center()
	total := 0.0
	for _, r := range result.Rooms {
		if r.Name == hub {
			continue
		}
		cx, cy := r.Center()
		total += float64(absInt(cx-hx)+absInt(cy-hy)) / denom
	}
	return total
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
