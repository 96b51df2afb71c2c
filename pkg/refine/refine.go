// Package refine implements the local-search substitute for the CP/MIP
// refiner (S6). It preserves the solver contract of spec.md §4.7: integer
// room positions, non-overlap and hub-touch as hard postconditions, a
// monotone non-increasing objective across its own iterations, and a
// {optimal, feasible, infeasible, unknown} outcome. No CP/MIP binding
// exists in the available dependency set, so the search is implemented
// as a bounded, time-budgeted, seeded iterative improvement loop over
// constraint-gradient moves, run in parallel across several restarts.
package refine

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
	"github.com/archform/layoutgen/pkg/rng"
)

// Status mirrors the CP solver's result classification of spec.md §4.7.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible"
	StatusInfeasible Status = "infeasible"
	StatusUnknown    Status = "unknown"
)

// Config tunes the local search. Zero values fall back to defaults.
type Config struct {
	TimeLimit    time.Duration // default 1s, within spec.md's 0.5-1.5s budget
	Workers      int           // default 8, matches the teacher's solver pool default
	Restarts     int           // default Workers
	MaxIters     int           // per-restart iteration cap, default 400
	StepMM       int           // initial move step in millimetres, default 50
}

func (c Config) withDefaults() Config {
	if c.TimeLimit <= 0 {
		c.TimeLimit = time.Second
	}
	if c.Workers <= 0 {
		c.Workers = 8
	}
	if c.Restarts <= 0 {
		c.Restarts = c.Workers
	}
	if c.MaxIters <= 0 {
		c.MaxIters = 400
	}
	if c.StepMM <= 0 {
		c.StepMM = 50
	}
	return c
}

// Result is the outcome of one Refine call.
type Result struct {
	Status Status
	Layout *layout.Result // nil if Status is infeasible/unknown
	Cost   float64
}

// Refine attempts to improve seed (typically the heuristic pack's output)
// by minimizing the sum of Manhattan center distances between preferred
// adjacency pairs and each non-hub room's distance to the hub, subject to
// non-overlap and hub-touch hard constraints. It runs cfg.Restarts
// independent seeded searches in parallel, each respecting ctx and
// cfg.TimeLimit, and deterministically picks the best by restart index
// (not arrival order) among those tied on objective value.
func Refine(ctx context.Context, b *brief.Brief, seed *layout.Result, masterSeed uint64, cfg Config) Result {
	cfg = cfg.withDefaults()
	if len(seed.Rooms) == 0 {
		return Result{Status: StatusUnknown}
	}

	deadline, cancel := context.WithTimeout(ctx, cfg.TimeLimit)
	defer cancel()

	hub := layout.HubName(seed.Rooms)
	_, hasCorridor := seed.Get(packingCorridorName)

	type restartResult struct {
		idx    int
		status Status
		res    *layout.Result
		cost   float64
	}

	results := make([]restartResult, cfg.Restarts)
	var wg sync.WaitGroup
	sem := make(chan struct{}, cfg.Workers)

	for i := 0; i < cfg.Restarts; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			r := rng.NewRNG(masterSeed, restartStageName(i), b.Hash())
			res, status, cost := runRestart(deadline, b, seed, hub, hasCorridor, r, cfg)
			results[i] = restartResult{idx: i, status: status, res: res, cost: cost}
		}(i)
	}
	wg.Wait()

	best := -1
	for i, r := range results {
		if r.status != StatusOptimal && r.status != StatusFeasible {
			continue
		}
		if best == -1 || r.cost < results[best].cost {
			best = i
		}
	}
	if best == -1 {
		return Result{Status: StatusInfeasible}
	}
	return Result{Status: results[best].status, Layout: results[best].res, Cost: results[best].cost}
}

const packingCorridorName = "corridor"

func restartStageName(i int) string {
	return "refine_restart_" + strconv.Itoa(i)
}

func runRestart(ctx context.Context, b *brief.Brief, seed *layout.Result, hub string, hasCorridor bool, r *rng.RNG, cfg Config) (*layout.Result, Status, float64) {
	current := seed.Clone()
	clampAll(current, b.W, b.H)

	bestCost := objective(current, b, hub)
	step := cfg.StepMM

	for iter := 0; iter < cfg.MaxIters; iter++ {
		select {
		case <-ctx.Done():
			return finalize(current, b, hub, hasCorridor, bestCost)
		default:
		}

		idx := r.Intn(len(current.Rooms))
		name := current.Rooms[idx].Name
		if name == hub {
			continue
		}

		candidate := current.Clone()
		move := gradientMove(candidate, b, hub, idx, step, r)
		if move == nil {
			continue
		}
		candidate.Rooms[idx] = *move
		clampAll(candidate, b.W, b.H)

		cost := objective(candidate, b, hub)
		if cost <= bestCost {
			current = candidate
			bestCost = cost
		}

		if iter%50 == 49 && step > 5 {
			step = step * 9 / 10
		}
	}

	return finalize(current, b, hub, hasCorridor, bestCost)
}

// gradientMove proposes a displaced position for room idx that moves it a
// step toward satisfying the dominant violated or costly relation:
// overlap with another room, non-touch with the hub, or distance to a
// preferred adjacency partner.
func gradientMove(res *layout.Result, b *brief.Brief, hub string, idx int, step int, r *rng.RNG) *layout.PlacedRoom {
	room := res.Rooms[idx]

	for j := range res.Rooms {
		if j == idx {
			continue
		}
		other := res.Rooms[j]
		if layout.Overlaps(room, other) {
			return pushApart(room, other, step)
		}
	}

	if hubRoom, ok := res.Get(hub); ok && room.Name != hub {
		if !layout.Touches(room, hubRoom) {
			return pullToward(room, hubRoom, step)
		}
	}

	for _, pair := range b.Objectives.AdjacencyPairs {
		var partnerName string
		switch room.Name {
		case pair.A:
			partnerName = pair.B
		case pair.B:
			partnerName = pair.A
		default:
			continue
		}
		if partner, ok := res.Get(partnerName); ok {
			return pullToward(room, partner, step)
		}
	}

	// No active constraint: small random jitter to escape local minima.
	jx := r.IntRange(-step, step)
	jy := r.IntRange(-step, step)
	room.X += jx
	room.Y += jy
	return &room
}

func pushApart(room, other layout.PlacedRoom, step int) *layout.PlacedRoom {
	if layout.IsCorridor(other.Name) {
		// The corridor spans the full envelope width, so an X move is
		// always undone by clampAll's envelope clamp; only Y ever
		// separates a room from it.
		_, ry := room.Center()
		_, oy := other.Center()
		if ry >= oy {
			room.Y += step
		} else {
			room.Y -= step
		}
		return &room
	}

	rx, ry := room.Center()
	ox, oy := other.Center()
	dx, dy := rx-ox, ry-oy
	if dx == 0 && dy == 0 {
		dx = 1
	}
	if abs(dx) >= abs(dy) {
		if dx > 0 {
			room.X += step
		} else {
			room.X -= step
		}
	} else {
		if dy > 0 {
			room.Y += step
		} else {
			room.Y -= step
		}
	}
	return &room
}

func pullToward(room, target layout.PlacedRoom, step int) *layout.PlacedRoom {
	rx, ry := room.Center()
	tx, ty := target.Center()
	dx, dy := tx-rx, ty-ry
	if dx != 0 {
		if dx > 0 {
			room.X += min(step, dx)
		} else {
			room.X += max(-step, dx)
		}
	}
	if dy != 0 {
		if dy > 0 {
			room.Y += min(step, dy)
		} else {
			room.Y += max(-step, dy)
		}
	}
	return &room
}

func clampAll(res *layout.Result, envW, envH int) {
	for i := range res.Rooms {
		res.Rooms[i] = layout.Clamp(res.Rooms[i], envW, envH)
	}
}

// objective is the unnormalized sum of Manhattan center distances between
// preferred adjacency pairs plus the sum of non-hub-room distances to the
// hub (spec.md §4.7).
func objective(res *layout.Result, b *brief.Brief, hub string) float64 {
	total := 0.0
	for _, pair := range b.Objectives.AdjacencyPairs {
		a, okA := res.Get(pair.A)
		bb, okB := res.Get(pair.B)
		if okA && okB {
			total += float64(layout.ManhattanCenterDistance(a, bb))
		}
	}
	if hubRoom, ok := res.Get(hub); ok {
		for _, r := range res.Rooms {
			if r.Name == hub {
				continue
			}
			total += float64(layout.ManhattanCenterDistance(r, hubRoom))
		}
	}
	return total
}

// finalize classifies the final layout's hard-constraint status.
func finalize(res *layout.Result, b *brief.Brief, hub string, hasCorridor bool, cost float64) (*layout.Result, Status, float64) {
	if hasOverlap(res) {
		return nil, StatusInfeasible, cost
	}
	if !hubTouchSatisfied(res, b, hub, hasCorridor) {
		return nil, StatusInfeasible, cost
	}
	return res, StatusFeasible, cost
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

func hubTouchSatisfied(res *layout.Result, b *brief.Brief, hub string, hasCorridor bool) bool {
	hubRoom, ok := res.Get(hub)
	if !ok {
		return len(res.Rooms) <= 1
	}
	minOverlap := b.Connectivity.MinOverlap
	if minOverlap <= 0 {
		minOverlap = brief.DefaultMinOverlap
	}
	for _, r := range res.Rooms {
		if r.Name == hub {
			continue
		}
		if hasCorridor && layout.IsPrivate(r.Name) {
			if layout.SharedEdgeOverlap(r, hubRoom) < minOverlap {
				return false
			}
			continue
		}
		if !layout.Touches(r, hubRoom) {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
