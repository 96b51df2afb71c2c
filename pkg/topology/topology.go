// Package topology implements the two earliest seeding stages of the
// layout pipeline: a rule-of-thumb topology seeder (S2) and a curated
// template retrieval seeder (S3). Both produce coarse, possibly-invalid
// PlacedRoom layouts that downstream packing and repair stages are
// expected to fix up.
package topology

import (
	"sort"
	"strings"

	"github.com/archform/layoutgen/pkg/brief"
	"github.com/archform/layoutgen/pkg/layout"
	"github.com/archform/layoutgen/pkg/rng"
)

// DefaultSeedCount is the number of topology seeds produced by Seed (K in
// the room arrangement rule of thumb).
const DefaultSeedCount = 2

// Seed produces K coarse template layouts for b (S2 topology seeder).
// Row 1 is living then kitchen (if present), widths capped at W/3 and W/4,
// height 300mm. Row 2 is bedrooms wrapping at the envelope edge;
// bathrooms are placed near the last bedroom, offset by (i+1)*10mm per
// seed index. Seeds are allowed to violate non-overlap and the envelope —
// downstream repair is expected to fix them up.
func Seed(b *brief.Brief, masterSeed uint64, k int) []*layout.Result {
	if k <= 0 {
		k = DefaultSeedCount
	}
	seeds := make([]*layout.Result, 0, k)
	r := rng.NewRNG(masterSeed, "topology_seed", b.Hash())
	for i := 0; i < k; i++ {
		seeds = append(seeds, seedOne(b, r, i))
	}
	return seeds
}

func seedOne(b *brief.Brief, r *rng.RNG, index int) *layout.Result {
	res := layout.NewResult()

	byName := make(map[string]brief.RoomSpec, len(b.Rooms))
	for _, rs := range b.Rooms {
		byName[rs.Name] = rs
	}

	var living, kitchen *brief.RoomSpec
	var bedrooms, bathrooms, others []brief.RoomSpec
	for _, rs := range b.Rooms {
		switch {
		case hasPrefix(rs.Name, "living") && living == nil:
			rsCopy := rs
			living = &rsCopy
		case hasPrefix(rs.Name, "kitchen") && kitchen == nil:
			rsCopy := rs
			kitchen = &rsCopy
		case hasPrefix(rs.Name, "bed"):
			bedrooms = append(bedrooms, rs)
		case hasPrefix(rs.Name, "bath"):
			bathrooms = append(bathrooms, rs)
		default:
			others = append(others, rs)
		}
	}

	x := 0
	rowH := 300
	if living != nil {
		w := b.W / 3
		if w < 1 {
			w = 1
		}
		w, h := brief.Size(*living, w, rowH)
		res.Upsert(layout.PlacedRoom{Name: living.Name, X: x, Y: 0, W: w, H: h})
		x += w
	}
	if kitchen != nil {
		w := b.W / 4
		if w < 1 {
			w = 1
		}
		w, h := brief.Size(*kitchen, w, rowH)
		res.Upsert(layout.PlacedRoom{Name: kitchen.Name, X: x, Y: 0, W: w, H: h})
		x += w
	}

	y := rowH
	rowX := 0
	for _, bed := range bedrooms {
		w, h := brief.Size(bed, b.W, b.H)
		if rowX+w > b.W {
			rowX = 0
			y += h
		}
		res.Upsert(layout.PlacedRoom{Name: bed.Name, X: rowX, Y: y, W: w, H: h})
		rowX += w
	}

	lastBedY := y
	if n := len(bedrooms); n > 0 {
		if last, ok := res.Get(bedrooms[n-1].Name); ok {
			lastBedY = last.Y
		}
	}
	offset := (index + 1) * 10
	bx := 0
	for _, bath := range bathrooms {
		w, h := brief.Size(bath, b.W, b.H)
		res.Upsert(layout.PlacedRoom{Name: bath.Name, X: bx + offset, Y: lastBedY + offset, W: w, H: h})
		bx += w
	}

	oy := lastBedY + rowH
	ox := 0
	for _, other := range others {
		w, h := brief.Size(other, b.W, b.H)
		res.Upsert(layout.PlacedRoom{Name: other.Name, X: ox, Y: oy, W: w, H: h})
		ox += w
	}

	// A small deterministic jitter distinguishes seed index > 0 from the
	// baseline arrangement without changing the overall shape.
	if index > 0 {
		jitter := r.IntRange(-20, 20)
		for i := range res.Rooms {
			res.Rooms[i].X += jitter
		}
	}

	return res
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// signaturePrefixes is the fixed vocabulary used for the retrieval
// seeder's program signature (spec.md §4.4).
var signaturePrefixes = []string{"bed", "bath", "living", "kitchen", "other"}

// signature returns the multiset of normalized room-name prefixes, as
// counts indexed the same way as signaturePrefixes.
func signature(rooms []brief.RoomSpec) [5]int {
	var sig [5]int
	for _, rs := range rooms {
		matched := false
		for i, p := range signaturePrefixes[:4] {
			if hasPrefix(rs.Name, p) {
				sig[i]++
				matched = true
				break
			}
		}
		if !matched {
			sig[4]++
		}
	}
	return sig
}

// Template is a curated reference layout used by the retrieval seeder.
type Template struct {
	Name      string
	Signature [5]int
	Rooms     []layout.PlacedRoom
}

// l1Distance is the L1 (Manhattan) distance between two signatures.
func l1Distance(a, b [5]int) int {
	d := 0
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		d += diff
	}
	return d
}

// Retrieve implements the S3 retrieval seeder: it matches b's program
// signature against catalog by L1 distance and returns the closest
// template's rooms, clamped to (b.W, b.H). Returns nil if b has no rooms.
func Retrieve(b *brief.Brief, catalog []Template) *layout.Result {
	if len(b.Rooms) == 0 {
		return nil
	}
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	sig := signature(b.Rooms)

	best := -1
	bestDist := -1
	for i, tmpl := range catalog {
		d := l1Distance(sig, tmpl.Signature)
		if bestDist == -1 || d < bestDist || (d == bestDist && tmpl.Name < catalog[best].Name) {
			bestDist = d
			best = i
		}
	}
	if best == -1 {
		return nil
	}

	res := layout.NewResult()
	for _, r := range catalog[best].Rooms {
		res.Upsert(layout.Clamp(r, b.W, b.H))
	}
	return res
}

// DefaultCatalog returns a small built-in set of curated templates
// covering common program shapes: studio, one-bedroom, and
// two-bedroom-with-corridor.
func DefaultCatalog() []Template {
	return []Template{
		{
			Name:      "studio",
			Signature: [5]int{0, 1, 1, 0, 0},
			Rooms: []layout.PlacedRoom{
				{Name: "living", X: 0, Y: 0, W: 4000, H: 3500},
				{Name: "bath1", X: 4000, Y: 0, W: 2000, H: 2000},
			},
		},
		{
			Name:      "one_bed",
			Signature: [5]int{1, 1, 1, 1, 0},
			Rooms: []layout.PlacedRoom{
				{Name: "living", X: 0, Y: 0, W: 4500, H: 3800},
				{Name: "kitchen", X: 4500, Y: 0, W: 2500, H: 2500},
				{Name: "bed1", X: 0, Y: 3800, W: 3500, H: 3200},
				{Name: "bath1", X: 3500, Y: 3800, W: 1800, H: 2000},
			},
		},
		{
			Name:      "two_bed_corridor",
			Signature: [5]int{2, 2, 1, 1, 0},
			Rooms: []layout.PlacedRoom{
				{Name: "living", X: 0, Y: 0, W: 5000, H: 4000},
				{Name: "kitchen", X: 5000, Y: 0, W: 2800, H: 2800},
				{Name: "corridor", X: 0, Y: 4000, W: 7800, H: 900},
				{Name: "bed1", X: 0, Y: 4900, W: 3500, H: 3200},
				{Name: "bed2", X: 3500, Y: 4900, W: 3500, H: 3200},
				{Name: "bath1", X: 7000, Y: 4900, W: 800, H: 1200},
				{Name: "bath2", X: 7000, Y: 6100, W: 800, H: 1200},
			},
		},
	}
}

// SortedCatalogNames returns the catalog's template names in sorted order,
// for deterministic logging/diagnostics. Nothing in this module calls it.
func SortedCatalogNames(catalog []Template) []string {
	names := make([]string, len(catalog))
	for i, t := range catalog {
		names[i] = t.Name
	}
	sort.Strings(names)
	return names
}
