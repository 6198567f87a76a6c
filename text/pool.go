package text

import (
	"sort"

	"github.com/tidwall/rtree"

	"github.com/tablefuse/tablefuse/model"
)

// Pool is the residual text-field pool a page's regions draw from.
// Fields are spatially indexed; a field taken by one region is never
// handed to a later one, so regions consume the pool in detector
// emission order.
type Pool struct {
	fields []model.TextField
	taken  []bool
	tr     rtree.RTreeG[int]
	left   int
}

// NewPool indexes the given fields. The input slice is not retained.
func NewPool(fields []model.TextField) *Pool {
	p := &Pool{
		fields: make([]model.TextField, len(fields)),
		taken:  make([]bool, len(fields)),
		left:   len(fields),
	}
	copy(p.fields, fields)
	for i, f := range p.fields {
		p.tr.Insert(
			[2]float64{float64(f.Box.X1), float64(f.Box.Y1)},
			[2]float64{float64(f.Box.X2), float64(f.Box.Y2)},
			i,
		)
	}
	return p
}

// Take removes and returns every not-yet-consumed field contained in
// region under the given tolerance. Fields are returned in insertion
// order.
func (p *Pool) Take(region model.Box, tolerance float64) []model.TextField {
	dx := int(tolerance * float64(region.Width()))
	dy := int(tolerance * float64(region.Height()))
	window := model.Box{
		X1: region.X1 - dx, Y1: region.Y1 - dy,
		X2: region.X2 + dx, Y2: region.Y2 + dy,
	}

	var hits []int
	p.tr.Search(
		[2]float64{float64(window.X1), float64(window.Y1)},
		[2]float64{float64(window.X2), float64(window.Y2)},
		func(_, _ [2]float64, i int) bool {
			if !p.taken[i] && p.fields[i].Box.Inside(region, tolerance) {
				hits = append(hits, i)
			}
			return true
		},
	)

	// Search order is tree order, not insertion order.
	sort.Ints(hits)

	out := make([]model.TextField, 0, len(hits))
	for _, i := range hits {
		p.taken[i] = true
		p.left--
		out = append(out, p.fields[i])
	}
	return out
}

// Remaining returns the number of fields still in the pool.
func (p *Pool) Remaining() int {
	return p.left
}
