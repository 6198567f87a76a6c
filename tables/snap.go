package tables

import (
	"sort"

	"github.com/tablefuse/tablefuse/model"
)

// Snapper collapses near-duplicate boundary coordinates from
// independently detected bands into one canonical set of grid lines.
// Two adjacent bands report their shared boundary twice, each with a
// small detection mismatch; snapping replaces such a pair with its
// integer midpoint.
type Snapper struct {
	// Tolerance is the maximum distance, in pixels, at which two
	// consecutive interior edges are considered the same boundary.
	Tolerance int
}

// NewSnapper returns a snapper with default settings.
func NewSnapper() *Snapper {
	return &Snapper{Tolerance: 8}
}

// SnapEdges snaps a set of band edge coordinates into canonical grid
// lines. The first and last edges (the outer bounds) are kept
// verbatim; consecutive interior edges within Tolerance of each other
// collapse into their integer midpoint; everything else passes
// through. The result is sorted and deduplicated, and snapping an
// already-snapped set returns the same set.
func (s *Snapper) SnapEdges(edges []int) []int {
	if len(edges) == 0 {
		return nil
	}
	sorted := make([]int, len(edges))
	copy(sorted, edges)
	sort.Ints(sorted)

	var out []int
	if len(sorted) <= 2 {
		out = sorted
	} else {
		out = []int{sorted[0]}
		for i := 1; i <= len(sorted)-2; {
			if i+1 <= len(sorted)-2 && sorted[i+1]-sorted[i] <= s.Tolerance {
				out = append(out, (sorted[i]+sorted[i+1])/2)
				i += 2
			} else {
				out = append(out, sorted[i])
				i++
			}
		}
		out = append(out, sorted[len(sorted)-1])
	}

	sort.Ints(out)
	dedup := out[:0]
	for i, v := range out {
		if i == 0 || v != out[i-1] {
			dedup = append(dedup, v)
		}
	}
	return dedup
}

// SnapRegion derives the canonical horizontal and vertical grid lines
// of a bordered region from its row and column bands.
func (s *Snapper) SnapRegion(region *model.BorderedRegion) (hLines, vLines []int) {
	var hEdges, vEdges []int
	for _, band := range region.RowBands {
		hEdges = append(hEdges, band.Box.Y1, band.Box.Y2)
	}
	for _, band := range region.ColBands {
		vEdges = append(vEdges, band.Box.X1, band.Box.X2)
	}
	return s.SnapEdges(hEdges), s.SnapEdges(vEdges)
}
