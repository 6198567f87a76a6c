package tables

import (
	"fmt"
	"sort"

	"github.com/tablefuse/tablefuse/model"
)

// Builder derives table grids from loose cell proposals whose
// boundaries were never detected as lines. It clusters the proposal
// edges into lattice lines and then assigns the proposals back into
// the lattice.
type Builder struct {
	// EdgeTolerance is the maximum distance, in pixels, between two
	// proposal edges treated as the same lattice line.
	EdgeTolerance int

	snapper *Snapper
}

// NewBuilder returns a builder with default settings.
func NewBuilder() *Builder {
	return &Builder{
		EdgeTolerance: 10,
		snapper:       NewSnapper(),
	}
}

// ConstructFromCells rebuilds a structured table covering bbox from
// loose cell proposals. Used for mask-derived and semi-bordered
// reconstructions, where cell rectangles exist but no line lattice
// does.
func (b *Builder) ConstructFromCells(bbox model.Box, cells []model.Cell) (*model.StructuredTable, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("no cell proposals for table at %v", bbox)
	}

	xs := []int{bbox.X1, bbox.X2}
	ys := []int{bbox.Y1, bbox.Y2}
	for _, c := range cells {
		xs = append(xs, c.Box.X1, c.Box.X2)
		ys = append(ys, c.Box.Y1, c.Box.Y2)
	}

	grid, err := FindGrid(b.clusterEdges(ys), b.clusterEdges(xs))
	if err != nil {
		return nil, err
	}
	return ReconstructFromGrid(grid, cells)
}

// SemiBorderedToStruct rebuilds a table from a borderless region's
// pixel-analysis bands, using the band cell proposals directly.
func (b *Builder) SemiBorderedToStruct(region *model.BorderedRegion) (*model.StructuredTable, error) {
	return b.ConstructFromCells(region.Box, region.Cells())
}

// LineSnappedToStruct rebuilds a table from a classical line
// detector's bands: band edges are snapped into a canonical lattice
// and the band cell proposals are assigned into it.
func (b *Builder) LineSnappedToStruct(region *model.BorderedRegion) (*model.StructuredTable, error) {
	return b.LineSnappedWithCells(region, region.Cells())
}

// LineSnappedWithCells is LineSnappedToStruct with the band proposals
// replaced by caller-supplied cells, typically the same cells with
// text fragments already attached.
func (b *Builder) LineSnappedWithCells(region *model.BorderedRegion, cells []model.Cell) (*model.StructuredTable, error) {
	hLines, vLines := b.snapper.SnapRegion(region)
	grid, err := FindGrid(hLines, vLines)
	if err != nil {
		return nil, err
	}
	return ReconstructFromGrid(grid, cells)
}

// clusterEdges groups coordinates within EdgeTolerance of their
// cluster start and replaces each group with its mean.
func (b *Builder) clusterEdges(edges []int) []int {
	if len(edges) == 0 {
		return nil
	}
	sorted := make([]int, len(edges))
	copy(sorted, edges)
	sort.Ints(sorted)

	var out []int
	start, sum, n := sorted[0], 0, 0
	for _, v := range sorted {
		if v-start > b.EdgeTolerance {
			out = append(out, sum/n)
			start, sum, n = v, 0, 0
		}
		sum += v
		n++
	}
	return append(out, sum/n)
}

// RefineCell snaps a detector proposal to the extent of its own text
// fragments: a proposal with exactly one fragment takes that
// fragment's box, one with several takes their merged extent, and one
// with none is returned unchanged. The input is never mutated.
func RefineCell(c model.Cell) model.Cell {
	if len(c.TextFields) == 0 {
		return c
	}
	box := c.TextFields[0].Box
	for _, f := range c.TextFields[1:] {
		box = box.Merge(f.Box)
	}
	return model.Cell{Box: box, TextFields: c.TextFields}
}

// ShrinkToRecognized tightens a proposal rectangle to the union of the
// sub-boxes a scoped recognition pass found inside it. Sub-boxes are
// relative to the rectangle's top-left corner; the result never grows
// past the original rectangle. With no sub-boxes, or a degenerate
// result, the rectangle is returned unchanged.
func ShrinkToRecognized(box model.Box, sub []model.Box) model.Box {
	if len(sub) == 0 {
		return box
	}
	minX, minY := sub[0].X1, sub[0].Y1
	maxX, maxY := sub[0].X2, sub[0].Y2
	for _, s := range sub[1:] {
		if s.X1 < minX {
			minX = s.X1
		}
		if s.Y1 < minY {
			minY = s.Y1
		}
		if s.X2 > maxX {
			maxX = s.X2
		}
		if s.Y2 > maxY {
			maxY = s.Y2
		}
	}
	out := model.Box{
		X1: maxInt(box.X1+minX, box.X1),
		Y1: maxInt(box.Y1+minY, box.Y1),
		X2: minInt(box.X1+maxX, box.X2),
		Y2: minInt(box.Y1+maxY, box.Y2),
	}
	if !out.Valid() {
		return box
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
