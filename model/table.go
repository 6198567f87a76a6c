package model

import (
	"sort"
	"strings"
)

// TextField is a recognized text string with its position on the page.
// Fields are immutable once produced; reconciliation creates new
// fields rather than mutating its inputs.
type TextField struct {
	Box  Box
	Text string
}

// Cell is a rectangular area holding zero or more text fragments that
// belong to one table cell. Cells are produced by detectors or by
// promoting a single text field.
type Cell struct {
	Box        Box
	TextFields []TextField
}

// NewCellFromText promotes a single text field to a cell.
func NewCellFromText(tf TextField) Cell {
	return Cell{Box: tf.Box, TextFields: []TextField{tf}}
}

// Text returns the space-joined concatenation of the cell's fragments
// ordered by (top, left).
func (c Cell) Text() string {
	fields := make([]TextField, len(c.TextFields))
	copy(fields, c.TextFields)
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].Box.Y1 != fields[j].Box.Y1 {
			return fields[i].Box.Y1 < fields[j].Box.Y1
		}
		return fields[i].Box.X1 < fields[j].Box.X1
	})
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, " ")
}

// LinkedCell is a cell with a position inside a finalized grid.
type LinkedCell struct {
	Cell
	Row     int
	Col     int
	RowSpan int
	ColSpan int
}

// RegionLabel classifies a detected table region.
type RegionLabel string

const (
	LabelBordered   RegionLabel = "Bordered"
	LabelBorderless RegionLabel = "Borderless"
)

// TableRegion is a learned detector's hypothesis that a rectangular
// area contains a table, before fusion. Tags are the detector's raw
// cell proposals.
type TableRegion struct {
	Box        Box
	Label      RegionLabel
	Confidence float64
	Tags       []Cell
}

// Band is one row or column band of a bordered region, with the cell
// proposals the line detector assigned to it.
type Band struct {
	Box   Box
	Cells []Cell
}

// BorderedRegion is the classical border-line detector's output for
// one table: ordered row and column bands with per-band cell proposals.
type BorderedRegion struct {
	Box      Box
	RowBands []Band
	ColBands []Band
}

// Cells returns all cell proposals across the row bands, in band order.
func (r *BorderedRegion) Cells() []Cell {
	var cells []Cell
	for _, band := range r.RowBands {
		cells = append(cells, band.Cells...)
	}
	return cells
}

// CellCount returns the number of cell proposals across the row bands.
func (r *BorderedRegion) CellCount() int {
	n := 0
	for _, band := range r.RowBands {
		n += len(band.Cells)
	}
	return n
}

// StructuredTable is a finalized table: a grid of linked cells that
// tile the table's extent without gaps or overlaps once spans are
// applied.
type StructuredTable struct {
	Box   Box
	Cells []LinkedCell
}

// RowCount returns the number of grid rows.
func (t *StructuredTable) RowCount() int {
	n := 0
	for _, c := range t.Cells {
		if c.Row+c.RowSpan > n {
			n = c.Row + c.RowSpan
		}
	}
	return n
}

// ColCount returns the number of grid columns.
func (t *StructuredTable) ColCount() int {
	n := 0
	for _, c := range t.Cells {
		if c.Col+c.ColSpan > n {
			n = c.Col + c.ColSpan
		}
	}
	return n
}

// Rows groups the cells by anchor row, ordered by column within each
// row. Spanning cells appear only in their anchor row.
func (t *StructuredTable) Rows() [][]LinkedCell {
	return t.group(func(c LinkedCell) int { return c.Row }, t.RowCount(),
		func(c LinkedCell) int { return c.Col })
}

// Cols groups the cells by anchor column, ordered by row within each
// column. Spanning cells appear only in their anchor column.
func (t *StructuredTable) Cols() [][]LinkedCell {
	return t.group(func(c LinkedCell) int { return c.Col }, t.ColCount(),
		func(c LinkedCell) int { return c.Row })
}

func (t *StructuredTable) group(key func(LinkedCell) int, n int, order func(LinkedCell) int) [][]LinkedCell {
	groups := make([][]LinkedCell, n)
	for _, c := range t.Cells {
		k := key(c)
		if k >= 0 && k < n {
			groups[k] = append(groups[k], c)
		}
	}
	for _, g := range groups {
		g := g
		sort.SliceStable(g, func(i, j int) bool { return order(g[i]) < order(g[j]) })
	}
	return groups
}

// Validate checks the tiling invariant: every grid position is covered
// by exactly one cell once spans are applied, and no span extends past
// the grid bounds. It returns a *GridError on the first violation.
func (t *StructuredTable) Validate() error {
	rows, cols := t.RowCount(), t.ColCount()
	if rows == 0 || cols == 0 {
		return nil
	}
	covered := make([]bool, rows*cols)
	for _, c := range t.Cells {
		if c.RowSpan < 1 || c.ColSpan < 1 || c.Row < 0 || c.Col < 0 {
			return &GridError{Row: c.Row, Col: c.Col, Reason: "non-positive span or negative index"}
		}
		if c.Row+c.RowSpan > rows || c.Col+c.ColSpan > cols {
			return &GridError{Row: c.Row, Col: c.Col, Reason: "span exceeds grid bounds"}
		}
		for r := c.Row; r < c.Row+c.RowSpan; r++ {
			for col := c.Col; col < c.Col+c.ColSpan; col++ {
				if covered[r*cols+col] {
					return &GridError{Row: r, Col: col, Reason: "covered by more than one cell"}
				}
				covered[r*cols+col] = true
			}
		}
	}
	for r := 0; r < rows; r++ {
		for col := 0; col < cols; col++ {
			if !covered[r*cols+col] {
				return &GridError{Row: r, Col: col, Reason: "not covered by any cell"}
			}
		}
	}
	return nil
}

// HeaderedTable is a structured table with its header cells separated
// from the body. Header rows and columns are computed independently
// and both land in Header.
type HeaderedTable struct {
	Box    Box
	Header []LinkedCell
	Cells  []LinkedCell
}

// NewHeaderedTable splits a structured table into header and body
// using the given header rows. Cells belonging to a header row move to
// the header; everything else stays in the body.
func NewHeaderedTable(t *StructuredTable, headerRows [][]LinkedCell) *HeaderedTable {
	ht := &HeaderedTable{Box: t.Box}
	inHeader := make(map[[2]int]bool)
	for _, row := range headerRows {
		for _, c := range row {
			inHeader[[2]int{c.Row, c.Col}] = true
		}
	}
	for _, c := range t.Cells {
		if inHeader[[2]int{c.Row, c.Col}] {
			ht.Header = append(ht.Header, c)
		} else {
			ht.Cells = append(ht.Cells, c)
		}
	}
	return ht
}

// AddHeaderCols moves the given header-column cells from the body to
// the header, skipping cells the row header already consumed.
func (ht *HeaderedTable) AddHeaderCols(headerCols [][]LinkedCell) {
	wanted := make(map[[2]int]bool)
	for _, col := range headerCols {
		for _, c := range col {
			wanted[[2]int{c.Row, c.Col}] = true
		}
	}
	var body []LinkedCell
	for _, c := range ht.Cells {
		if wanted[[2]int{c.Row, c.Col}] {
			ht.Header = append(ht.Header, c)
		} else {
			body = append(body, c)
		}
	}
	ht.Cells = body
}
