package tables

import (
	"fmt"

	"github.com/tablefuse/tablefuse/model"
)

// Grid is a rectangular lattice defined by sorted horizontal and
// vertical line coordinates.
type Grid struct {
	HLines []int // Y coordinates of row boundaries, ascending
	VLines []int // X coordinates of column boundaries, ascending
}

// FindGrid builds a lattice from snapped line coordinates. It returns
// an error when the lines cannot bound at least one cell.
func FindGrid(hLines, vLines []int) (*Grid, error) {
	if len(hLines) < 2 || len(vLines) < 2 {
		return nil, fmt.Errorf("degenerate lattice: %d horizontal and %d vertical lines", len(hLines), len(vLines))
	}
	return &Grid{HLines: hLines, VLines: vLines}, nil
}

// RowCount returns the number of lattice rows.
func (g *Grid) RowCount() int { return len(g.HLines) - 1 }

// ColCount returns the number of lattice columns.
func (g *Grid) ColCount() int { return len(g.VLines) - 1 }

// Box returns the full lattice extent.
func (g *Grid) Box() model.Box {
	return model.Box{
		X1: g.VLines[0], Y1: g.HLines[0],
		X2: g.VLines[len(g.VLines)-1], Y2: g.HLines[len(g.HLines)-1],
	}
}

// CellBox returns the pixel extent of one lattice cell.
func (g *Grid) CellBox(row, col int) model.Box {
	return model.Box{
		X1: g.VLines[col], Y1: g.HLines[row],
		X2: g.VLines[col+1], Y2: g.HLines[row+1],
	}
}

// SpanBox returns the pixel extent of a rectangular run of lattice cells.
func (g *Grid) SpanBox(row, col, rowSpan, colSpan int) model.Box {
	return model.Box{
		X1: g.VLines[col], Y1: g.HLines[row],
		X2: g.VLines[col+colSpan], Y2: g.HLines[row+rowSpan],
	}
}

// ReconstructFromGrid assigns cell proposals into the lattice and
// rebuilds a structured table. Each lattice position is owned by the
// first proposal whose box covers its center; a proposal owning a full
// rectangular run of positions becomes one spanning cell, otherwise it
// is split per position. Positions no proposal covers become empty
// cells, so the result always tiles the lattice.
func ReconstructFromGrid(grid *Grid, proposals []model.Cell) (*model.StructuredTable, error) {
	rows, cols := grid.RowCount(), grid.ColCount()

	owner := make([]int, rows*cols)
	for i := range owner {
		owner[i] = -1
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := grid.CellBox(r, c)
			cx, cy := (cell.X1+cell.X2)/2, (cell.Y1+cell.Y2)/2
			for pi, p := range proposals {
				if cx >= p.Box.X1 && cx < p.Box.X2 && cy >= p.Box.Y1 && cy < p.Box.Y2 {
					owner[r*cols+c] = pi
					break
				}
			}
		}
	}

	table := &model.StructuredTable{Box: grid.Box()}

	for pi, p := range proposals {
		minR, minC, maxR, maxC := rows, cols, -1, -1
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				if owner[r*cols+c] != pi {
					continue
				}
				if r < minR {
					minR = r
				}
				if r > maxR {
					maxR = r
				}
				if c < minC {
					minC = c
				}
				if c > maxC {
					maxC = c
				}
			}
		}
		if maxR < 0 {
			continue
		}

		solid := true
		for r := minR; r <= maxR && solid; r++ {
			for c := minC; c <= maxC; c++ {
				if owner[r*cols+c] != pi {
					solid = false
					break
				}
			}
		}

		if solid {
			table.Cells = append(table.Cells, model.LinkedCell{
				Cell: model.Cell{
					Box:        grid.SpanBox(minR, minC, maxR-minR+1, maxC-minC+1),
					TextFields: p.TextFields,
				},
				Row: minR, Col: minC,
				RowSpan: maxR - minR + 1, ColSpan: maxC - minC + 1,
			})
			continue
		}

		// Non-rectangular ownership: split the proposal per position and
		// route each fragment to the position holding its center.
		first := len(table.Cells)
		for r := minR; r <= maxR; r++ {
			for c := minC; c <= maxC; c++ {
				if owner[r*cols+c] != pi {
					continue
				}
				table.Cells = append(table.Cells, model.LinkedCell{
					Cell:    model.Cell{Box: grid.CellBox(r, c)},
					Row:     r, Col: c,
					RowSpan: 1, ColSpan: 1,
				})
			}
		}
		for _, f := range p.TextFields {
			fx, fy := (f.Box.X1+f.Box.X2)/2, (f.Box.Y1+f.Box.Y2)/2
			target := first
			for i := first; i < len(table.Cells); i++ {
				box := table.Cells[i].Cell.Box
				if fx >= box.X1 && fx < box.X2 && fy >= box.Y1 && fy < box.Y2 {
					target = i
					break
				}
			}
			table.Cells[target].TextFields = append(table.Cells[target].TextFields, f)
		}
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if owner[r*cols+c] == -1 {
				table.Cells = append(table.Cells, model.LinkedCell{
					Cell:    model.Cell{Box: grid.CellBox(r, c)},
					Row:     r, Col: c,
					RowSpan: 1, ColSpan: 1,
				})
			}
		}
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("reconstructed grid: %w", err)
	}
	return table, nil
}
