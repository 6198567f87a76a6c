package tables

import (
	"testing"

	"github.com/tablefuse/tablefuse/model"
)

func proposal(x1, y1, x2, y2 int, text string) model.Cell {
	box := model.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
	c := model.Cell{Box: box}
	if text != "" {
		c.TextFields = []model.TextField{{Box: box, Text: text}}
	}
	return c
}

func TestFindGrid_Degenerate(t *testing.T) {
	if _, err := FindGrid([]int{0}, []int{0, 100}); err == nil {
		t.Error("expected error for a single horizontal line")
	}
	if _, err := FindGrid(nil, nil); err == nil {
		t.Error("expected error for empty lattice")
	}
}

func TestReconstructFromGrid_SimpleAssignment(t *testing.T) {
	grid, err := FindGrid([]int{0, 50, 100}, []int{0, 100, 200})
	if err != nil {
		t.Fatal(err)
	}
	proposals := []model.Cell{
		proposal(5, 5, 95, 45, "a"),
		proposal(105, 5, 195, 45, "b"),
		proposal(5, 55, 95, 95, "c"),
		proposal(105, 55, 195, 95, "d"),
	}
	table, err := ReconstructFromGrid(grid, proposals)
	if err != nil {
		t.Fatal(err)
	}
	if table.RowCount() != 2 || table.ColCount() != 2 {
		t.Fatalf("expected 2x2, got %dx%d", table.RowCount(), table.ColCount())
	}
	if err := table.Validate(); err != nil {
		t.Errorf("tiling invariant violated: %v", err)
	}
	rows := table.Rows()
	if rows[0][0].Cell.Text() != "a" || rows[1][1].Cell.Text() != "d" {
		t.Errorf("proposals assigned to wrong lattice cells")
	}
	// Cell boxes snap to the lattice, not the proposal rectangles.
	if rows[0][0].Cell.Box != (model.Box{X1: 0, Y1: 0, X2: 100, Y2: 50}) {
		t.Errorf("cell box = %v, want lattice extent", rows[0][0].Cell.Box)
	}
}

func TestReconstructFromGrid_Spans(t *testing.T) {
	grid, err := FindGrid([]int{0, 50, 100}, []int{0, 100, 200})
	if err != nil {
		t.Fatal(err)
	}
	// One proposal covers the whole top row.
	proposals := []model.Cell{
		proposal(5, 5, 195, 45, "header"),
		proposal(5, 55, 95, 95, "c"),
		proposal(105, 55, 195, 95, "d"),
	}
	table, err := ReconstructFromGrid(grid, proposals)
	if err != nil {
		t.Fatal(err)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("tiling invariant violated: %v", err)
	}
	var span *model.LinkedCell
	for i := range table.Cells {
		if table.Cells[i].ColSpan == 2 {
			span = &table.Cells[i]
		}
	}
	if span == nil {
		t.Fatal("expected a colspan-2 cell")
	}
	if span.Row != 0 || span.Col != 0 || span.RowSpan != 1 {
		t.Errorf("span cell at (%d,%d) span (%d,%d)", span.Row, span.Col, span.RowSpan, span.ColSpan)
	}
}

func TestReconstructFromGrid_FillsUncovered(t *testing.T) {
	grid, err := FindGrid([]int{0, 50, 100}, []int{0, 100, 200})
	if err != nil {
		t.Fatal(err)
	}
	proposals := []model.Cell{proposal(5, 5, 95, 45, "only")}
	table, err := ReconstructFromGrid(grid, proposals)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Cells) != 4 {
		t.Fatalf("expected 4 cells (1 proposal + 3 fill), got %d", len(table.Cells))
	}
	if err := table.Validate(); err != nil {
		t.Errorf("tiling invariant violated: %v", err)
	}
	empty := 0
	for _, c := range table.Cells {
		if len(c.TextFields) == 0 {
			empty++
		}
	}
	if empty != 3 {
		t.Errorf("expected 3 empty fill cells, got %d", empty)
	}
}

func TestReconstructFromGrid_FirstProposalWins(t *testing.T) {
	grid, err := FindGrid([]int{0, 100}, []int{0, 100})
	if err != nil {
		t.Fatal(err)
	}
	proposals := []model.Cell{
		proposal(0, 0, 100, 100, "first"),
		proposal(0, 0, 100, 100, "second"),
	}
	table, err := ReconstructFromGrid(grid, proposals)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Cells) != 1 || table.Cells[0].Cell.Text() != "first" {
		t.Errorf("expected first-registered proposal to win")
	}
}
