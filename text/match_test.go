package text

import (
	"testing"

	"github.com/tablefuse/tablefuse/model"
)

func cellAt(x1, y1, x2, y2 int) model.Cell {
	return model.Cell{Box: model.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}}
}

func TestMatchCellsText_CountAndResidual(t *testing.T) {
	cells := []model.Cell{
		cellAt(0, 0, 100, 20),
		cellAt(100, 0, 200, 20),
		cellAt(0, 20, 100, 40),
	}
	fields := []model.TextField{
		field(10, 2, 90, 18, "in first"),
		field(20, 4, 80, 16, "also in first"),
		field(110, 2, 190, 18, "in second"),
		field(500, 500, 600, 520, "nowhere"),
	}

	score, residual := MatchCellsText(cells, fields, 0)
	if score != 2 {
		t.Errorf("score = %d, want 2 (two fields in one cell count once)", score)
	}
	if len(residual) != 1 || residual[0].Text != "nowhere" {
		t.Errorf("residual = %v, want the single unmatched field", residual)
	}
}

func TestMatchCellsText_Tolerance(t *testing.T) {
	cells := []model.Cell{cellAt(10, 10, 110, 60)}
	// Protrudes 2px left of the cell.
	fields := []model.TextField{field(8, 12, 100, 58, "x")}

	if score, _ := MatchCellsText(cells, fields, 0); score != 0 {
		t.Errorf("strict containment matched a protruding field")
	}
	if score, _ := MatchCellsText(cells, fields, 0.1); score != 1 {
		t.Errorf("fuzzy containment missed a nearly-contained field")
	}
}

func TestAttachCellsText(t *testing.T) {
	cells := []model.Cell{
		cellAt(0, 0, 100, 20),
		cellAt(100, 0, 200, 20),
	}
	fields := []model.TextField{
		field(10, 2, 90, 18, "alpha"),
		field(20, 4, 80, 16, "beta"),
		field(500, 500, 600, 520, "stray"),
	}

	attached, score, residual := AttachCellsText(cells, fields, 0)
	if score != 1 {
		t.Errorf("score = %d, want 1", score)
	}
	if len(residual) != 1 || residual[0].Text != "stray" {
		t.Errorf("residual = %v, want the single stray field", residual)
	}
	if got := attached[0].Text(); got != "alpha beta" {
		t.Errorf("attached[0].Text() = %q, want %q", got, "alpha beta")
	}
	if len(attached[1].TextFields) != 0 {
		t.Errorf("attached[1] gained %d fields, want 0", len(attached[1].TextFields))
	}
	if len(cells[0].TextFields) != 0 {
		t.Error("input cell mutated")
	}
}

func TestPool_TakeConsumesInOrder(t *testing.T) {
	fields := []model.TextField{
		field(10, 10, 50, 20, "one"),
		field(60, 10, 90, 20, "two"),
		field(10, 200, 50, 210, "far"),
	}
	pool := NewPool(fields)

	region := model.Box{X1: 0, Y1: 0, X2: 100, Y2: 100}
	got := pool.Take(region, 0)
	if len(got) != 2 {
		t.Fatalf("took %d fields, want 2", len(got))
	}
	if got[0].Text != "one" || got[1].Text != "two" {
		t.Errorf("fields not returned in insertion order: %v", got)
	}
	if pool.Remaining() != 1 {
		t.Errorf("remaining = %d, want 1", pool.Remaining())
	}

	// First-registered region wins: a later overlapping take gets nothing.
	if again := pool.Take(region, 0); len(again) != 0 {
		t.Errorf("second take returned %d fields, want 0", len(again))
	}
}

func TestPool_ToleranceWindow(t *testing.T) {
	fields := []model.TextField{field(98, 10, 130, 20, "edge")}
	pool := NewPool(fields)

	region := model.Box{X1: 0, Y1: 0, X2: 120, Y2: 100}
	if got := pool.Take(region, 0); len(got) != 0 {
		t.Fatal("strict take matched a protruding field")
	}
	if got := pool.Take(region, 0.1); len(got) != 1 {
		t.Fatal("fuzzy take missed a nearly-contained field")
	}
}
