package text

import (
	"testing"

	"github.com/tablefuse/tablefuse/model"
)

func field(x1, y1, x2, y2 int, text string) model.TextField {
	return model.TextField{Box: model.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}, Text: text}
}

func TestMerge_ContainedFieldTakesSecondSourceText(t *testing.T) {
	r := NewReconciler()
	a := []model.TextField{field(0, 0, 100, 20, "blurry")}
	b := []model.TextField{field(10, 2, 90, 18, "sharp")}

	out := r.Merge(a, b)
	if len(out) != 1 {
		t.Fatalf("expected 1 field, got %d", len(out))
	}
	if out[0].Text != "sharp" {
		t.Errorf("merged text = %q, want text from second source", out[0].Text)
	}
	if out[0].Box != (model.Box{X1: 0, Y1: 0, X2: 100, Y2: 20}) {
		t.Errorf("merged box = %v, want enclosing box", out[0].Box)
	}
}

func TestMerge_NoFieldSilentlyDropped(t *testing.T) {
	r := NewReconciler()
	a := []model.TextField{
		field(0, 0, 100, 20, "a1"),
		field(0, 100, 50, 120, "a-lonely"),
	}
	b := []model.TextField{
		field(10, 2, 90, 18, "b1"),
		field(200, 200, 300, 220, "b-lonely"),
	}

	out := r.Merge(a, b)
	texts := make(map[string]bool)
	for _, f := range out {
		texts[f.Text] = true
	}
	if !texts["b1"] {
		t.Error("merged field missing")
	}
	if !texts["b-lonely"] {
		t.Error("unmatched second-source field dropped")
	}
	if !texts["a-lonely"] {
		t.Error("unmatched first-source field dropped")
	}
}

func TestMerge_DuplicateQuirk(t *testing.T) {
	// One b field inside two overlapping a fields yields two merged
	// duplicates while the flag is on, one when it is off.
	a := []model.TextField{
		field(0, 0, 100, 20, "a1"),
		field(0, 0, 120, 25, "a2"),
	}
	b := []model.TextField{field(10, 2, 90, 18, "b")}

	r := NewReconciler()
	if out := r.Merge(a, b); len(out) != 2 {
		t.Errorf("with KeepDuplicateMerges: got %d fields, want 2", len(out))
	}

	r.KeepDuplicateMerges = false
	out := r.Merge(a, b)
	// One merged field plus a2, which the merged a1∪b box does not contain.
	if len(out) != 2 {
		t.Fatalf("without KeepDuplicateMerges: got %d fields, want 2", len(out))
	}
	dup := 0
	for _, f := range out {
		if f.Text == "b" {
			dup++
		}
	}
	if dup != 1 {
		t.Errorf("got %d merged copies, want 1", dup)
	}
}

func TestMergeClosest_JoinWindow(t *testing.T) {
	r := NewReconciler()
	tests := []struct {
		name string
		gap  int
		want int // resulting field count
	}{
		{"well within window", 5, 1},
		{"slight overlap", -5, 1},
		{"just inside", 19, 1},
		{"at the boundary", 20, 2},
		{"beyond", 40, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := []model.TextField{
				field(0, 0, 50, 10, "left"),
				field(50+tt.gap, 0, 120+tt.gap, 10, "right"),
			}
			out := r.MergeClosest(fields)
			if len(out) != tt.want {
				t.Fatalf("got %d fields, want %d", len(out), tt.want)
			}
			if tt.want == 1 && out[0].Text != "left right" {
				t.Errorf("joined text = %q, want %q", out[0].Text, "left right")
			}
		})
	}
}

func TestMergeClosest_SweepOrder(t *testing.T) {
	r := NewReconciler()
	// Deliberately unsorted input; the sweep must run in (top, left)
	// order exactly once.
	fields := []model.TextField{
		field(60, 0, 110, 10, "b"),
		field(0, 30, 40, 40, "c"),
		field(0, 0, 50, 10, "a"),
	}
	out := r.MergeClosest(fields)
	if len(out) != 2 {
		t.Fatalf("got %d fields, want 2", len(out))
	}
	if out[0].Text != "a b" {
		t.Errorf("first line = %q, want %q", out[0].Text, "a b")
	}
	if out[1].Text != "c" {
		t.Errorf("second line = %q, want %q", out[1].Text, "c")
	}
}

func TestMergeClosest_Empty(t *testing.T) {
	r := NewReconciler()
	if out := r.MergeClosest(nil); out != nil {
		t.Errorf("expected nil for empty input, got %v", out)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  café  "); got != "café" {
		t.Errorf("Normalize = %q, want composed form", got)
	}
}
