package headers

import (
	"testing"

	"github.com/tablefuse/tablefuse/model"
)

func rowWithText(row int, texts ...string) []model.LinkedCell {
	cells := make([]model.LinkedCell, len(texts))
	for i, txt := range texts {
		box := model.Box{X1: i * 10, Y1: row * 10, X2: (i + 1) * 10, Y2: (row + 1) * 10}
		cells[i] = model.LinkedCell{
			Cell:    model.Cell{Box: box, TextFields: []model.TextField{{Box: box, Text: txt}}},
			Row:     row, Col: i,
			RowSpan: 1, ColSpan: 1,
		}
	}
	return cells
}

func TestDigitShare(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  float64
	}{
		{"no digits", []string{"Name", "City"}, 0},
		{"half digits", []string{"ab12"}, 0.5},
		{"empty row", []string{"", ""}, 0},
		{"all digits", []string{"1234"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DigitShare(rowWithText(0, tt.texts...)); got != tt.want {
				t.Errorf("DigitShare = %v, want %v", got, tt.want)
			}
		})
	}
}

func tableFromTexts(rowTexts [][]string) *model.StructuredTable {
	t := &model.StructuredTable{}
	for r, texts := range rowTexts {
		t.Cells = append(t.Cells, rowWithText(r, texts...)...)
	}
	if len(rowTexts) > 0 {
		t.Box = model.Box{X2: len(rowTexts[0]) * 10, Y2: len(rowTexts) * 10}
	}
	return t
}

func TestActualizeHeader_StopsAtDenserRow(t *testing.T) {
	// Digit shares per row: 0.1, 0.05, 0.05, 0.35 — the scan stops at
	// the fourth row, so the header is the first three.
	table := tableFromTexts([][]string{
		{"abcdefghi1"},
		{"abcdefghijayzbcdefg1"},
		{"abcdefghijayzbcdefg1"},
		{"abcdefghi1234567qrst"},
		{"data 99999"},
	})
	result := NewInferencer(nil).ActualizeHeader(table)
	if got := len(result.Header); got != 3 {
		t.Errorf("header cells = %d, want 3", got)
	}
}

func TestActualizeHeader_FullTableMeansNoHeader(t *testing.T) {
	table := tableFromTexts([][]string{
		{"alpha"},
		{"beta"},
		{"gamma"},
	})
	result := NewInferencer(nil).ActualizeHeader(table)
	if len(result.Header) != 0 {
		t.Errorf("full-table header should be empty, got %d cells", len(result.Header))
	}
	if len(result.Cells) != 3 {
		t.Errorf("body cells = %d, want 3", len(result.Cells))
	}
}

func TestActualizeHeader_EmptyRowsAreZeroDensity(t *testing.T) {
	// An empty second row has density 0 <= 0.1 and joins the header.
	table := tableFromTexts([][]string{
		{"abcdefghi1"},
		{""},
		{"129 total"},
	})
	result := NewInferencer(nil).ActualizeHeader(table)
	if got := len(result.Header); got != 2 {
		t.Errorf("header cells = %d, want 2", got)
	}
}
