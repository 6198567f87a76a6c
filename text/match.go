package text

import "github.com/tablefuse/tablefuse/model"

// MatchCellsText counts how many cells have at least one text field
// aligned to them under the containment rule, and returns the fields
// that aligned to no cell. The count is deliberately coarse: an
// absolute number rather than a normalized ratio, so cell and field
// counts bias comparisons between reconstructions.
func MatchCellsText(cells []model.Cell, fields []model.TextField, tolerance float64) (int, []model.TextField) {
	matched := make([]bool, len(cells))
	var residual []model.TextField

	for _, f := range fields {
		found := false
		for i, c := range cells {
			if f.Box.Inside(c.Box, tolerance) {
				matched[i] = true
				found = true
			}
		}
		if !found {
			residual = append(residual, f)
		}
	}

	score := 0
	for _, m := range matched {
		if m {
			score++
		}
	}
	return score, residual
}

// AttachCellsText is the assigning form of MatchCellsText: each field
// is appended to the fragments of every cell that contains it. Input
// cells are not mutated; the returned slice holds copies with the
// fields attached.
func AttachCellsText(cells []model.Cell, fields []model.TextField, tolerance float64) ([]model.Cell, int, []model.TextField) {
	out := make([]model.Cell, len(cells))
	for i, c := range cells {
		out[i] = c
		out[i].TextFields = append([]model.TextField(nil), c.TextFields...)
	}

	var residual []model.TextField
	for _, f := range fields {
		found := false
		for i := range out {
			if f.Box.Inside(out[i].Box, tolerance) {
				out[i].TextFields = append(out[i].TextFields, f)
				found = true
			}
		}
		if !found {
			residual = append(residual, f)
		}
	}

	score := 0
	for i := range out {
		if len(out[i].TextFields) > len(cells[i].TextFields) {
			score++
		}
	}
	return out, score, residual
}
