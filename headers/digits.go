package headers

import "github.com/tablefuse/tablefuse/model"

// DigitShare returns the fraction of digit characters over all
// characters in the cells' concatenated text. A line with no
// characters has a share of 0, never an arithmetic fault.
func DigitShare(cells []model.LinkedCell) float64 {
	digits, total := 0, 0
	for _, cell := range cells {
		for _, f := range cell.TextFields {
			for _, r := range f.Text {
				if r >= '0' && r <= '9' {
					digits++
				}
				total++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}

// ActualizeHeader infers header rows by digit density: starting from
// the first row, a row joins the header while its digit share does not
// exceed the previous accepted row's share; the first strictly denser
// row stops the scan. A header covering every row is treated as no
// header at all.
func (inf *Inferencer) ActualizeHeader(t *model.StructuredTable) *model.HeaderedTable {
	rows := t.Rows()
	if len(rows) == 0 {
		return model.NewHeaderedTable(t, nil)
	}

	current := DigitShare(rows[0])
	accepted := 1
	for _, row := range rows[1:] {
		share := DigitShare(row)
		if share > current {
			break
		}
		current = share
		accepted++
	}

	if accepted == len(rows) {
		return model.NewHeaderedTable(t, nil)
	}
	return model.NewHeaderedTable(t, rows[:accepted])
}
