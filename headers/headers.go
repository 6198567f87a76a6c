// Package headers infers which rows and columns of a finalized table
// form its header. Two independent heuristics exist: a per-cell
// classifier vote applied when a classifier is configured, and a
// digit-density scan used as the fallback.
package headers

import (
	"github.com/tablefuse/tablefuse/diag"
	"github.com/tablefuse/tablefuse/model"
)

// Classifier scores a single cell's likelihood of belonging to a
// header versus a table body. The two scores are only compared against
// each other.
type Classifier interface {
	CellScore(cell model.LinkedCell) (header, body float64)
}

// Inferencer annotates structured tables with header rows and columns.
type Inferencer struct {
	// Classifier drives the vote-based heuristic. When nil, the
	// digit-density fallback is used instead.
	Classifier Classifier

	// RowLimit and ColLimit bound how many leading rows/columns are
	// examined for header membership.
	RowLimit int
	ColLimit int

	// MaxHeaderShare discards a header that would cover more than this
	// fraction of all lines; such inputs are recorded to the
	// diagnostic collector.
	MaxHeaderShare float64

	// Diag receives anomalous header records. Defaults to discard.
	Diag diag.Collector
}

// NewInferencer returns an inferencer with default limits.
func NewInferencer(c Classifier) *Inferencer {
	return &Inferencer{
		Classifier:     c,
		RowLimit:       6,
		ColLimit:       5,
		MaxHeaderShare: 0.75,
		Diag:           diag.Nop{},
	}
}

// Apply computes header rows and header columns independently and
// attaches both to the table. Without a classifier the digit-density
// fallback decides header rows and no header columns are marked.
func (inf *Inferencer) Apply(pageNum int, t *model.StructuredTable) *model.HeaderedTable {
	if inf.Classifier == nil {
		return inf.ActualizeHeader(t)
	}
	ht := model.NewHeaderedTable(t, inf.CreateHeader(pageNum, t.Rows(), inf.RowLimit))
	ht.AddHeaderCols(inf.CreateHeader(pageNum, t.Cols(), inf.ColLimit))
	return ht
}

// CreateHeader selects the header prefix of a line series (rows or
// columns). Only the first limit lines are classified; the header
// extends to the last header-like line seen, inclusive, so a
// non-header-like line between two header-like ones is still included.
// A header covering more than MaxHeaderShare of all lines is discarded
// and the series recorded as anomalous.
func (inf *Inferencer) CreateHeader(pageNum int, series [][]model.LinkedCell, limit int) [][]model.LinkedCell {
	lastHeader := -1
	for idx := 0; idx < len(series) && idx < limit; idx++ {
		if inf.headerLike(series[idx]) {
			lastHeader = idx
		}
	}
	if lastHeader < 0 {
		return nil
	}

	header := series[:lastHeader+1]
	if float64(len(header)) > inf.MaxHeaderShare*float64(len(series)) {
		inf.collector().AnomalousHeader(pageNum, series)
		return nil
	}
	return header
}

// headerLike decides whether one line belongs to a header by majority
// vote: cells whose header score beats their body score count as
// votes, and the required share is a fifth for lines longer than five
// cells, half otherwise.
func (inf *Inferencer) headerLike(line []model.LinkedCell) bool {
	votes := 0
	for _, cell := range line {
		header, body := inf.Classifier.CellScore(cell)
		if header > body {
			votes++
		}
	}
	if len(line) > 5 {
		return float64(votes) > float64(len(line))/5
	}
	return float64(votes) > float64(len(line))/2
}

func (inf *Inferencer) collector() diag.Collector {
	if inf.Diag != nil {
		return inf.Diag
	}
	return diag.Nop{}
}
