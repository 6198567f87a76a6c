package tables

import "github.com/tablefuse/tablefuse/model"

// Strategy identifies which reconstruction produced a table.
type Strategy int

const (
	// MaskDerived tables come from the learned detector's cell
	// proposals plus promoted free text.
	MaskDerived Strategy = iota
	// SemiBordered tables come from the pixel-based borderless
	// analysis of a region.
	SemiBordered
	// LineSnapped tables come from the classical border-line
	// detector's snapped band lattice.
	LineSnapped
)

func (s Strategy) String() string {
	switch s {
	case MaskDerived:
		return "mask-derived"
	case SemiBordered:
		return "semi-bordered"
	case LineSnapped:
		return "line-snapped"
	default:
		return "unknown"
	}
}

// Reconstruction is one table candidate: a structured table, the
// strategy that built it, and its text-alignment score.
type Reconstruction struct {
	Strategy Strategy
	Score    int
	Table    *model.StructuredTable
}

// CellCount returns the number of cells in the candidate table.
func (r Reconstruction) CellCount() int {
	if r.Table == nil {
		return 0
	}
	return len(r.Table.Cells)
}

// AdoptSemiBordered decides whether a borderless region's
// semi-bordered reconstruction replaces the mask-derived one: its
// score must reach the mask score and it must yield strictly more
// cells than the detector proposed.
func AdoptSemiBordered(semiScore, maskScore, semiCells, proposalCells int) bool {
	return semiScore >= maskScore && semiCells > proposalCells
}

// AdoptLineSnapped decides whether a bordered region's line-snapped
// reconstruction replaces an existing candidate: both its score and
// its cell count must reach half of the candidate's. Both comparators
// are inclusive, so the exact boundary case adopts.
func AdoptLineSnapped(borderedScore, candidateScore, borderedCells, candidateCells int) bool {
	return float64(borderedScore) >= 0.5*float64(candidateScore) &&
		float64(borderedCells) >= 0.5*float64(candidateCells)
}

// BelowQualityGate reports whether a candidate's score falls below the
// fixed fraction of its cell count that forces the page through the
// classical bordered-line detector.
func BelowQualityGate(score, cellCount int, gate float64) bool {
	return float64(score) < gate*float64(cellCount)
}
