package model

// Page is the finalized model of one document page: its tables and the
// residual free-text blocks outside them. A page owns both collections
// exclusively; it is created once per page, mutated only while that
// page is processed, and treated as immutable once serialized.
type Page struct {
	PageNum int
	Box     Box
	Tables  []*HeaderedTable
	Text    []TextField
}

// NewPage creates an empty page covering the given pixel extent.
func NewPage(pageNum, width, height int) *Page {
	return &Page{
		PageNum: pageNum,
		Box:     Box{X1: 0, Y1: 0, X2: width, Y2: height},
	}
}
