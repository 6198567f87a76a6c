package model

// Box represents an axis-aligned rectangle in pixel coordinates.
// X1,Y1 is the top-left corner and X2,Y2 the bottom-right corner,
// with the invariant X1 <= X2 and Y1 <= Y2.
type Box struct {
	X1, Y1, X2, Y2 int
}

// NewBox creates a box from corner coordinates.
// It returns a *BoxError if the corners are inverted.
func NewBox(x1, y1, x2, y2 int) (Box, error) {
	if x1 > x2 || y1 > y2 {
		return Box{}, &BoxError{X1: x1, Y1: y1, X2: x2, Y2: y2}
	}
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2}, nil
}

// Width returns the box width in pixels.
func (b Box) Width() int {
	return b.X2 - b.X1
}

// Height returns the box height in pixels.
func (b Box) Height() int {
	return b.Y2 - b.Y1
}

// Area returns the box area in square pixels.
func (b Box) Area() int {
	return b.Width() * b.Height()
}

// Valid reports whether the box satisfies its corner invariant.
func (b Box) Valid() bool {
	return b.X1 <= b.X2 && b.Y1 <= b.Y2
}

// Merge returns the smallest box enclosing both b and other.
// It is total: any pair of boxes has a merge.
func (b Box) Merge(other Box) Box {
	return Box{
		X1: min(b.X1, other.X1),
		Y1: min(b.Y1, other.Y1),
		X2: max(b.X2, other.X2),
		Y2: max(b.Y2, other.Y2),
	}
}

// Inside reports whether b lies within outer, allowing a fractional
// boundary slack. The outer box is expanded by tolerance*width
// horizontally and tolerance*height vertically before the test, so a
// tolerance of 0 means strict containment. Callers choose the tolerance
// deliberately: 0.0 for exact nesting tests, larger values for fuzzy
// detector-to-detector matching.
func (b Box) Inside(outer Box, tolerance float64) bool {
	dx := int(tolerance * float64(outer.Width()))
	dy := int(tolerance * float64(outer.Height()))
	return b.X1 >= outer.X1-dx && b.Y1 >= outer.Y1-dy &&
		b.X2 <= outer.X2+dx && b.Y2 <= outer.Y2+dy
}

// Contains reports whether inner lies within b under the given
// tolerance. It is the mirror of Inside.
func (b Box) Contains(inner Box, tolerance float64) bool {
	return inner.Inside(b, tolerance)
}

// Intersects reports whether the two boxes overlap at all.
func (b Box) Intersects(other Box) bool {
	return !(b.X2 < other.X1 || b.X1 > other.X2 ||
		b.Y2 < other.Y1 || b.Y1 > other.Y2)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
