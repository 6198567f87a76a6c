package model

import "fmt"

// BoxError reports a box whose corners violate the X1<=X2, Y1<=Y2
// invariant. It signals a collaborator contract violation and is not
// recoverable.
type BoxError struct {
	X1, Y1, X2, Y2 int
}

func (e *BoxError) Error() string {
	return fmt.Sprintf("inverted box corners (%d,%d)-(%d,%d)", e.X1, e.Y1, e.X2, e.Y2)
}

// GridError reports a finalized grid that violates the tiling
// invariant: cells must cover the table extent without gaps or
// overlaps once spans are applied.
type GridError struct {
	Row, Col int
	Reason   string
}

func (e *GridError) Error() string {
	return fmt.Sprintf("grid invariant violated at (%d,%d): %s", e.Row, e.Col, e.Reason)
}
