// Package tables rebuilds structured table grids from noisy cell and
// band proposals.
//
// Three reconstruction strategies produce a common StructuredTable
// result:
//
//   - MaskDerived: built directly from a learned detector's cell
//     proposals plus promoted free text.
//   - SemiBordered: built from the pixel-based borderless analysis of
//     a region, via its band cell proposals.
//   - LineSnapped: built from a classical border-line detector's row
//     and column bands, with near-duplicate boundary coordinates
//     snapped into one canonical line lattice.
//
// The fusion policy chooses among strategies with the adoption
// predicates in this package; the match-quality scores it compares
// come from the text package.
package tables
