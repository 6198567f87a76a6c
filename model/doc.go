// Package model defines the document model shared by all fusion
// stages: box geometry, text fields, cell proposals, detector region
// hypotheses, finalized table grids, and the per-page container.
//
// All coordinates are absolute pixel coordinates on the rasterized
// page, with the origin at the top-left corner.
//
// The types form a strict ownership chain: a Cell owns its TextFields,
// a StructuredTable owns its cells, and a Page owns its tables and
// free-text blocks. Nothing is shared across pages or across tables.
package model
