// Package render adapts the external page-producing collaborators:
// the PDF rasterizer that turns a document into ordered page images,
// the embedded text layer that ships in the PDF's own coordinate
// space, and the decoding of page images from disk.
//
// Everything downstream works in absolute pixel coordinates; the text
// layer is rescaled by image_height / pdf_page_height on the way in.
package render
