package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
)

// Source produces page images from a document.
type Source interface {
	PageCount() int
	PageSize(index int) (width, height float64, err error)
	RenderPage(index, dpi int) (image.Image, error)
	Close() error
}

// FitzSource renders PDF pages through MuPDF.
type FitzSource struct {
	doc  *fitz.Document
	path string
}

// OpenPDF opens a PDF document for rendering.
func OpenPDF(path string) (*FitzSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &FitzSource{doc: doc, path: path}, nil
}

// PageCount returns the number of pages in the document.
func (s *FitzSource) PageCount() int {
	return s.doc.NumPage()
}

// PageSize returns the page dimensions in PDF points.
func (s *FitzSource) PageSize(index int) (float64, float64, error) {
	rect, err := s.doc.Bound(index)
	if err != nil {
		return 0, 0, fmt.Errorf("page %d bounds: %w", index, err)
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// RenderPage rasterizes one page at the given DPI. A fresh MuPDF
// handle is opened per call; the shared one is not safe for
// concurrent renders.
func (s *FitzSource) RenderPage(index, dpi int) (image.Image, error) {
	worker, err := fitz.New(s.path)
	if err != nil {
		return nil, fmt.Errorf("open pdf worker: %w", err)
	}
	defer worker.Close()

	img, err := worker.ImageDPI(index, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", index, err)
	}
	return img, nil
}

// Close releases the document.
func (s *FitzSource) Close() error {
	return s.doc.Close()
}

// RasterizeAll renders every page of the source into dir as
// zero-padded PNG files whose names sort in page order, and returns
// the file paths in that order.
func RasterizeAll(ctx context.Context, src Source, dir string, dpi int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create raster directory: %w", err)
	}

	paths := make([]string, 0, src.PageCount())
	for i := 0; i < src.PageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := src.RenderPage(i, dpi)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, fmt.Sprintf("%04d.png", i+1))
		if err := writePNG(path, img); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
