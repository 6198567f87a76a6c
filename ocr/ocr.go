//go:build ocr

// Package ocr provides the scoped text-recognition engine used to
// resolve text the upstream detectors missed.
//
// This package wraps the Tesseract OCR engine via gosseract. It
// requires Tesseract to be installed on the system. On macOS, install
// via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	_ "image/jpeg"

	"github.com/otiai10/gosseract/v2"
	_ "golang.org/x/image/tiff"

	"github.com/tablefuse/tablefuse/model"
)

// Engine is a text-recognition handle bound to one page image. It is
// not safe for concurrent use; concurrent pages must each open their
// own engine.
type Engine struct {
	client *gosseract.Client
	img    image.Image
}

// Open binds a new engine to the image at path. The engine must be
// closed when no longer needed to release Tesseract resources.
func Open(imagePath string) (*Engine, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open page image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode page image %s: %w", imagePath, err)
	}

	return &Engine{client: gosseract.NewClient(), img: img}, nil
}

// Close releases the underlying Tesseract client.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// SetLanguage sets the recognition language(s), "+"-separated for
// multiple (e.g. "eng+fra").
func (e *Engine) SetLanguage(lang string) error {
	return e.client.SetLanguage(lang)
}

// SetSparse switches the engine to sparse-text segmentation, used
// when scanning loose page regions rather than single cells.
func (e *Engine) SetSparse() error {
	return e.client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT)
}

// Extract recognizes the text inside the given rectangle of the bound
// image. An empty or out-of-bounds rectangle yields empty text.
func (e *Engine) Extract(x, y, w, h int) (string, error) {
	data, ok, err := e.crop(x, y, w, h)
	if err != nil || !ok {
		return "", err
	}
	if err := e.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image region: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize region: %w", err)
	}
	return text, nil
}

// ExtractRegion recognizes the rectangle and additionally returns the
// mean word confidence and the recognized word boxes, relative to the
// rectangle's top-left corner.
func (e *Engine) ExtractRegion(x, y, w, h int) (string, float64, []model.Box, error) {
	data, ok, err := e.crop(x, y, w, h)
	if err != nil || !ok {
		return "", 0, nil, err
	}
	if err := e.client.SetImageFromBytes(data); err != nil {
		return "", 0, nil, fmt.Errorf("set image region: %w", err)
	}

	words, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return "", 0, nil, fmt.Errorf("recognize region words: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", 0, nil, fmt.Errorf("recognize region: %w", err)
	}

	var boxes []model.Box
	var confidence float64
	for _, word := range words {
		boxes = append(boxes, model.Box{
			X1: word.Box.Min.X, Y1: word.Box.Min.Y,
			X2: word.Box.Max.X, Y2: word.Box.Max.Y,
		})
		confidence += word.Confidence
	}
	if len(words) > 0 {
		confidence /= float64(len(words))
	}
	return text, confidence, boxes, nil
}

// crop encodes the requested rectangle of the bound image as PNG. The
// second return value is false when the clamped rectangle is empty.
func (e *Engine) crop(x, y, w, h int) ([]byte, bool, error) {
	rect := image.Rect(x, y, x+w, y+h).Intersect(e.img.Bounds())
	if rect.Empty() {
		return nil, false, nil
	}

	region := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(region, region.Bounds(), e.img, rect.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, region); err != nil {
		return nil, false, fmt.Errorf("encode region: %w", err)
	}
	return buf.Bytes(), true, nil
}
