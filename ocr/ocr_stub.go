//go:build !ocr

// Package ocr provides the scoped text-recognition engine used to
// resolve text the upstream detectors missed.
//
// This is the stub implementation used when the "ocr" build tag is
// not set. All functions return ErrOCRNotEnabled.
//
// To enable OCR, rebuild with the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"errors"

	"github.com/tablefuse/tablefuse/model"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR
// support was not compiled in. Rebuild with -tags ocr to enable OCR
// support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Engine is a stub text-recognition handle that returns errors for
// all operations.
type Engine struct{}

// Open returns an error indicating OCR support is not enabled.
// To enable OCR, rebuild with: go build -tags ocr
func Open(imagePath string) (*Engine, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub engine. It is safe to call on a nil
// engine.
func (e *Engine) Close() error {
	return nil
}

// SetLanguage returns an error indicating OCR support is not enabled.
func (e *Engine) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// SetSparse returns an error indicating OCR support is not enabled.
func (e *Engine) SetSparse() error {
	return ErrOCRNotEnabled
}

// Extract returns an error indicating OCR support is not enabled.
func (e *Engine) Extract(x, y, w, h int) (string, error) {
	return "", ErrOCRNotEnabled
}

// ExtractRegion returns an error indicating OCR support is not enabled.
func (e *Engine) ExtractRegion(x, y, w, h int) (string, float64, []model.Box, error) {
	return "", 0, nil, ErrOCRNotEnabled
}
