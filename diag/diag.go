// Package diag collects diagnostic artifacts from the fusion
// pipeline: overlay images of intermediate detections and records of
// anomalous header decisions. Collection is best-effort and never
// load-bearing; the default collector discards everything.
package diag

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tablefuse/tablefuse/model"
)

// Collector receives diagnostic events. Implementations must tolerate
// concurrent calls from multiple page workers.
type Collector interface {
	// AnomalousHeader records a header candidate series that was
	// discarded for covering too much of its table.
	AnomalousHeader(pageNum int, series [][]model.LinkedCell)

	// Overlay records an intermediate detection state as a named set
	// of boxes over the page image.
	Overlay(name string, img image.Image, boxes []model.Box)
}

// Nop is a collector that discards everything.
type Nop struct{}

func (Nop) AnomalousHeader(int, [][]model.LinkedCell) {}

func (Nop) Overlay(string, image.Image, []model.Box) {}

// appendLine appends one line to a file, creating it as needed.
func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, line)
	return err
}

func logger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
