package tablefuse

import (
	"log/slog"
	"time"

	"github.com/tablefuse/tablefuse/headers"
)

// RunOptions holds configuration for a fusion run.
type RunOptions struct {
	// Output locations
	outputDir string
	diagDir   string

	// Rasterization
	dpi int

	// Collaborator services
	detectorURL  string
	sceneTextURL string

	// Embedded text layer file; empty means detector text only.
	layerPath string

	// Per-cell header classifier; nil falls back to digit density.
	headerClassifier headers.Classifier

	// Worker pool
	workers     int
	pageTimeout time.Duration

	logger *slog.Logger
}

// defaultRunOptions returns the default run options.
func defaultRunOptions() RunOptions {
	return RunOptions{
		outputDir: "out",
		dpi:       150,
	}
}

// clone creates a copy of RunOptions.
func (o RunOptions) clone() RunOptions {
	return RunOptions{
		outputDir:        o.outputDir,
		diagDir:          o.diagDir,
		dpi:              o.dpi,
		detectorURL:      o.detectorURL,
		sceneTextURL:     o.sceneTextURL,
		layerPath:        o.layerPath,
		headerClassifier: o.headerClassifier,
		workers:          o.workers,
		pageTimeout:      o.pageTimeout,
		logger:           o.logger,
	}
}
