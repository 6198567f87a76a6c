// Package tablefuse provides a fluent API for reconstructing tables
// and residual text from document pages by fusing independent
// detection signals.
//
// Basic usage:
//
//	report, err := tablefuse.Open("document.pdf").
//	    DetectorService("http://localhost:8500").
//	    OutputDir("out").
//	    Run(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if err := report.Err(); err != nil {
//	    log.Println("some pages failed:", err)
//	}
//
// For advanced use cases, the lower-level pipeline package is also
// available.
package tablefuse

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/tablefuse/tablefuse/detect"
	"github.com/tablefuse/tablefuse/diag"
	"github.com/tablefuse/tablefuse/export"
	"github.com/tablefuse/tablefuse/headers"
	"github.com/tablefuse/tablefuse/pipeline"
	"github.com/tablefuse/tablefuse/render"
)

// Open prepares a fusion job for a PDF file. Configuration methods
// return new Job instances; Run executes the job.
//
// Example:
//
//	report, err := tablefuse.Open("document.pdf").Run(ctx)
func Open(filename string) *Job {
	return &Job{
		filename: filename,
		options:  defaultRunOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	report := tablefuse.Must(tablefuse.Open("document.pdf").Run(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// Job provides a fluent interface for configuring and executing a
// fusion run. Each configuration method returns a new Job instance,
// making it safe for concurrent use and allowing method chaining.
type Job struct {
	filename string
	options  RunOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a copy of the Job with copied options. This ensures
// immutability: each chain method returns a new instance.
func (j *Job) clone() *Job {
	return &Job{
		filename: j.filename,
		options:  j.options.clone(),
		err:      j.err,
	}
}

// OutputDir sets the directory receiving rasterized pages and the
// per-page JSON documents.
func (j *Job) OutputDir(dir string) *Job {
	nj := j.clone()
	nj.options.outputDir = dir
	return nj
}

// DPI sets the rasterization resolution.
func (j *Job) DPI(dpi int) *Job {
	nj := j.clone()
	if dpi <= 0 {
		nj.err = fmt.Errorf("dpi must be positive, got %d", dpi)
		return nj
	}
	nj.options.dpi = dpi
	return nj
}

// DetectorService points the job at the inference service providing
// table regions, bordered line detection and borderless analysis.
func (j *Job) DetectorService(url string) *Job {
	nj := j.clone()
	nj.options.detectorURL = strings.TrimRight(url, "/")
	return nj
}

// SceneTextService points the job at the scene-text detection
// service. Optional; without it only the embedded text layer and
// recognition fallback provide text.
func (j *Job) SceneTextService(url string) *Job {
	nj := j.clone()
	nj.options.sceneTextURL = strings.TrimRight(url, "/")
	return nj
}

// TextLayer supplies the embedded-text layer file produced by the
// upstream extractor.
func (j *Job) TextLayer(path string) *Job {
	nj := j.clone()
	nj.options.layerPath = path
	return nj
}

// HeaderClassifier supplies a per-cell classifier for header
// inference. Without one, header rows are inferred from digit
// density alone.
func (j *Job) HeaderClassifier(c headers.Classifier) *Job {
	nj := j.clone()
	nj.options.headerClassifier = c
	return nj
}

// Workers bounds how many pages are processed concurrently. Zero
// means one worker per CPU.
func (j *Job) Workers(n int) *Job {
	nj := j.clone()
	nj.options.workers = n
	return nj
}

// PageTimeout bounds one page's processing time. A page exceeding it
// is marked failed without aborting the run.
func (j *Job) PageTimeout(d time.Duration) *Job {
	nj := j.clone()
	nj.options.pageTimeout = d
	return nj
}

// Diagnostics enables overlay images and anomaly logs under dir.
func (j *Job) Diagnostics(dir string) *Job {
	nj := j.clone()
	nj.options.diagDir = dir
	return nj
}

// Logger sets the structured logger for the run. Defaults to
// slog.Default.
func (j *Job) Logger(l *slog.Logger) *Job {
	nj := j.clone()
	nj.options.logger = l
	return nj
}

// Run rasterizes the document, processes every page on the worker
// pool and writes one JSON document per successful page. The returned
// report carries per-page outcomes; Run itself fails only on setup
// errors that prevent any page from being processed.
func (j *Job) Run(ctx context.Context) (*pipeline.Report, error) {
	if j.err != nil {
		return nil, j.err
	}
	if j.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}
	if j.options.detectorURL == "" {
		return nil, fmt.Errorf("no detector service specified")
	}

	src, err := render.OpenPDF(j.filename)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer src.Close()

	imageDir := filepath.Join(j.options.outputDir, "images")
	paths, err := render.RasterizeAll(ctx, src, imageDir, j.options.dpi)
	if err != nil {
		return nil, fmt.Errorf("rasterize pages: %w", err)
	}

	proc, err := j.buildProcessor()
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(proc)
	runner.Workers = j.options.workers
	runner.PageTimeout = j.options.pageTimeout
	runner.Log = j.logger()

	report := runner.Run(ctx, pageInputs(paths))

	docDir := filepath.Join(j.options.outputDir, "pages")
	for _, page := range report.Pages() {
		doc := export.PageToDocument(page)
		path := filepath.Join(docDir, fmt.Sprintf("%d.json", page.PageNum))
		if err := doc.Write(path); err != nil {
			return report, fmt.Errorf("write page %d: %w", page.PageNum, err)
		}
	}
	return report, nil
}

func (j *Job) buildProcessor() (*pipeline.Processor, error) {
	sidecar := detect.NewSidecar(j.options.detectorURL)
	proc := pipeline.NewProcessor(sidecar)
	proc.Borders = sidecar
	proc.Semi = sidecar
	proc.Log = j.logger()
	proc.Headers.Classifier = j.options.headerClassifier

	if j.options.sceneTextURL != "" {
		proc.Scene = detect.NewSidecar(j.options.sceneTextURL)
	}
	if j.options.layerPath != "" {
		layers, err := render.LoadLayers(j.options.layerPath)
		if err != nil {
			return nil, fmt.Errorf("load text layer: %w", err)
		}
		proc.Layers = layers
	}
	if j.options.diagDir != "" {
		dc := diag.NewDirCollector(j.options.diagDir)
		dc.Log = j.logger()
		proc.Diag = dc
		proc.Headers.Diag = dc
	}
	return proc, nil
}

func (j *Job) logger() *slog.Logger {
	if j.options.logger != nil {
		return j.options.logger
	}
	return slog.Default()
}

// pageInputs derives page numbers and layer keys from the rasterized
// filenames. Pages are numbered from 1 in filename order.
func pageInputs(paths []string) []pipeline.PageInput {
	inputs := make([]pipeline.PageInput, len(paths))
	for i, path := range paths {
		base := filepath.Base(path)
		inputs[i] = pipeline.PageInput{
			PageNum:   i + 1,
			ImagePath: path,
			LayerName: strings.TrimSuffix(base, filepath.Ext(base)),
		}
	}
	return inputs
}
