package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tablefuse/tablefuse/model"
)

// PageResult is the outcome of one page. Exactly one of Page and Err
// is set.
type PageResult struct {
	PageNum int
	Page    *model.Page
	Err     error
}

// Report aggregates the outcomes of a run. Results are ordered by
// input position, not completion time.
type Report struct {
	Results []PageResult
}

// Failed returns the results of pages that did not complete.
func (r *Report) Failed() []PageResult {
	var out []PageResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Pages returns the successfully processed page models in input
// order.
func (r *Report) Pages() []*model.Page {
	var out []*model.Page
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res.Page)
		}
	}
	return out
}

// Err summarizes the run: nil when every page succeeded.
func (r *Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d pages failed, first: page %d: %w",
		len(failed), len(r.Results), failed[0].PageNum, failed[0].Err)
}

// Runner processes independent pages on a bounded worker pool. A page
// failure is recorded in the report and never aborts the remaining
// pages.
type Runner struct {
	Proc *Processor

	// Workers bounds concurrent pages. Zero or negative means
	// runtime.NumCPU. Each worker opens its own recognition handles;
	// a handle is never shared across pages.
	Workers int

	// PageTimeout bounds one page's processing. Zero means no
	// timeout.
	PageTimeout time.Duration

	Log *slog.Logger
}

// NewRunner returns a runner over proc with default pool settings.
func NewRunner(proc *Processor) *Runner {
	return &Runner{Proc: proc}
}

// Run processes every input and returns the aggregated report. Inputs
// are expected in filename order; results keep that order. Run stops
// scheduling new pages once ctx is cancelled, marking the remainder
// failed with the context error.
func (r *Runner) Run(ctx context.Context, inputs []PageInput) *Report {
	results := make([]PageResult, len(inputs))

	var g errgroup.Group
	g.SetLimit(r.workers())
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			results[i] = r.runPage(ctx, in)
			return nil
		})
	}
	_ = g.Wait() // workers record failures in results, never return them

	for _, res := range results {
		if res.Err != nil {
			r.logger().Error("page failed", "page", res.PageNum, "error", res.Err)
		}
	}
	return &Report{Results: results}
}

func (r *Runner) runPage(ctx context.Context, in PageInput) PageResult {
	if err := ctx.Err(); err != nil {
		return PageResult{PageNum: in.PageNum, Err: err}
	}
	if r.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.PageTimeout)
		defer cancel()
	}

	start := time.Now()
	page, err := r.Proc.ProcessPage(ctx, in)
	if err != nil {
		return PageResult{PageNum: in.PageNum, Err: err}
	}
	r.logger().Info("page processed",
		"page", in.PageNum,
		"tables", len(page.Tables),
		"text_blocks", len(page.Text),
		"elapsed", time.Since(start))
	return PageResult{PageNum: in.PageNum, Page: page}
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.NumCPU()
}

func (r *Runner) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}
