package diag

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/tablefuse/tablefuse/model"
)

// DirCollector writes diagnostic artifacts under a directory: overlay
// PNGs into per-name subdirectories and anomalous header records into
// a single append-only log. Failures are logged, never returned.
type DirCollector struct {
	// Dir is the root directory for artifacts.
	Dir string

	// Downscale divides overlay image dimensions, to keep artifact
	// size manageable. Values below 2 keep full resolution.
	Downscale int

	// Log receives write failures. Defaults to slog.Default().
	Log *slog.Logger

	mu sync.Mutex
}

// NewDirCollector creates a collector rooted at dir.
func NewDirCollector(dir string) *DirCollector {
	return &DirCollector{Dir: dir, Downscale: 2}
}

// AnomalousHeader appends the discarded series' cell texts to
// anomalous_headers.log.
func (c *DirCollector) AnomalousHeader(pageNum int, series [][]model.LinkedCell) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "page %d:", pageNum)
	for _, line := range series {
		sb.WriteString(" [")
		for i, cell := range line {
			if i > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(cell.Cell.Text())
		}
		sb.WriteString("]")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := appendLine(filepath.Join(c.Dir, "anomalous_headers.log"), sb.String()); err != nil {
		logger(c.Log).Warn("diagnostic header record failed", "page", pageNum, "error", err)
	}
}

// Overlay draws box outlines over a copy of the page image and writes
// it as PNG under a subdirectory named after the event.
func (c *DirCollector) Overlay(name string, img image.Image, boxes []model.Box) {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	outline := color.RGBA{R: 220, G: 40, B: 40, A: 255}
	for _, b := range boxes {
		drawRect(rgba, b, outline)
	}

	var out image.Image = rgba
	if c.Downscale >= 2 {
		scaled := image.NewRGBA(image.Rect(0, 0, bounds.Dx()/c.Downscale, bounds.Dy()/c.Downscale))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), rgba, bounds, xdraw.Over, nil)
		out = scaled
	}

	path := filepath.Join(c.Dir, filepath.FromSlash(name)+".png")
	if err := writePNG(path, out); err != nil {
		logger(c.Log).Warn("diagnostic overlay failed", "name", name, "error", err)
	}
}

func drawRect(img *image.RGBA, b model.Box, col color.Color) {
	for x := b.X1; x <= b.X2; x++ {
		img.Set(x, b.Y1, col)
		img.Set(x, b.Y2, col)
	}
	for y := b.Y1; y <= b.Y2; y++ {
		img.Set(b.X1, y, col)
		img.Set(b.X2, y, col)
	}
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
