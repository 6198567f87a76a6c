package render

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/tablefuse/tablefuse/model"
	"github.com/tablefuse/tablefuse/text"
)

// LayerField is one embedded-text box in the PDF's own coordinate
// space.
type LayerField struct {
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
	Text string  `json:"text"`
}

// TextLayer is the embedded text of one page, before rescaling to
// pixel coordinates.
type TextLayer struct {
	PageWidth  float64      `json:"width"`
	PageHeight float64      `json:"height"`
	Fields     []LayerField `json:"fields"`
}

// ScaleToImage converts the layer's fields into pixel coordinates for
// a page image of the given height, scaling by
// image_height / pdf_page_height.
func (l *TextLayer) ScaleToImage(imageHeight int) []model.TextField {
	if l.PageHeight == 0 {
		return nil
	}
	scale := float64(imageHeight) / l.PageHeight
	out := make([]model.TextField, 0, len(l.Fields))
	for _, f := range l.Fields {
		out = append(out, model.TextField{
			Box: model.Box{
				X1: int(math.Round(f.X1 * scale)),
				Y1: int(math.Round(f.Y1 * scale)),
				X2: int(math.Round(f.X2 * scale)),
				Y2: int(math.Round(f.Y2 * scale)),
			},
			Text: text.Normalize(f.Text),
		})
	}
	return out
}

// MissingPageError reports a rasterized page filename that has no
// entry in the embedded text layer. The page fails with this as its
// recorded cause; other pages in the run are unaffected. Callers can
// pick it out with errors.As to tell a gap in the layer file from a
// structural error.
type MissingPageError struct {
	Page string
}

func (e *MissingPageError) Error() string {
	return fmt.Sprintf("no text layer entry for page %q", e.Page)
}

// LayerProvider hands out per-page text layers keyed by the page
// image's base name without extension.
type LayerProvider interface {
	PageLayer(name string) (*TextLayer, error)
}

// LayerMap is an in-memory LayerProvider.
type LayerMap map[string]*TextLayer

// PageLayer returns the layer for name, or a *MissingPageError.
func (m LayerMap) PageLayer(name string) (*TextLayer, error) {
	layer, ok := m[name]
	if !ok {
		return nil, &MissingPageError{Page: name}
	}
	return layer, nil
}

// LoadLayers reads a JSON file mapping page names to text layers, as
// produced by the upstream embedded-text extractor.
func LoadLayers(path string) (LayerMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text layer file: %w", err)
	}
	var layers LayerMap
	if err := json.Unmarshal(data, &layers); err != nil {
		return nil, fmt.Errorf("parse text layer file %s: %w", path, err)
	}
	return layers, nil
}
