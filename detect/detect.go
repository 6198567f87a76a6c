// Package detect defines the contracts of the external detection
// collaborators — the learned table-region detector, the scene-text
// detector, the classical bordered-line detector and the borderless
// pixel analysis — and an HTTP client for inference sidecars that
// implement them. Detector internals are out of scope; only their
// output contracts are consumed.
package detect

import (
	"context"
	"image"

	"github.com/tablefuse/tablefuse/model"
)

// RegionDetector is the learned table-region detector: page image in,
// ordered region hypotheses with raw cell proposals out. Emission
// order is significant; the fusion policy consumes regions first
// registered first.
type RegionDetector interface {
	DetectRegions(ctx context.Context, img image.Image) ([]model.TableRegion, error)
}

// SceneTextDetector finds text boxes confined to one region of a page
// image.
type SceneTextDetector interface {
	DetectText(ctx context.Context, img image.Image, region model.Box) ([]model.TextField, error)
}

// BorderDetector is the classical bordered-line detector: page image
// in, row/column band structures out.
type BorderDetector interface {
	DetectBorders(ctx context.Context, img image.Image) ([]model.BorderedRegion, error)
}

// SemiBorderAnalyzer attempts a pixel-based borderless reconstruction
// of a single region. A nil region with nil error means the analysis
// found no usable structure.
type SemiBorderAnalyzer interface {
	AnalyzeRegion(ctx context.Context, img image.Image, region model.TableRegion) (*model.BorderedRegion, error)
}
