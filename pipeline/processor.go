package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/tablefuse/tablefuse/detect"
	"github.com/tablefuse/tablefuse/diag"
	"github.com/tablefuse/tablefuse/headers"
	"github.com/tablefuse/tablefuse/model"
	"github.com/tablefuse/tablefuse/ocr"
	"github.com/tablefuse/tablefuse/render"
	"github.com/tablefuse/tablefuse/tables"
	"github.com/tablefuse/tablefuse/text"
)

// Recognizer is the scoped text-recognition handle a Processor opens
// per page phase. *ocr.Engine satisfies it in both build modes.
type Recognizer interface {
	Close() error
	SetSparse() error
	Extract(x, y, w, h int) (string, error)
	ExtractRegion(x, y, w, h int) (string, float64, []model.Box, error)
}

// RecognizerFactory opens a Recognizer bound to one page image. A
// factory returning ocr.ErrOCRNotEnabled disables the recognition
// phases without failing the page.
type RecognizerFactory func(imagePath string) (Recognizer, error)

// OpenRecognizer is the default RecognizerFactory, backed by the ocr
// package.
func OpenRecognizer(imagePath string) (Recognizer, error) {
	e, err := ocr.Open(imagePath)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// PageInput identifies one rasterized page to process.
type PageInput struct {
	PageNum   int
	ImagePath string

	// LayerName keys the page's embedded-text layer in the
	// Processor's LayerProvider. Ignored when no provider is set.
	LayerName string
}

// Processor fuses the detector signals for a single page into a page
// model. All collaborator fields except Regions are optional; a nil
// collaborator disables the corresponding signal.
type Processor struct {
	Regions detect.RegionDetector
	Scene   detect.SceneTextDetector
	Borders detect.BorderDetector
	Semi    detect.SemiBorderAnalyzer

	// Layers resolves a page's embedded-text layer. Nil means no
	// embedded text is available.
	Layers render.LayerProvider

	// OpenRecognizer opens the scoped text-recognition handle.
	// Defaults to OpenRecognizer.
	Recognizer RecognizerFactory

	Reconciler text.Reconciler
	Builder    *tables.Builder
	Headers    *headers.Inferencer

	// RegionTolerance is the containment slack for matching text
	// fields and candidates against region boxes.
	RegionTolerance float64

	// CellTolerance is the containment slack for aligning text
	// fields to individual cell proposals.
	CellTolerance float64

	// QualityGate is the score-per-cell threshold below which a
	// candidate forces the bordered re-check.
	QualityGate float64

	// MinBandHeight is the smallest pixel height of a residual text
	// band worth recognizing.
	MinBandHeight int

	Diag diag.Collector
	Log  *slog.Logger
}

// NewProcessor returns a processor with default tunables and the given
// region detector. Remaining collaborators are set directly on the
// struct.
func NewProcessor(regions detect.RegionDetector) *Processor {
	return &Processor{
		Regions:         regions,
		Recognizer:      OpenRecognizer,
		Reconciler:      text.NewReconciler(),
		Builder:         tables.NewBuilder(),
		Headers:         headers.NewInferencer(nil),
		RegionTolerance: 0.1,
		CellTolerance:   0.1,
		QualityGate:     0.2,
		MinBandHeight:   3,
	}
}

// ProcessPage runs the full fusion flow for one page and returns its
// finalized model. The returned page is valid even when no table was
// found. An error means the whole page failed.
func (p *Processor) ProcessPage(ctx context.Context, in PageInput) (*model.Page, error) {
	img, err := render.LoadImage(in.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("load page image: %w", err)
	}
	bounds := img.Bounds()
	page := model.NewPage(in.PageNum, bounds.Dx(), bounds.Dy())

	var fields []model.TextField
	if p.Layers != nil {
		layer, err := p.Layers.PageLayer(in.LayerName)
		if err != nil {
			return nil, err
		}
		fields = layer.ScaleToImage(bounds.Dy())
	}

	regions, err := p.Regions.DetectRegions(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("detect table regions: %w", err)
	}
	if len(regions) == 0 {
		return page, nil
	}
	p.collector().Overlay(fmt.Sprintf("inference_result/%04d", in.PageNum), img, regionBoxes(regions))

	candidates, hasBordered, err := p.reconstructRegions(ctx, in, img, regions, fields)
	if err != nil {
		return nil, err
	}

	final, err := p.reconcileBordered(ctx, in, img, candidates, hasBordered, fields)
	if err != nil {
		return nil, err
	}

	if err := p.fillCellGaps(ctx, in.ImagePath, final); err != nil {
		return nil, err
	}

	for _, rec := range final {
		page.Tables = append(page.Tables, p.Headers.Apply(in.PageNum, rec.Table))
	}

	if err := p.recoverResidualText(ctx, in.ImagePath, page); err != nil {
		return nil, err
	}

	p.collector().Overlay(fmt.Sprintf("tables/%04d", in.PageNum), img, tableBoxes(page))
	return page, nil
}

// reconstructRegions runs steps 1-5 of the fusion flow over every
// detected region in emission order, producing scored candidates.
func (p *Processor) reconstructRegions(ctx context.Context, in PageInput, img image.Image, regions []model.TableRegion, fields []model.TextField) ([]tables.Reconstruction, bool, error) {
	pool := text.NewPool(fields)
	hasBordered := false
	var candidates []tables.Reconstruction

	for _, region := range regions {
		if region.Label == model.LabelBordered {
			hasBordered = true
		}
		regionFields, err := p.regionText(ctx, img, region.Box, pool)
		if err != nil {
			return nil, false, err
		}

		tags, maskScore, notMatched := text.AttachCellsText(region.Tags, regionFields, p.CellTolerance)

		if region.Label == model.LabelBorderless && p.Semi != nil {
			adopted, err := p.trySemiBordered(ctx, in, img, region, regionFields, maskScore)
			if err != nil {
				return nil, false, err
			}
			if adopted != nil {
				candidates = append(candidates, *adopted)
				continue
			}
		}

		st, err := p.buildMaskDerived(in.ImagePath, region, tags, notMatched)
		if err != nil {
			p.logger().Warn("mask reconstruction failed",
				"page", in.PageNum, "region", region.Box, "error", err)
			continue
		}
		candidates = append(candidates, tables.Reconstruction{
			Strategy: tables.MaskDerived,
			Score:    maskScore,
			Table:    st,
		})
	}
	return candidates, hasBordered, nil
}

// regionText takes the region's share of the residual pool and
// reconciles it with the scene-text detector's output when available.
func (p *Processor) regionText(ctx context.Context, img image.Image, region model.Box, pool *text.Pool) ([]model.TextField, error) {
	fields := pool.Take(region, p.RegionTolerance)
	if p.Scene == nil {
		return fields, nil
	}
	scene, err := p.Scene.DetectText(ctx, img, region)
	if err != nil {
		return nil, fmt.Errorf("detect scene text: %w", err)
	}
	if len(scene) == 0 {
		return fields, nil
	}
	return p.Reconciler.Merge(scene, fields), nil
}

// trySemiBordered attempts the borderless pixel-based reconstruction
// and returns it when the policy adopts it over the mask candidate.
func (p *Processor) trySemiBordered(ctx context.Context, in PageInput, img image.Image, region model.TableRegion, regionFields []model.TextField, maskScore int) (*tables.Reconstruction, error) {
	semi, err := p.Semi.AnalyzeRegion(ctx, img, region)
	if err != nil {
		return nil, fmt.Errorf("analyze borderless region: %w", err)
	}
	if semi == nil {
		return nil, nil
	}

	semiCells, semiScore, _ := text.AttachCellsText(semi.Cells(), regionFields, p.CellTolerance)
	if !tables.AdoptSemiBordered(semiScore, maskScore, semi.CellCount(), len(region.Tags)) {
		return nil, nil
	}

	st, err := p.Builder.ConstructFromCells(semi.Box, semiCells)
	if err != nil {
		p.logger().Warn("semi-bordered construction failed",
			"page", in.PageNum, "region", region.Box, "error", err)
		return nil, nil
	}
	return &tables.Reconstruction{
		Strategy: tables.SemiBordered,
		Score:    semiScore,
		Table:    st,
	}, nil
}

// buildMaskDerived assembles the fallback reconstruction from the
// learned detector's own proposals: proposals refined to their text
// extent, unmatched text promoted to cells and a scoped recognition
// pass tightening each rectangle.
func (p *Processor) buildMaskDerived(imagePath string, region model.TableRegion, tags []model.Cell, notMatched []model.TextField) (*model.StructuredTable, error) {
	cells := make([]model.Cell, 0, len(tags)+len(notMatched))
	for _, c := range tags {
		cells = append(cells, tables.RefineCell(c))
	}
	for _, f := range p.Reconciler.MergeClosest(notMatched) {
		cells = append(cells, model.NewCellFromText(f))
	}

	err := p.withRecognizer(imagePath, false, func(rec Recognizer) error {
		for i := range cells {
			b := cells[i].Box
			_, _, sub, err := rec.ExtractRegion(b.X1, b.Y1, b.Width(), b.Height())
			if err != nil {
				return fmt.Errorf("scoped recognition at %v: %w", b, err)
			}
			cells[i].Box = tables.ShrinkToRecognized(b, sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.Builder.ConstructFromCells(region.Box, cells)
}

// reconcileBordered runs step 6: when a bordered region was detected,
// or any candidate falls below the quality gate, the classical line
// detector re-checks the page and its regions compete with the
// pending candidates.
func (p *Processor) reconcileBordered(ctx context.Context, in PageInput, img image.Image, candidates []tables.Reconstruction, hasBordered bool, fields []model.TextField) ([]tables.Reconstruction, error) {
	need := hasBordered
	for _, c := range candidates {
		if tables.BelowQualityGate(c.Score, c.CellCount(), p.QualityGate) {
			need = true
			break
		}
	}
	if !need || p.Borders == nil {
		return candidates, nil
	}

	borderedRegions, err := p.Borders.DetectBorders(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("detect bordered regions: %w", err)
	}
	if len(borderedRegions) == 0 {
		return candidates, nil
	}

	// The re-check matches against the original pool, not the
	// leftovers of the first pass.
	pool := text.NewPool(fields)
	pending := append([]tables.Reconstruction(nil), candidates...)
	var final []tables.Reconstruction

	for i := range borderedRegions {
		br := &borderedRegions[i]
		matched := false
		for j, cand := range pending {
			if !cand.Table.Box.Inside(br.Box, p.RegionTolerance) {
				continue
			}
			candFields, err := p.regionText(ctx, img, cand.Table.Box, pool)
			if err != nil {
				return nil, err
			}
			brCells, brScore, _ := text.AttachCellsText(br.Cells(), candFields, p.CellTolerance)

			adopted := false
			if tables.AdoptLineSnapped(brScore, cand.Score, br.CellCount(), cand.CellCount()) {
				st, err := p.Builder.LineSnappedWithCells(br, brCells)
				if err != nil {
					p.logger().Warn("line-snapped construction failed",
						"page", in.PageNum, "region", br.Box, "error", err)
				} else {
					final = append(final, tables.Reconstruction{
						Strategy: tables.LineSnapped,
						Score:    brScore,
						Table:    st,
					})
					adopted = true
				}
			}
			if !adopted {
				final = append(final, cand)
			}
			// The candidate leaves the pending set whether or not
			// the line-snapped form won.
			pending = append(pending[:j], pending[j+1:]...)
			matched = true
			break
		}
		if matched {
			continue
		}

		brFields, err := p.regionText(ctx, img, br.Box, pool)
		if err != nil {
			return nil, err
		}
		brCells, brScore, _ := text.AttachCellsText(br.Cells(), brFields, p.CellTolerance)
		st, err := p.Builder.LineSnappedWithCells(br, brCells)
		if err != nil {
			p.logger().Warn("line-snapped construction failed",
				"page", in.PageNum, "region", br.Box, "error", err)
			continue
		}
		final = append(final, tables.Reconstruction{
			Strategy: tables.LineSnapped,
			Score:    brScore,
			Table:    st,
		})
	}
	return append(final, pending...), nil
}

// fillCellGaps resolves cells that still have no usable text with one
// scoped recognition pass per cell.
func (p *Processor) fillCellGaps(ctx context.Context, imagePath string, recs []tables.Reconstruction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.withRecognizer(imagePath, false, func(rec Recognizer) error {
		for _, r := range recs {
			for i := range r.Table.Cells {
				cell := &r.Table.Cells[i]
				if !needsText(cell.Cell) {
					continue
				}
				b := cell.Box
				extracted, err := rec.Extract(b.X1, b.Y1, b.Width(), b.Height())
				if err != nil {
					return fmt.Errorf("cell recognition at %v: %w", b, err)
				}
				cell.TextFields = append(cell.TextFields, model.TextField{
					Box:  b,
					Text: text.Normalize(extracted),
				})
			}
		}
		return nil
	})
}

// needsText reports whether a cell has no fragments or carries an
// empty fragment.
func needsText(c model.Cell) bool {
	if len(c.TextFields) == 0 {
		return true
	}
	for _, f := range c.TextFields {
		if f.Text == "" {
			return true
		}
	}
	return false
}

// recoverResidualText recognizes the horizontal bands between table
// extents in sparse mode and emits them as free-text blocks.
func (p *Processor) recoverResidualText(ctx context.Context, imagePath string, page *model.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	borders := []int{1}
	for _, t := range page.Tables {
		borders = append(borders, t.Box.Y1, t.Box.Y2)
	}
	borders = append(borders, page.Box.Y2)

	var bands []model.Box
	for i := 0; i+1 < len(borders); i += 2 {
		if borders[i+1]-borders[i] > p.MinBandHeight {
			bands = append(bands, model.Box{
				X1: 1,
				Y1: borders[i],
				X2: page.Box.X2,
				Y2: borders[i+1],
			})
		}
	}
	if len(bands) == 0 {
		return nil
	}

	return p.withRecognizer(imagePath, true, func(rec Recognizer) error {
		for _, b := range bands {
			extracted, err := rec.Extract(b.X1, b.Y1, b.Width(), b.Height())
			if err != nil {
				return fmt.Errorf("band recognition at %v: %w", b, err)
			}
			if extracted = text.Normalize(extracted); extracted != "" {
				page.Text = append(page.Text, model.TextField{Box: b, Text: extracted})
			}
		}
		return nil
	})
}

// withRecognizer opens a scoped recognition handle for one phase and
// guarantees release. A factory reporting ocr.ErrOCRNotEnabled skips
// the phase silently.
func (p *Processor) withRecognizer(imagePath string, sparse bool, fn func(Recognizer) error) error {
	open := p.Recognizer
	if open == nil {
		open = OpenRecognizer
	}
	rec, err := open(imagePath)
	if errors.Is(err, ocr.ErrOCRNotEnabled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open recognizer: %w", err)
	}
	defer rec.Close()

	if sparse {
		if err := rec.SetSparse(); err != nil {
			return fmt.Errorf("set sparse recognition: %w", err)
		}
	}
	return fn(rec)
}

func (p *Processor) collector() diag.Collector {
	if p.Diag != nil {
		return p.Diag
	}
	return diag.Nop{}
}

func (p *Processor) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

func regionBoxes(regions []model.TableRegion) []model.Box {
	out := make([]model.Box, len(regions))
	for i, r := range regions {
		out[i] = r.Box
	}
	return out
}

func tableBoxes(page *model.Page) []model.Box {
	out := make([]model.Box, len(page.Tables))
	for i, t := range page.Tables {
		out[i] = t.Box
	}
	return out
}
