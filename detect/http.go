package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"

	"github.com/tablefuse/tablefuse/model"
)

// Sidecar talks to an inference service over HTTP. The page image is
// posted as a multipart PNG and detections come back as JSON. One
// Sidecar may serve all four detector roles, or separate Sidecars may
// point at separate services.
type Sidecar struct {
	// BaseURL is the service root, without a trailing slash.
	BaseURL string

	// Client is the HTTP client used for requests. Defaults to
	// http.DefaultClient.
	Client *http.Client
}

// NewSidecar creates a Sidecar for the service at baseURL.
func NewSidecar(baseURL string) *Sidecar {
	return &Sidecar{BaseURL: baseURL, Client: http.DefaultClient}
}

var (
	_ RegionDetector     = (*Sidecar)(nil)
	_ SceneTextDetector  = (*Sidecar)(nil)
	_ BorderDetector     = (*Sidecar)(nil)
	_ SemiBorderAnalyzer = (*Sidecar)(nil)
)

type boxDTO struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (b boxDTO) box() model.Box {
	return model.Box{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2}
}

func toDTO(b model.Box) boxDTO {
	return boxDTO{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2}
}

type regionDTO struct {
	BBox       boxDTO   `json:"bbox"`
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Cells      []boxDTO `json:"cells"`
}

type fieldDTO struct {
	BBox boxDTO `json:"bbox"`
	Text string `json:"text"`
}

type bandDTO struct {
	BBox  boxDTO   `json:"bbox"`
	Cells []boxDTO `json:"cells"`
}

type borderedDTO struct {
	BBox     boxDTO    `json:"bbox"`
	RowBands []bandDTO `json:"row_bands"`
	ColBands []bandDTO `json:"col_bands"`
}

// DetectRegions posts the page image to /regions and returns the
// detected table regions in service emission order.
func (s *Sidecar) DetectRegions(ctx context.Context, img image.Image) ([]model.TableRegion, error) {
	var out []regionDTO
	if err := s.post(ctx, "/regions", img, nil, &out); err != nil {
		return nil, err
	}
	regions := make([]model.TableRegion, 0, len(out))
	for _, r := range out {
		region := model.TableRegion{
			Box:        r.BBox.box(),
			Label:      model.RegionLabel(r.Label),
			Confidence: r.Confidence,
		}
		for _, c := range r.Cells {
			region.Tags = append(region.Tags, model.Cell{Box: c.box()})
		}
		regions = append(regions, region)
	}
	return regions, nil
}

// DetectText posts the page image to /scene-text together with the
// region of interest and returns the detected text fields.
func (s *Sidecar) DetectText(ctx context.Context, img image.Image, region model.Box) ([]model.TextField, error) {
	var out []fieldDTO
	if err := s.post(ctx, "/scene-text", img, map[string]any{"region": toDTO(region)}, &out); err != nil {
		return nil, err
	}
	fields := make([]model.TextField, 0, len(out))
	for _, f := range out {
		fields = append(fields, model.TextField{Box: f.BBox.box(), Text: f.Text})
	}
	return fields, nil
}

// DetectBorders posts the page image to /borders and returns the
// bordered band structures found by line detection.
func (s *Sidecar) DetectBorders(ctx context.Context, img image.Image) ([]model.BorderedRegion, error) {
	var out []borderedDTO
	if err := s.post(ctx, "/borders", img, nil, &out); err != nil {
		return nil, err
	}
	regions := make([]model.BorderedRegion, 0, len(out))
	for _, b := range out {
		regions = append(regions, b.bordered())
	}
	return regions, nil
}

// AnalyzeRegion posts the page image and one region to /semi-bordered.
// A 204 response means the analysis found no structure and yields
// (nil, nil).
func (s *Sidecar) AnalyzeRegion(ctx context.Context, img image.Image, region model.TableRegion) (*model.BorderedRegion, error) {
	meta := map[string]any{
		"region": toDTO(region.Box),
		"label":  string(region.Label),
	}
	var out borderedDTO
	found, err := s.postOptional(ctx, "/semi-bordered", img, meta, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	b := out.bordered()
	return &b, nil
}

// CheckHealth probes the service's /health endpoint.
func (s *Sidecar) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector service unhealthy: %d", resp.StatusCode)
	}
	return nil
}

func (b borderedDTO) bordered() model.BorderedRegion {
	region := model.BorderedRegion{Box: b.BBox.box()}
	for _, rb := range b.RowBands {
		region.RowBands = append(region.RowBands, band(rb))
	}
	for _, cb := range b.ColBands {
		region.ColBands = append(region.ColBands, band(cb))
	}
	return region
}

func band(d bandDTO) model.Band {
	out := model.Band{Box: d.BBox.box()}
	for _, c := range d.Cells {
		out.Cells = append(out.Cells, model.Cell{Box: c.box()})
	}
	return out
}

func (s *Sidecar) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func (s *Sidecar) post(ctx context.Context, path string, img image.Image, meta map[string]any, out any) error {
	found, err := s.postOptional(ctx, path, img, meta, out)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("unexpected empty response from %s", path)
	}
	return nil
}

// postOptional sends the multipart request and decodes the JSON body.
// It reports false without error on 204 No Content.
func (s *Sidecar) postOptional(ctx context.Context, path string, img image.Image, meta map[string]any, out any) (bool, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "page.png")
	if err != nil {
		return false, fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
		return false, fmt.Errorf("encode page image: %w", err)
	}
	for key, val := range meta {
		encoded, err := json.Marshal(val)
		if err != nil {
			return false, fmt.Errorf("encode %s field: %w", key, err)
		}
		if err := writer.WriteField(key, string(encoded)); err != nil {
			return false, fmt.Errorf("write %s field: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return false, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client().Do(req)
	if err != nil {
		return false, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("detection failed with status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}
