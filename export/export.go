// Package export maps the in-memory page model to the persisted
// schema: one JSON document per page, holding table blocks and
// free-text blocks in page order. The mapping is deterministic and
// side-effect-free aside from the final file emission.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tablefuse/tablefuse/model"
)

// BBoxDict is the persisted form of a box.
type BBoxDict struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CellDict is the persisted form of a linked cell. Text is the
// space-joined concatenation of the cell's fragments ordered by
// (top, left).
type CellDict struct {
	Row     int      `json:"row"`
	Column  int      `json:"column"`
	RowSpan int      `json:"rowspan"`
	ColSpan int      `json:"colspan"`
	BBox    BBoxDict `json:"bbox"`
	Text    string   `json:"text"`
}

// Block is either a table block (Header and Cells set) or a text
// block (Text set). Table blocks always serialize with both the
// header and cells keys, as empty lists when nothing landed in them;
// text blocks carry neither.
type Block struct {
	BBox   BBoxDict   `json:"bbox"`
	Header []CellDict `json:"header"`
	Cells  []CellDict `json:"cells"`
	Text   string     `json:"text,omitempty"`
}

// IsTable reports whether the block is a table block.
func (b Block) IsTable() bool {
	return len(b.Cells) > 0 || b.Header != nil
}

// MarshalJSON emits the table form {bbox, header, cells} or the text
// form {bbox, text}. Consumers discriminate the two by key presence,
// so a headerless table still carries "header": [].
func (b Block) MarshalJSON() ([]byte, error) {
	if b.IsTable() {
		header := b.Header
		if header == nil {
			header = []CellDict{}
		}
		cells := b.Cells
		if cells == nil {
			cells = []CellDict{}
		}
		return json.Marshal(struct {
			BBox   BBoxDict   `json:"bbox"`
			Header []CellDict `json:"header"`
			Cells  []CellDict `json:"cells"`
		}{b.BBox, header, cells})
	}
	return json.Marshal(struct {
		BBox BBoxDict `json:"bbox"`
		Text string   `json:"text"`
	}{b.BBox, b.Text})
}

// Document is the persisted page schema.
type Document struct {
	PageNum int      `json:"page_num"`
	BBox    BBoxDict `json:"bbox"`
	Blocks  []Block  `json:"blocks"`
}

func boxToDict(b model.Box) BBoxDict {
	return BBoxDict{Left: b.X1, Top: b.Y1, Width: b.Width(), Height: b.Height()}
}

func cellToDict(c model.LinkedCell) CellDict {
	return CellDict{
		Row:     c.Row,
		Column:  c.Col,
		RowSpan: c.RowSpan,
		ColSpan: c.ColSpan,
		BBox:    boxToDict(c.Cell.Box),
		Text:    c.Cell.Text(),
	}
}

func tableToBlock(t *model.HeaderedTable) Block {
	block := Block{
		BBox:   boxToDict(t.Box),
		Header: make([]CellDict, 0, len(t.Header)),
		Cells:  make([]CellDict, 0, len(t.Cells)),
	}
	for _, c := range t.Header {
		block.Header = append(block.Header, cellToDict(c))
	}
	for _, c := range t.Cells {
		block.Cells = append(block.Cells, cellToDict(c))
	}
	return block
}

// PageToDocument converts a finalized page to the persisted schema.
// Table blocks come first, then free-text blocks, each in page order.
// An empty blocks list is valid output for a page without content.
func PageToDocument(p *model.Page) *Document {
	doc := &Document{
		PageNum: p.PageNum,
		BBox:    boxToDict(p.Box),
		Blocks:  make([]Block, 0, len(p.Tables)+len(p.Text)),
	}
	for _, t := range p.Tables {
		doc.Blocks = append(doc.Blocks, tableToBlock(t))
	}
	for _, tf := range p.Text {
		doc.Blocks = append(doc.Blocks, Block{
			BBox: boxToDict(tf.Box),
			Text: tf.Text,
		})
	}
	return doc
}

// GridSize derives the row and column counts of a table block from
// its cell list, spans applied. Serializing a table and re-deriving
// its grid size reproduces the original dimensions.
func (b Block) GridSize() (rows, cols int) {
	all := make([]CellDict, 0, len(b.Header)+len(b.Cells))
	all = append(all, b.Header...)
	all = append(all, b.Cells...)
	for _, c := range all {
		if c.Row+c.RowSpan > rows {
			rows = c.Row + c.RowSpan
		}
		if c.Column+c.ColSpan > cols {
			cols = c.Column + c.ColSpan
		}
	}
	return rows, cols
}

// Write serializes the document to path, creating parent directories
// as needed.
func (d *Document) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal page %d: %w", d.PageNum, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write page %d: %w", d.PageNum, err)
	}
	return nil
}
