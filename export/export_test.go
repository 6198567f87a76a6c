package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/tablefuse/tablefuse/model"
)

func linked(row, col, rowSpan, colSpan int, text string) model.LinkedCell {
	box := model.Box{X1: col * 100, Y1: row * 50, X2: (col + colSpan) * 100, Y2: (row + rowSpan) * 50}
	c := model.Cell{Box: box}
	if text != "" {
		c.TextFields = []model.TextField{{Box: box, Text: text}}
	}
	return model.LinkedCell{Cell: c, Row: row, Col: col, RowSpan: rowSpan, ColSpan: colSpan}
}

func samplePage() *model.Page {
	page := model.NewPage(4, 1000, 1500)
	st := &model.StructuredTable{
		Box: model.Box{X1: 0, Y1: 0, X2: 200, Y2: 100},
		Cells: []model.LinkedCell{
			linked(0, 0, 1, 2, "Title"),
			linked(1, 0, 1, 1, "a"),
			linked(1, 1, 1, 1, "b"),
		},
	}
	ht := model.NewHeaderedTable(st, st.Rows()[:1])
	page.Tables = append(page.Tables, ht)
	page.Text = append(page.Text, model.TextField{
		Box:  model.Box{X1: 0, Y1: 200, X2: 500, Y2: 230},
		Text: "a paragraph below the table",
	})
	return page
}

func TestPageToDocument(t *testing.T) {
	doc := PageToDocument(samplePage())
	if doc.PageNum != 4 {
		t.Errorf("page_num = %d, want 4", doc.PageNum)
	}
	if doc.BBox != (BBoxDict{Left: 0, Top: 0, Width: 1000, Height: 1500}) {
		t.Errorf("page bbox = %+v", doc.BBox)
	}
	if len(doc.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(doc.Blocks))
	}

	table := doc.Blocks[0]
	if !table.IsTable() {
		t.Fatal("first block should be the table")
	}
	if len(table.Header) != 1 || table.Header[0].Text != "Title" {
		t.Errorf("header = %+v", table.Header)
	}
	if len(table.Cells) != 2 {
		t.Errorf("body cells = %d, want 2", len(table.Cells))
	}
	if table.Header[0].ColSpan != 2 {
		t.Errorf("header colspan = %d, want 2", table.Header[0].ColSpan)
	}

	textBlock := doc.Blocks[1]
	if textBlock.IsTable() || textBlock.Text != "a paragraph below the table" {
		t.Errorf("text block = %+v", textBlock)
	}
}

func TestBlock_KeysDiscriminateTableAndText(t *testing.T) {
	page := model.NewPage(2, 1000, 1500)
	st := &model.StructuredTable{
		Box: model.Box{X1: 0, Y1: 0, X2: 200, Y2: 50},
		Cells: []model.LinkedCell{
			linked(0, 0, 1, 1, "a"),
			linked(0, 1, 1, 1, "b"),
		},
	}
	// No inferred header rows: the common case.
	page.Tables = append(page.Tables, model.NewHeaderedTable(st, nil))
	page.Text = append(page.Text, model.TextField{
		Box:  model.Box{X1: 0, Y1: 100, X2: 300, Y2: 130},
		Text: "free text",
	})

	data, err := json.Marshal(PageToDocument(page))
	if err != nil {
		t.Fatal(err)
	}
	var raw struct {
		Blocks []map[string]json.RawMessage `json:"blocks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if len(raw.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(raw.Blocks))
	}

	table := raw.Blocks[0]
	header, ok := table["header"]
	if !ok {
		t.Fatal("headerless table block is missing the header key")
	}
	if string(header) != "[]" {
		t.Errorf("header = %s, want []", header)
	}
	if _, ok := table["cells"]; !ok {
		t.Error("table block is missing the cells key")
	}
	if _, ok := table["text"]; ok {
		t.Error("table block should not carry a text key")
	}

	text := raw.Blocks[1]
	if _, ok := text["header"]; ok {
		t.Error("text block should not carry a header key")
	}
	if _, ok := text["cells"]; ok {
		t.Error("text block should not carry a cells key")
	}
	if _, ok := text["text"]; !ok {
		t.Error("text block is missing the text key")
	}
}

func TestBlock_GridSizeRoundTrip(t *testing.T) {
	doc := PageToDocument(samplePage())
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}

	rows, cols := back.Blocks[0].GridSize()
	if rows != 2 || cols != 2 {
		t.Errorf("grid size after round trip = %dx%d, want 2x2", rows, cols)
	}
}

func TestDocument_EmptyBlocksIsValid(t *testing.T) {
	doc := PageToDocument(model.NewPage(1, 800, 600))
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["blocks"]) != "[]" {
		t.Errorf("blocks = %s, want []", raw["blocks"])
	}
}

func TestDocument_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pages", "4.json")
	if err := PageToDocument(samplePage()).Write(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("written document is not valid JSON: %v", err)
	}
	if back.PageNum != 4 {
		t.Errorf("page_num after write = %d", back.PageNum)
	}
}
