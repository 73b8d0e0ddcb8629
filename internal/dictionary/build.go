package dictionary

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fumiama/go-docx"
)

// Column widths of a detail block in twips (567 per cm). The original
// layout fixes columns 0, 1, 3 and 4; the two free columns share the rest
// of a 15cm text area.
var detailWidths = []int64{850, 1417, 2268, 850, 850, 2268}

const headerRows = 4

// Options control rendering.
type Options struct {
	// TemplatePath names a .docx whose styles, page setup and existing body
	// are kept. Generated content goes before its final section properties.
	TemplatePath string
	// TableStyle is applied to every generated table when set. It must name
	// a table style defined by the template.
	TableStyle string
}

// SaveError reports a document that could not be written.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// Document is a rendered dictionary ready to be saved.
type Document struct {
	file *docx.Docx
}

// Build renders d into a new document.
func Build(d *Dictionary, opts Options) (*Document, error) {
	f, err := openBase(opts.TemplatePath)
	if err != nil {
		return nil, err
	}

	tail := detachSections(f)
	r := renderer{f: f, labels: d.Labels, style: opts.TableStyle}
	r.summary(d.Summary)
	for _, b := range d.Blocks {
		r.block(b)
	}
	f.Document.Body.Items = append(f.Document.Body.Items, tail...)

	return &Document{file: f}, nil
}

func openBase(path string) (*docx.Docx, error) {
	if path == "" {
		return docx.New().WithDefaultTheme().WithA4Page(), nil
	}
	// Parse keeps reading template parts from the archive until the
	// document is written, so the archive stays in memory.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	f, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", path, err)
	}
	return f, nil
}

// detachSections removes section properties from the body and returns them.
func detachSections(f *docx.Docx) []interface{} {
	var kept, tail []interface{}
	for _, item := range f.Document.Body.Items {
		if _, ok := item.(*docx.SectPr); ok {
			tail = append(tail, item)
			continue
		}
		kept = append(kept, item)
	}
	f.Document.Body.Items = kept
	return tail
}

// WriteTo writes the document as a .docx archive.
func (doc *Document) WriteTo(w io.Writer) (int64, error) {
	return doc.file.WriteTo(w)
}

// Save writes the document to path, replacing any existing file.
func (doc *Document) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &SaveError{Path: path, Err: err}
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}
	if _, err := doc.WriteTo(out); err != nil {
		_ = out.Close()
		return &SaveError{Path: path, Err: err}
	}
	if err := out.Close(); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	return nil
}

type renderer struct {
	f      *docx.Docx
	labels Labels
	style  string
}

func (r renderer) paragraph(text string) *docx.Paragraph {
	p := r.f.AddParagraph()
	if text != "" {
		r.text(p, text)
	}
	return p
}

func (r renderer) text(p *docx.Paragraph, s string) {
	run := p.AddText(s)
	if r.labels.Font != "" {
		run.Font(r.labels.Font, r.labels.Font, r.labels.Font, "eastAsia")
	}
}

func (r renderer) cell(c *docx.WTableCell, s string) {
	r.text(c.AddParagraph(), s)
}

func (r renderer) styled(t *docx.Table) *docx.Table {
	if r.style != "" {
		t.TableProperties.Style = &docx.WTableStyle{Val: r.style}
	}
	return t.Justification("center")
}

func (r renderer) summary(rows []SummaryRow) {
	r.paragraph(r.labels.SummaryHeading)

	t := r.styled(r.f.AddTable(len(rows)+1, 2, 0, nil))
	r.cell(t.TableRows[0].TableCells[0], r.labels.TableName)
	r.cell(t.TableRows[0].TableCells[1], r.labels.TableComment)
	for i, row := range rows {
		cells := t.TableRows[i+1].TableCells
		r.cell(cells[0], row.Table)
		r.cell(cells[1], row.Comment)
	}

	r.paragraph("")
	r.paragraph(r.labels.DetailHeading)
}

func (r renderer) block(b Block) {
	r.paragraph(b.Heading(r.labels))

	heights := make([]int64, headerRows+1+len(b.Rows))
	t := r.styled(r.f.AddTableTwips(heights, detailWidths, 0, nil))

	header := [headerRows][2]string{
		{r.labels.TableName, b.Table},
		{r.labels.PrimaryKey, b.PrimaryKey},
		{r.labels.OtherSortKeys, b.OtherSortKeys},
		{r.labels.IndexFields, b.IndexFields},
	}
	for i, h := range header {
		row := t.TableRows[i]
		merged := row.TableCells[1]
		merged.TableCellProperties.GridSpan = &docx.WGridSpan{Val: len(detailWidths) - 1}
		merged.TableCellProperties.TableCellWidth.W = sum(detailWidths[1:])
		row.TableCells = row.TableCells[:2]
		r.cell(row.TableCells[0], h[0])
		r.cell(merged, h[1])
	}

	titles := []string{r.labels.Seq, r.labels.Column, r.labels.DataType, r.labels.Nullable, r.labels.Unique, r.labels.Remark}
	for j, s := range titles {
		r.cell(t.TableRows[headerRows].TableCells[j], s)
	}

	for i, c := range b.Rows {
		cells := t.TableRows[headerRows+1+i].TableCells
		for j, s := range []string{c.Seq, c.Name, c.Type, c.Nullable, c.Unique, c.Comment} {
			r.cell(cells[j], s)
		}
	}

	r.paragraph("")
}

func sum(ws []int64) int64 {
	var n int64
	for _, w := range ws {
		n += w
	}
	return n
}
