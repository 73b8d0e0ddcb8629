// Package dictionary lays out table metadata as a data dictionary and
// renders it to a .docx document.
package dictionary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderjulianmartinez/datadict/internal/source"
)

// Dictionary is the positional model of one document: a summary table
// followed by one detail block per table, both in input order.
type Dictionary struct {
	Labels  Labels
	Summary []SummaryRow
	Blocks  []Block
}

type SummaryRow struct {
	Table   string
	Comment string
}

// Block is the detail table for one database table. The four header rows
// (name, primary key, other sort fields, index fields) each hold a label
// and one merged value cell.
type Block struct {
	Number        int
	Table         string
	PrimaryKey    string
	OtherSortKeys string
	IndexFields   string
	Rows          []ColumnRow
}

// ColumnRow is one column line of a detail block, already formatted.
type ColumnRow struct {
	Seq      string
	Name     string
	Type     string
	Nullable string
	Unique   string
	Comment  string
}

// Layout builds the dictionary model for tables in the given order.
func Layout(tables []source.TableSchema, labels Labels) *Dictionary {
	d := &Dictionary{
		Labels:  labels,
		Summary: make([]SummaryRow, 0, len(tables)),
		Blocks:  make([]Block, 0, len(tables)),
	}
	for i, t := range tables {
		d.Summary = append(d.Summary, SummaryRow{Table: t.Name, Comment: t.Comment})
		d.Blocks = append(d.Blocks, layoutBlock(i+1, t, labels))
	}
	return d
}

func layoutBlock(n int, t source.TableSchema, labels Labels) Block {
	b := Block{
		Number: n,
		Table:  t.Name,
		Rows:   make([]ColumnRow, 0, len(t.Columns)),
	}

	var pk, idx []string
	for i, c := range t.Columns {
		if c.Key == source.KeyPrimary {
			pk = append(pk, c.Name)
		}
		if c.Unique() {
			idx = append(idx, c.Name)
		}
		b.Rows = append(b.Rows, ColumnRow{
			Seq:      strconv.Itoa(i + 1),
			Name:     c.Name,
			Type:     c.Type,
			Nullable: labels.yesNo(c.Nullable),
			Unique:   labels.yesNo(c.Unique()),
			Comment:  c.Comment,
		})
	}
	b.PrimaryKey = strings.Join(pk, ",")
	b.IndexFields = strings.Join(idx, ",")
	return b
}

// Heading returns the numbered paragraph text shown above the block.
func (b Block) Heading(labels Labels) string {
	return fmt.Sprintf(labels.BlockNumber, b.Number)
}

// ColumnCount returns the total number of column rows across all blocks.
func (d *Dictionary) ColumnCount() int {
	n := 0
	for _, b := range d.Blocks {
		n += len(b.Rows)
	}
	return n
}
