package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/alexanderjulianmartinez/datadict/internal/audit"
	"github.com/alexanderjulianmartinez/datadict/internal/source"
	"github.com/alexanderjulianmartinez/datadict/pkg/types"
)

// render writes v as JSON or YAML, or calls text for the text format.
func render(w io.Writer, format string, v any, text func(io.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(w)
		return nil
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderTables(w io.Writer, tables []types.TableListing) {
	if len(tables) == 0 {
		_, _ = fmt.Fprintln(w, "(0 tables)")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Table", "Comment"})
	for i, tbl := range tables {
		t.AppendRow(table.Row{i + 1, tbl.Name, tbl.Comment})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d tables)\n", len(tables))
}

func renderColumns(w io.Writer, cols []source.ColumnInfo) {
	if len(cols) == 0 {
		_, _ = fmt.Fprintln(w, "(0 columns)")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Column", "Type", "Nullable", "Key", "Comment"})
	for i, c := range cols {
		t.AppendRow(table.Row{i + 1, c.Name, c.Type, yn(c.Nullable), c.Key.String(), c.Comment})
	}
	t.Render()
}

func renderReport(w io.Writer, rep *audit.Report) {
	if len(rep.Issues) == 0 {
		_, _ = fmt.Fprintf(w, "%d tables checked, no issues\n", rep.Tables)
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Severity", "Table", "Column", "Issue"})
	for _, iss := range rep.Issues {
		t.AppendRow(table.Row{iss.Severity, iss.Table, iss.Column, iss.Message})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "%d tables checked: %d block, %d warn, %d info\n",
		rep.Tables, rep.Count(audit.SeverityBlock), rep.Count(audit.SeverityWarn), rep.Count(audit.SeverityInfo))
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
