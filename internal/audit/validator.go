// Package audit reports documentation gaps in the tables selected for a
// data dictionary.
package audit

import (
	"sort"

	"github.com/alexanderjulianmartinez/datadict/internal/source"
)

type Issue struct {
	Table    string `json:"table" yaml:"table"`
	Column   string `json:"column,omitempty" yaml:"column,omitempty"`
	Kind     string `json:"kind" yaml:"kind"`
	Severity string `json:"severity" yaml:"severity"`
	Message  string `json:"message" yaml:"message"`
}

type Report struct {
	Schema string  `json:"schema" yaml:"schema"`
	Tables int     `json:"tables" yaml:"tables"`
	Issues []Issue `json:"issues" yaml:"issues"`
}

func newIssue(kind, table, column string) Issue {
	return Issue{
		Table:    table,
		Column:   column,
		Kind:     kind,
		Severity: SeverityForChange(kind),
		Message:  MessageForChange(kind, table, column),
	}
}

// Validate checks the inspected tables. Findings are ordered by severity,
// most severe first, then by table order.
func Validate(result *source.InspectionResult) *Report {
	report := &Report{Schema: result.Schema, Tables: len(result.Tables)}

	for _, name := range result.Missing {
		report.Issues = append(report.Issues, newIssue(KindTableMissing, name, ""))
	}

	for _, table := range result.Tables {
		hasPK := false
		for _, c := range table.Columns {
			if c.Key == source.KeyPrimary {
				hasPK = true
				break
			}
		}
		if !hasPK {
			report.Issues = append(report.Issues, newIssue(KindNoPrimaryKey, table.Name, ""))
		}
		if table.Comment == "" {
			report.Issues = append(report.Issues, newIssue(KindTableCommentMissing, table.Name, ""))
		}
		for _, c := range table.Columns {
			if c.Comment == "" {
				report.Issues = append(report.Issues, newIssue(KindColumnCommentMissing, table.Name, c.Name))
			}
		}
	}

	sort.SliceStable(report.Issues, func(i, j int) bool {
		return rank(report.Issues[i].Severity) > rank(report.Issues[j].Severity)
	})
	return report
}

// Blocking reports whether any issue has BLOCK severity.
func (r *Report) Blocking() bool {
	for _, iss := range r.Issues {
		if iss.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Count returns the number of issues with the given severity.
func (r *Report) Count(severity string) int {
	n := 0
	for _, iss := range r.Issues {
		if iss.Severity == severity {
			n++
		}
	}
	return n
}
