package audit

import (
	"testing"

	"github.com/alexanderjulianmartinez/datadict/internal/source"
)

func table(name, comment string, cols ...source.ColumnInfo) source.TableSchema {
	return source.TableSchema{TableInfo: source.TableInfo{Name: name, Comment: comment}, Columns: cols}
}

func find(rep *Report, kind, tbl, column string) *Issue {
	for i, iss := range rep.Issues {
		if iss.Kind == kind && iss.Table == tbl && iss.Column == column {
			return &rep.Issues[i]
		}
	}
	return nil
}

func TestTableMissing(t *testing.T) {
	res := &source.InspectionResult{Schema: "shop", Missing: []string{"ghost"}}
	rep := Validate(res)
	iss := find(rep, KindTableMissing, "ghost", "")
	if iss == nil {
		t.Fatalf("expected table_missing issue for ghost, got %v", rep.Issues)
	}
	if iss.Severity != SeverityBlock {
		t.Fatalf("expected BLOCK, got %s", iss.Severity)
	}
	if !rep.Blocking() {
		t.Fatalf("expected report to be blocking")
	}
}

func TestNoPrimaryKey(t *testing.T) {
	res := &source.InspectionResult{Tables: []source.TableSchema{
		table("events", "audit events", source.ColumnInfo{Name: "payload", Type: "json", Comment: "body", Key: source.KeyOther}),
	}}
	rep := Validate(res)
	iss := find(rep, KindNoPrimaryKey, "events", "")
	if iss == nil {
		t.Fatalf("expected no_primary_key issue, got %v", rep.Issues)
	}
	if iss.Severity != SeverityWarn {
		t.Fatalf("expected WARN, got %s", iss.Severity)
	}
	if rep.Blocking() {
		t.Fatalf("a missing primary key must not block")
	}
}

func TestMissingComments(t *testing.T) {
	res := &source.InspectionResult{Tables: []source.TableSchema{
		table("users", "",
			source.ColumnInfo{Name: "id", Key: source.KeyPrimary, Comment: "user id"},
			source.ColumnInfo{Name: "name"},
		),
	}}
	rep := Validate(res)
	if find(rep, KindTableCommentMissing, "users", "") == nil {
		t.Fatalf("expected table_comment_missing, got %v", rep.Issues)
	}
	iss := find(rep, KindColumnCommentMissing, "users", "name")
	if iss == nil {
		t.Fatalf("expected column_comment_missing for name, got %v", rep.Issues)
	}
	if iss.Message != "column name has no comment" {
		t.Fatalf("unexpected message %q", iss.Message)
	}
	if find(rep, KindColumnCommentMissing, "users", "id") != nil {
		t.Fatalf("did not expect an issue for documented column id")
	}
	if got := rep.Count(SeverityInfo); got != 2 {
		t.Fatalf("expected 2 INFO issues, got %d", got)
	}
}

func TestCleanTable(t *testing.T) {
	res := &source.InspectionResult{Tables: []source.TableSchema{
		table("users", "registered users", source.ColumnInfo{Name: "id", Key: source.KeyPrimary, Comment: "user id"}),
	}}
	rep := Validate(res)
	if len(rep.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", rep.Issues)
	}
	if rep.Tables != 1 {
		t.Fatalf("expected 1 table, got %d", rep.Tables)
	}
}

func TestIssuesOrderedBySeverity(t *testing.T) {
	res := &source.InspectionResult{
		Tables:  []source.TableSchema{table("logs", "", source.ColumnInfo{Name: "line"})},
		Missing: []string{"ghost"},
	}
	rep := Validate(res)
	want := []string{SeverityBlock, SeverityWarn, SeverityInfo, SeverityInfo}
	if len(rep.Issues) != len(want) {
		t.Fatalf("expected %d issues, got %v", len(want), rep.Issues)
	}
	for i, sev := range want {
		if rep.Issues[i].Severity != sev {
			t.Fatalf("issue %d: expected %s, got %s (%v)", i, sev, rep.Issues[i].Severity, rep.Issues)
		}
	}
}
