package audit

// Centralized severity and message helpers for dictionary findings.
// Rules:
// - BLOCK when the dictionary cannot be produced
// - WARN for tables whose documentation is structurally incomplete
// - INFO for missing comments

const (
	SeverityInfo  = "INFO"
	SeverityWarn  = "WARN"
	SeverityBlock = "BLOCK"
)

// Finding kinds.
const (
	KindTableMissing         = "table_missing"
	KindNoPrimaryKey         = "no_primary_key"
	KindTableCommentMissing  = "table_comment_missing"
	KindColumnCommentMissing = "column_comment_missing"
)

func SeverityForChange(kind string) string {
	switch kind {
	case KindTableMissing:
		return SeverityBlock
	case KindNoPrimaryKey:
		return SeverityWarn
	default:
		return SeverityInfo
	}
}

// MessageForChange returns a concise message for the given finding kind.
func MessageForChange(kind, table, column string) string {
	switch kind {
	case KindTableMissing:
		return "not a base table in the schema"
	case KindNoPrimaryKey:
		return "table has no primary key"
	case KindTableCommentMissing:
		return "table comment is empty"
	case KindColumnCommentMissing:
		return "column " + column + " has no comment"
	default:
		return ""
	}
}

// rank orders severities for sorting and exit decisions.
func rank(severity string) int {
	switch severity {
	case SeverityBlock:
		return 2
	case SeverityWarn:
		return 1
	default:
		return 0
	}
}
