package source

import "context"

// KeyKind classifies a column's participation in keys, as reported by the catalog.
type KeyKind int

const (
	KeyNone KeyKind = iota
	KeyPrimary
	KeyOther
)

func (k KeyKind) String() string {
	switch k {
	case KeyPrimary:
		return "PRI"
	case KeyOther:
		return "KEY"
	default:
		return ""
	}
}

func (k KeyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KeyKindFromColumnKey maps an information_schema COLUMN_KEY value
// (PRI, UNI, MUL or empty) to a KeyKind.
func KeyKindFromColumnKey(key string) KeyKind {
	switch key {
	case "":
		return KeyNone
	case "PRI":
		return KeyPrimary
	default:
		return KeyOther
	}
}

type TableInfo struct {
	Name    string `json:"name" yaml:"name"`
	Comment string `json:"comment" yaml:"comment"`
}

type ColumnInfo struct {
	Name     string  `json:"name" yaml:"name"`
	Type     string  `json:"type" yaml:"type"`
	Nullable bool    `json:"nullable" yaml:"nullable"`
	Key      KeyKind `json:"key" yaml:"key"`
	Comment  string  `json:"comment" yaml:"comment"`
}

// Unique reports whether the column takes part in any key.
func (c ColumnInfo) Unique() bool {
	return c.Key != KeyNone
}

// TableSchema is a table together with its columns in catalog order.
type TableSchema struct {
	TableInfo `yaml:",inline"`
	Columns   []ColumnInfo `json:"columns" yaml:"columns"`
}

// InspectionResult holds the tables loaded for one export or audit, in request order.
type InspectionResult struct {
	Schema  string
	Tables  []TableSchema
	Missing []string
}

// TableFilter narrows ListTables. Contains is a case-sensitive substring
// match; Include restricts the result to the named tables.
type TableFilter struct {
	Contains string
	Include  []string
}

// Reader reads table and column metadata from a database catalog.
type Reader interface {
	Driver() string
	Ping(ctx context.Context) error
	ListTables(ctx context.Context, schema string, filter TableFilter) ([]TableInfo, error)
	ListColumns(ctx context.Context, schema, table string, exclude []string) ([]ColumnInfo, error)
	Close() error
}
