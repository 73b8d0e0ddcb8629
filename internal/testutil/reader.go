package testutil

import (
	"context"

	"github.com/alexanderjulianmartinez/datadict/internal/source"
)

// FakeReader is an in-memory source.Reader. Tables are returned in slice
// order, the way a catalog returns rows without ORDER BY.
type FakeReader struct {
	Tables  []source.TableSchema
	PingErr error
	ListErr error
	Closed  bool

	// Calls records "tables" and "columns:<table>" in call order.
	Calls []string
}

// UsersOrders returns the two-table schema used across the test suites:
// users(id PK, name) and orders(id PK, user_id indexed).
func UsersOrders() []source.TableSchema {
	return []source.TableSchema{
		{
			TableInfo: source.TableInfo{Name: "users", Comment: "registered users"},
			Columns: []source.ColumnInfo{
				{Name: "id", Type: "bigint(20)", Key: source.KeyPrimary, Comment: "user id"},
				{Name: "name", Type: "varchar(64)", Nullable: true, Comment: "display name"},
			},
		},
		{
			TableInfo: source.TableInfo{Name: "orders", Comment: "customer orders"},
			Columns: []source.ColumnInfo{
				{Name: "id", Type: "bigint(20)", Key: source.KeyPrimary, Comment: "order id"},
				{Name: "user_id", Type: "bigint(20)", Key: source.KeyOther, Comment: "owner"},
			},
		},
	}
}

func (f *FakeReader) Driver() string { return "fake" }

func (f *FakeReader) Ping(context.Context) error { return f.PingErr }

func (f *FakeReader) ListTables(_ context.Context, schema string, filter source.TableFilter) ([]source.TableInfo, error) {
	f.Calls = append(f.Calls, "tables")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	if schema == "" {
		return nil, &source.QueryError{Op: "list tables", Err: source.ErrEmptySchema}
	}
	var out []source.TableInfo
	for _, t := range f.Tables {
		out = append(out, t.TableInfo)
	}
	return filter.Apply(out), nil
}

func (f *FakeReader) ListColumns(_ context.Context, _ string, table string, exclude []string) ([]source.ColumnInfo, error) {
	f.Calls = append(f.Calls, "columns:"+table)
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	for _, t := range f.Tables {
		if t.Name != table {
			continue
		}
		var cols []source.ColumnInfo
		for _, c := range t.Columns {
			if !skip[c.Name] {
				cols = append(cols, c)
			}
		}
		return cols, nil
	}
	return nil, nil
}

func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
