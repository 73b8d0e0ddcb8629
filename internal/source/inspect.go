package source

import (
	"context"
)

// Inspect loads the named tables and their columns. Tables come back in the
// order of names; names that are not base tables in schema are collected in
// Missing instead of being dropped.
func Inspect(ctx context.Context, r Reader, schema string, names []string) (*InspectionResult, error) {
	tables, err := r.ListTables(ctx, schema, TableFilter{Include: names})
	if err != nil {
		return nil, err
	}

	byName := make(map[string]TableInfo, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	result := &InspectionResult{Schema: schema}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		info, ok := byName[name]
		if !ok {
			result.Missing = append(result.Missing, name)
			continue
		}

		cols, err := r.ListColumns(ctx, schema, name, nil)
		if err != nil {
			return nil, err
		}
		result.Tables = append(result.Tables, TableSchema{
			TableInfo: info,
			Columns:   cols,
		})
	}
	return result, nil
}

// Names returns the table names in order.
func Names(tables []TableInfo) []string {
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	return names
}
