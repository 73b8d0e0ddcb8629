package source

import (
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikeContains returns a LIKE pattern matching any value containing s,
// with LIKE wildcards in s escaped using the default backslash escape.
func LikeContains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// Match reports whether name passes the filter. Catalog collations may
// compare case-insensitively, so readers re-apply the filter to query results.
func (f TableFilter) Match(name string) bool {
	if f.Contains != "" && !strings.Contains(name, f.Contains) {
		return false
	}
	if len(f.Include) > 0 {
		for _, n := range f.Include {
			if n == name {
				return true
			}
		}
		return false
	}
	return true
}

// Apply keeps the tables that pass the filter, preserving order.
func (f TableFilter) Apply(tables []TableInfo) []TableInfo {
	out := tables[:0]
	for _, t := range tables {
		if f.Match(t.Name) {
			out = append(out, t)
		}
	}
	return out
}

// Placeholders returns n comma-separated bind markers produced by mark(i), i starting at start.
func Placeholders(n, start int, mark func(i int) string) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(mark(start + i))
	}
	return sb.String()
}
