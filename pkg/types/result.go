package types

import "time"

// ExportResult summarizes one written data dictionary.
type ExportResult struct {
	RunID    string        `json:"run_id" yaml:"run_id"`
	Path     string        `json:"path" yaml:"path"`
	Tables   int           `json:"tables" yaml:"tables"`
	Columns  int           `json:"columns" yaml:"columns"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// TableListing is one row of a table listing.
type TableListing struct {
	Name    string `json:"name" yaml:"name"`
	Comment string `json:"comment" yaml:"comment"`
}
