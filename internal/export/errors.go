package export

import (
	"errors"
	"fmt"
)

var (
	ErrNoTables          = errors.New("no tables selected")
	ErrOutputExists      = errors.New("output file already exists")
	ErrOverwriteDeclined = errors.New("overwrite declined")
	ErrMissingTables     = errors.New("tables not found in schema")
)

// ExportError is the single error returned by a failed export. Op names
// the stage that failed: select, output, inspect, render or save.
type ExportError struct {
	Op  string
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Op, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
