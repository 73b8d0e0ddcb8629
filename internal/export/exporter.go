// Package export runs the data dictionary pipeline: read the selected
// tables, lay them out, render the document and write it to disk.
package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderjulianmartinez/datadict/internal/dictionary"
	"github.com/alexanderjulianmartinez/datadict/internal/source"
	"github.com/alexanderjulianmartinez/datadict/pkg/types"
)

// ExportRequest is built from the user's selection. Tables are rendered in
// the order given.
type ExportRequest struct {
	Tables       []string
	OutputPath   string
	Overwrite    bool
	TemplatePath string
	TableStyle   string
	Language     string
	// Dir is used with DefaultOutputPath when OutputPath is empty.
	Dir string
}

// Confirmer is asked before an existing file is replaced.
type Confirmer interface {
	ConfirmOverwrite(path string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(path string) (bool, error)

func (f ConfirmFunc) ConfirmOverwrite(path string) (bool, error) { return f(path) }

type Exporter struct {
	Reader source.Reader
	Schema string
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Run performs one export. An existing output file is replaced only when
// req.Overwrite is set or confirm agrees; with a nil confirm it is an error.
func (e *Exporter) Run(ctx context.Context, req ExportRequest, confirm Confirmer) (*types.ExportResult, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := now()
	runID := uuid.NewString()
	logger = logger.With("run_id", runID, "schema", e.Schema)

	fail := func(op string, err error) (*types.ExportResult, error) {
		logger.Error("export failed", "op", op, "error", err)
		return nil, &ExportError{Op: op, Err: err}
	}

	if len(req.Tables) == 0 {
		return fail("select", ErrNoTables)
	}

	labels, err := dictionary.LabelsFor(req.Language)
	if err != nil {
		return fail("select", err)
	}

	path := req.OutputPath
	if path == "" {
		path = DefaultOutputPath(req.Dir, req.Language, start)
	}
	path, err = ExpandHome(path)
	if err != nil {
		return fail("output", err)
	}

	if err := checkOverwrite(path, req.Overwrite, confirm); err != nil {
		if errors.Is(err, ErrOverwriteDeclined) {
			logger.Info("export cancelled", "path", path)
			return nil, &ExportError{Op: "output", Err: err}
		}
		return fail("output", err)
	}

	logger.Info("export started", "tables", len(req.Tables), "path", path)

	result, err := source.Inspect(ctx, e.Reader, e.Schema, req.Tables)
	if err != nil {
		return fail("inspect", err)
	}
	if len(result.Missing) > 0 {
		return fail("inspect", fmt.Errorf("%w: %s", ErrMissingTables, strings.Join(result.Missing, ", ")))
	}

	dict := dictionary.Layout(result.Tables, labels)
	doc, err := dictionary.Build(dict, dictionary.Options{
		TemplatePath: req.TemplatePath,
		TableStyle:   req.TableStyle,
	})
	if err != nil {
		return fail("render", err)
	}
	if err := doc.Save(path); err != nil {
		return fail("save", err)
	}

	res := &types.ExportResult{
		RunID:    runID,
		Path:     path,
		Tables:   len(dict.Blocks),
		Columns:  dict.ColumnCount(),
		Duration: now().Sub(start),
	}
	logger.Info("export finished", "path", path, "tables", res.Tables, "columns", res.Columns, "duration", res.Duration)
	return res, nil
}

func checkOverwrite(path string, overwrite bool, confirm Confirmer) error {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if overwrite {
		return nil
	}
	if confirm == nil {
		return fmt.Errorf("%w: %s", ErrOutputExists, path)
	}
	ok, err := confirm.ConfirmOverwrite(path)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOverwriteDeclined
	}
	return nil
}

// DefaultOutputPath names a new dictionary file in dir, or in the user's
// Downloads directory when dir is empty, stamped with the Unix time.
func DefaultOutputPath(dir, lang string, now time.Time) string {
	labels, err := dictionary.LabelsFor(lang)
	if err != nil {
		labels, _ = dictionary.LabelsFor("")
	}
	if dir == "" {
		dir = "Downloads"
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, "Downloads")
		}
	}
	return filepath.Join(dir, fmt.Sprintf("%s%d.docx", labels.FilePrefix, now.Unix()))
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
