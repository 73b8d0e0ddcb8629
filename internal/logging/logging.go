// Package logging builds the process logger from the log config section.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderjulianmartinez/datadict/internal/config"
)

// Daily is the log.file value that selects one file per day under ~/logs/datadict.
const Daily = "daily"

// New returns a logger writing to stderr and, when cfg.File is set, to that
// file as well. The returned close func releases the file.
func New(cfg config.LogConfig, stderr io.Writer, now time.Time) (*slog.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	out := stderr
	closeFn := func() error { return nil }

	if cfg.File != "" {
		path, err := FilePath(cfg.File, now)
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(stderr, f)
		closeFn = f.Close
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h), closeFn, nil
}

// FilePath resolves a log.file value. Daily maps to
// ~/logs/datadict/run-YYYY-MM-DD.log.
func FilePath(file string, now time.Time) (string, error) {
	if file != Daily {
		return file, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, "logs", "datadict", "run-"+now.Format(time.DateOnly)+".log"), nil
}
