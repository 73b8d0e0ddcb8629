package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderjulianmartinez/datadict/internal/config"
)

func TestNew_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(config.LogConfig{Level: "warn", Format: "json"}, &buf, time.Now())
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	logger.Info("hidden")
	logger.Warn("shown", "table", "users")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"table":"users"`)
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	var buf bytes.Buffer
	logger, closeFn, err := New(config.LogConfig{Level: "info", Format: "text", File: path}, &buf, time.Now())
	require.NoError(t, err)

	logger.Info("export finished", "tables", 2)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "export finished")
	assert.Contains(t, buf.String(), "export finished")
}

func TestNew_BadLevel(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "chatty"}, &bytes.Buffer{}, time.Now())
	assert.Error(t, err)
}

func TestFilePath(t *testing.T) {
	day := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

	got, err := FilePath(Daily, day)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, filepath.Join("logs", "datadict", "run-2024-03-09.log")), got)

	got, err = FilePath("/var/log/dd.log", day)
	require.NoError(t, err)
	assert.Equal(t, "/var/log/dd.log", got)
}
