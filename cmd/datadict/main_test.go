package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alexanderjulianmartinez/datadict/internal/cli"
)

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.Contains(buf.String(), "datadict v") {
		t.Errorf("version output should contain 'datadict v', got: %s", buf.String())
	}
}

func TestHelpCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help command error = %v", err)
	}
	for _, expected := range []string{"ping", "tables", "columns", "export", "check", "ui"} {
		if !strings.Contains(buf.String(), expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, buf.String())
		}
	}
}

func TestRunReturnsCommandError(t *testing.T) {
	t.Chdir(t.TempDir())

	err := run([]string{"datadict", "tables", "-o", "xml"})
	if err == nil || !strings.Contains(err.Error(), "unsupported output format") {
		t.Fatalf("run() error = %v, want unsupported output format", err)
	}
}
