package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderjulianmartinez/datadict/internal/export"
	"github.com/alexanderjulianmartinez/datadict/internal/source"
	"github.com/alexanderjulianmartinez/datadict/internal/testutil"
	"github.com/alexanderjulianmartinez/datadict/pkg/types"
)

type cliRun struct {
	reader   *testutil.FakeReader
	terminal bool
	stdin    string
	params   source.Params
}

func (c *cliRun) exec(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	if c.reader == nil {
		c.reader = &testutil.FakeReader{Tables: testutil.UsersOrders()}
	}
	a := newApp()
	a.open = func(_ context.Context, p source.Params) (source.Reader, error) {
		c.params = p
		return c.reader, nil
	}
	a.isTerminal = func() bool { return c.terminal }

	root := a.rootCmd()
	var out, errOut bytes.Buffer
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(c.stdin))

	err := root.ExecuteContext(context.Background())
	_ = a.closeLog()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := (&cliRun{}).exec(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "datadict v"+Version)
}

func TestPing(t *testing.T) {
	c := &cliRun{}
	out, err := c.exec(t, "ping", "-s", "shop", "--host", "db.local", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "connected to fake (schema shop)")
	assert.Equal(t, "db.local", c.params.Host)
	assert.Equal(t, 3306, c.params.Port)
	assert.True(t, c.reader.Closed)
}

func TestPing_MissingSchema(t *testing.T) {
	_, err := (&cliRun{}).exec(t, "ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.schema is required")
}

func TestTables(t *testing.T) {
	out, err := (&cliRun{}).exec(t, "tables", "-s", "shop")
	require.NoError(t, err)
	assert.Contains(t, out, "users")
	assert.Contains(t, out, "registered users")
	assert.Contains(t, out, "(2 tables)")
}

func TestTables_JSONWithFilter(t *testing.T) {
	out, err := (&cliRun{}).exec(t, "tables", "-s", "shop", "-o", "json", "--filter", "ord")
	require.NoError(t, err)

	var got []types.TableListing
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []types.TableListing{{Name: "orders", Comment: "customer orders"}}, got)
}

func TestColumns_YAML(t *testing.T) {
	out, err := (&cliRun{}).exec(t, "columns", "orders", "-s", "shop", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: user_id")
	assert.Contains(t, out, "key: PRI")
	assert.Contains(t, out, "key: KEY")
}

func TestBadOutputFormat(t *testing.T) {
	_, err := (&cliRun{}).exec(t, "tables", "-s", "shop", "-o", "xml")
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.docx")
	c := &cliRun{}
	out, err := c.exec(t, "export", "orders", "users", "-s", "shop", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path+" (2 tables, 4 columns)")
	assert.FileExists(t, path)
	assert.Equal(t, []string{"tables", "columns:orders", "columns:users"}, c.reader.Calls)
}

func TestExport_AllWithFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.docx")
	c := &cliRun{}
	_, err := c.exec(t, "export", "--all", "--filter", "user", "-s", "shop", "--out", path, "--lang", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"tables", "tables", "columns:users"}, c.reader.Calls)
}

func TestExport_FilterRequiresAll(t *testing.T) {
	c := &cliRun{}
	_, err := c.exec(t, "export", "users", "--filter", "user", "-s", "shop", "--out", filepath.Join(t.TempDir(), "d.docx"))
	require.EqualError(t, err, "--filter requires --all")
	assert.Empty(t, c.reader.Calls, "rejected before connecting")
}

func TestExport_NothingSelected(t *testing.T) {
	_, err := (&cliRun{}).exec(t, "export", "-s", "shop", "--out", filepath.Join(t.TempDir(), "d.docx"))
	require.ErrorIs(t, err, export.ErrNoTables)
}

func TestExport_ExistingFile(t *testing.T) {
	tests := []struct {
		name      string
		terminal  bool
		stdin     string
		force     bool
		wantErr   error
		overwrite bool
	}{
		{name: "non-interactive refuses", wantErr: export.ErrOutputExists},
		{name: "prompt declined", terminal: true, stdin: "n\n", wantErr: export.ErrOverwriteDeclined},
		{name: "prompt default is no", terminal: true, stdin: "\n", wantErr: export.ErrOverwriteDeclined},
		{name: "prompt accepted", terminal: true, stdin: "y\n", overwrite: true},
		{name: "force", force: true, overwrite: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dict.docx")
			require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

			args := []string{"export", "users", "-s", "shop", "--out", path}
			if tt.force {
				args = append(args, "--force")
			}
			_, err := (&cliRun{terminal: tt.terminal, stdin: tt.stdin}).exec(t, args...)

			data, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			if tt.overwrite {
				require.NoError(t, err)
				assert.NotEqual(t, "old", string(data))
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, "old", string(data))
		})
	}
}

func TestCheck(t *testing.T) {
	out, err := (&cliRun{}).exec(t, "check", "-s", "shop")
	require.NoError(t, err)
	assert.Contains(t, out, "2 tables checked, no issues")
}

func TestCheck_Blocking(t *testing.T) {
	out, err := (&cliRun{}).exec(t, "check", "users", "ghost", "-s", "shop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 blocking issue")
	assert.Contains(t, out, "BLOCK")
	assert.Contains(t, out, "ghost")
}

func TestDescribe(t *testing.T) {
	connErr := fmt.Errorf("open: %w", &source.ConnectionError{Driver: "mysql", Addr: "db:3306", Err: errors.New("access denied")})
	msg := Describe(connErr)
	assert.True(t, strings.HasPrefix(msg, "open: mysql connection to db:3306 failed: access denied\n"))
	assert.Contains(t, msg, "source.password")

	assert.Equal(t, "export select: no tables selected", Describe(&export.ExportError{Op: "select", Err: errors.New("no tables selected")}))
}

func TestPromptConfirmer(t *testing.T) {
	var prompt bytes.Buffer
	confirm := promptConfirmer(strings.NewReader("YES\n"), &prompt)
	ok, err := confirm("/tmp/x.docx")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, prompt.String(), "/tmp/x.docx already exists")

	ok, err = promptConfirmer(strings.NewReader(""), &prompt)("/tmp/x.docx")
	require.NoError(t, err)
	assert.False(t, ok, "EOF means no")
}
