package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("host", "", "")
	fs.Int("port", 0, "")
	fs.String("schema", "", "")
	fs.String("lang", "", "")
	fs.Bool("force", false, "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("expected defaults to load, got: %v", err)
	}
	if cfg.Source.Type != "mysql" || cfg.Source.Host != "localhost" || cfg.Source.Port != 3306 || cfg.Source.User != "root" {
		t.Fatalf("unexpected source defaults: %+v", cfg.Source)
	}
	if cfg.Source.ConnectTimeout != 5*time.Second {
		t.Fatalf("expected 5s connect timeout, got %s", cfg.Source.ConnectTimeout)
	}
	if cfg.Export.Language != "zh" {
		t.Fatalf("expected zh, got %q", cfg.Export.Language)
	}
	if cfg.File != "" {
		t.Fatalf("expected no config file, got %q", cfg.File)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, DefaultFile, `
source:
  type: postgres
  host: db.internal
  user: app
  database: shop
  query_timeout: 30s
export:
  language: en
  tables: [users, orders]
log:
  format: json
`)

	cfg, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}
	if cfg.File != DefaultFile {
		t.Fatalf("expected %s to be used, got %q", DefaultFile, cfg.File)
	}
	if cfg.Source.Port != 5432 || cfg.Source.Schema != "public" {
		t.Fatalf("expected postgres defaults, got %+v", cfg.Source)
	}
	if cfg.Source.QueryTimeout != 30*time.Second {
		t.Fatalf("expected 30s query timeout, got %s", cfg.Source.QueryTimeout)
	}
	if len(cfg.Export.Tables) != 2 || cfg.Export.Tables[1] != "orders" {
		t.Fatalf("unexpected tables: %v", cfg.Export.Tables)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, DefaultEnvFile, "DATADICT_SOURCE__HOST=from-dotenv\nDATADICT_SOURCE__SCHEMA=dotenv_schema\nDATADICT_SOURCE__USER=dotenv_user\nOTHER=ignored\n")
	writeFile(t, dir, DefaultFile, "source:\n  host: from-file\n  schema: file_schema\n")
	t.Setenv("DATADICT_SOURCE__SCHEMA", "env_schema")
	t.Setenv("DATADICT_EXPORT__LANGUAGE", "en")

	flags := testFlags()
	if err := flags.Parse([]string{"--lang", "zh"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source.User != "dotenv_user" {
		t.Fatalf(".env should override defaults, got user %q", cfg.Source.User)
	}
	if cfg.Source.Host != "from-file" {
		t.Fatalf("config file should override .env, got host %q", cfg.Source.Host)
	}
	if cfg.Source.Schema != "env_schema" {
		t.Fatalf("env should override config file, got schema %q", cfg.Source.Schema)
	}
	if cfg.Export.Language != "zh" {
		t.Fatalf("flags should override env, got language %q", cfg.Export.Language)
	}
}

func TestLoadConfig_UnchangedFlagsIgnored(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, DefaultFile, "source:\n  host: from-file\n")

	flags := testFlags()
	if err := flags.Parse([]string{"--force"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source.Host != "from-file" {
		t.Fatalf("unset --host must not override the file, got %q", cfg.Source.Host)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cases := map[string]string{
		"type":     "source:\n  type: oracle\n",
		"language": "export:\n  language: fr\n",
		"format":   "log:\n  format: xml\n",
		"level":    "log:\n  level: loud\n",
		"port":     "source:\n  port: 70000\n",
		"timeout":  "source:\n  connect_timeout: 0s\n",
	}
	for name, body := range cases {
		path := writeFile(t, dir, name+".yaml", body)
		if _, err := LoadConfig(path, nil); err == nil {
			t.Fatalf("%s: expected validation error, got nil", name)
		}
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := LoadConfig("nope.yaml", nil)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLoadConfig_SchemaFromDSN(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeFile(t, dir, "c.yaml", "source:\n  dsn: root:pw@tcp(localhost:3306)/shop\n")

	cfg, err := LoadConfig(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source.Schema != "shop" {
		t.Fatalf("expected schema from dsn, got %q", cfg.Source.Schema)
	}
}

func TestSourceConfig_MissingField(t *testing.T) {
	full := SourceConfig{Type: "mysql", Host: "h", Port: 3306, User: "u", Schema: "s"}
	if f := full.MissingField(); f != "" {
		t.Fatalf("expected no missing field, got %q", f)
	}

	cases := []struct {
		mutate func(*SourceConfig)
		want   string
	}{
		{func(s *SourceConfig) { s.Host = "" }, "host"},
		{func(s *SourceConfig) { s.Port = 0 }, "port"},
		{func(s *SourceConfig) { s.Schema = "" }, "schema"},
		{func(s *SourceConfig) { s.User = "" }, "user"},
		{func(s *SourceConfig) { s.Type = "postgres" }, "database"},
		{func(s *SourceConfig) { s.Host, s.User, s.DSN = "", "", "x" }, ""},
	}
	for _, c := range cases {
		s := full
		c.mutate(&s)
		if got := s.MissingField(); got != c.want {
			t.Fatalf("MissingField() = %q, want %q (%+v)", got, c.want, s)
		}
	}
}

func TestSourceConfig_Params(t *testing.T) {
	s := SourceConfig{Type: "mysql", Host: "h", Port: 3306, User: "u", Password: "pw", Schema: "s", ConnectTimeout: time.Second}
	p, err := s.Params(nil)
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if p.Driver != "mysql" || p.Addr() != "h:3306" || p.Password != "pw" {
		t.Fatalf("unexpected params: %+v", p)
	}

	s.Schema = ""
	if _, err := s.Params(nil); err == nil || !strings.Contains(err.Error(), "source.schema") {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestSourceConfig_LogValueHidesPassword(t *testing.T) {
	s := SourceConfig{Type: "mysql", Password: "s3cret"}
	if strings.Contains(s.LogValue().String(), "s3cret") {
		t.Fatalf("password leaked into log value")
	}
}
