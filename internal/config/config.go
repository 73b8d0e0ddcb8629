package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alexanderjulianmartinez/datadict/internal/source"
)

const (
	DefaultFile    = "datadict.yaml"
	DefaultEnvFile = ".env"
	EnvPrefix      = "DATADICT_"

	DefaultMySQLPort    = 3306
	DefaultPostgresPort = 5432
	DefaultPGSchema     = "public"
)

type Config struct {
	Source SourceConfig `yaml:"source"`
	Export ExportConfig `yaml:"export"`
	Log    LogConfig    `yaml:"log"`

	// File is the config file that was read, if any.
	File string `yaml:"-"`
}

type SourceConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Schema   string `yaml:"schema"`
	// Database is the PostgreSQL database to connect to. MySQL uses Schema.
	Database       string        `yaml:"database"`
	DSN            string        `yaml:"dsn"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	QueryTimeout   time.Duration `yaml:"query_timeout"`
}

type ExportConfig struct {
	Dir        string   `yaml:"dir"`
	Template   string   `yaml:"template"`
	TableStyle string   `yaml:"table_style"`
	Language   string   `yaml:"language"`
	Tables     []string `yaml:"tables"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

func (c *Config) validate() error {
	switch c.Source.Type {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("source.type must be mysql or postgres, got %q", c.Source.Type)
	}
	if c.Source.Port < 0 || c.Source.Port > 65535 {
		return fmt.Errorf("source.port %d is out of range", c.Source.Port)
	}
	if c.Source.ConnectTimeout <= 0 {
		return errors.New("source.connect_timeout must be positive")
	}
	if c.Source.QueryTimeout <= 0 {
		return errors.New("source.query_timeout must be positive")
	}
	switch c.Export.Language {
	case "zh", "en":
	default:
		return fmt.Errorf("export.language must be zh or en, got %q", c.Export.Language)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// applyTypeDefaults fills values whose defaults depend on source.type.
func (c *Config) applyTypeDefaults() {
	c.Source.Type = strings.ToLower(c.Source.Type)
	switch c.Source.Type {
	case "mysql":
		if c.Source.Port == 0 {
			c.Source.Port = DefaultMySQLPort
		}
	case "postgres":
		if c.Source.Port == 0 {
			c.Source.Port = DefaultPostgresPort
		}
		if c.Source.Schema == "" {
			c.Source.Schema = DefaultPGSchema
		}
	}
	c.Export.Language = strings.ToLower(c.Export.Language)
}

// MissingField names the first required connection field that is empty,
// in form order, or "" when all are present. A DSN satisfies everything
// except the schema.
func (s SourceConfig) MissingField() string {
	if s.DSN == "" {
		if s.Host == "" {
			return "host"
		}
		if s.Port == 0 {
			return "port"
		}
	}
	if s.Schema == "" {
		return "schema"
	}
	if s.DSN == "" {
		if s.User == "" {
			return "user"
		}
		if s.Type == "postgres" && s.Database == "" {
			return "database"
		}
	}
	return ""
}

// Params converts the source section to connection parameters.
func (s SourceConfig) Params(logger *slog.Logger) (source.Params, error) {
	if f := s.MissingField(); f != "" {
		return source.Params{}, fmt.Errorf("source.%s is required", f)
	}
	return source.Params{
		Driver:         s.Type,
		Host:           s.Host,
		Port:           s.Port,
		User:           s.User,
		Password:       s.Password,
		Database:       s.Database,
		Schema:         s.Schema,
		DSN:            s.DSN,
		ConnectTimeout: s.ConnectTimeout,
		QueryTimeout:   s.QueryTimeout,
		Logger:         logger,
	}, nil
}

// LogValue keeps the password out of logs.
func (s SourceConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", s.Type),
		slog.String("host", s.Host),
		slog.Int("port", s.Port),
		slog.String("user", s.User),
		slog.String("schema", s.Schema),
		slog.Bool("dsn", s.DSN != ""),
	)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
