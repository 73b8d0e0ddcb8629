package mysql

import (
	"database/sql"
	"fmt"
	"strings"

	driver "github.com/go-sql-driver/mysql"

	"github.com/alexanderjulianmartinez/datadict/internal/source"
)

// Server error numbers treated as connection failures.
const (
	erDBAccessDenied = 1044
	erAccessDenied   = 1045
	erBadDB          = 1049
)

type tableRow struct {
	Name    string
	Comment sql.NullString
}

func (r tableRow) info() source.TableInfo {
	return source.TableInfo{Name: r.Name, Comment: r.Comment.String}
}

type columnRow struct {
	Name     string
	Type     string
	Nullable string
	Key      sql.NullString
	Comment  sql.NullString
}

func (r columnRow) info() source.ColumnInfo {
	return source.ColumnInfo{
		Name:     r.Name,
		Type:     r.Type,
		Nullable: strings.EqualFold(r.Nullable, "YES"),
		Key:      source.KeyKindFromColumnKey(r.Key.String),
		Comment:  r.Comment.String,
	}
}

// FormatDSN builds a go-sql-driver DSN from p. An explicit p.DSN is parsed
// so that malformed input is rejected before dialing.
func FormatDSN(p source.Params) (string, error) {
	if p.DSN != "" {
		cfg, err := driver.ParseDSN(p.DSN)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		if p.ConnectTimeout > 0 && cfg.Timeout == 0 {
			cfg.Timeout = p.ConnectTimeout
		}
		return cfg.FormatDSN(), nil
	}

	cfg := driver.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = p.Addr()
	cfg.DBName = p.Schema
	cfg.Timeout = p.ConnectTimeout
	return cfg.FormatDSN(), nil
}

// SchemaFromDSN returns the database name carried by a MySQL DSN.
func SchemaFromDSN(dsn string) string {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return ""
	}
	return cfg.DBName
}
