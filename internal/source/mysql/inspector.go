package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"github.com/alexanderjulianmartinez/datadict/internal/source"
)

const driverName = "mysql"

func init() {
	source.Register(driverName, func(ctx context.Context, p source.Params) (source.Reader, error) {
		return NewInspector(ctx, p)
	})
}

type Inspector struct {
	db      *sql.DB
	addr    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewInspector opens a MySQL connection pool and pings it within p.ConnectTimeout.
func NewInspector(ctx context.Context, p source.Params) (*Inspector, error) {
	dsn, err := FormatDSN(p)
	if err != nil {
		return nil, &source.ConnectionError{Driver: driverName, Addr: p.Addr(), Err: err}
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &source.ConnectionError{Driver: driverName, Addr: p.Addr(), Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, p.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &source.ConnectionError{Driver: driverName, Addr: p.Addr(), Err: fmt.Errorf("mysql ping failed: %w", err)}
	}

	i := NewWithDB(db, p.QueryTimeout, p.Logger)
	i.addr = p.Addr()
	i.logger.Info("database connection established", "driver", driverName, "addr", i.addr, "schema", p.Schema)
	return i, nil
}

// NewWithDB wraps an existing pool.
func NewWithDB(db *sql.DB, timeout time.Duration, logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Inspector{db: db, timeout: timeout, logger: logger}
}

func (i *Inspector) Driver() string { return driverName }

func (i *Inspector) Ping(ctx context.Context) error {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()
	if err := i.db.PingContext(ctx); err != nil {
		return &source.ConnectionError{Driver: driverName, Addr: i.addr, Err: err}
	}
	return nil
}

func (i *Inspector) Close() error {
	if i.db == nil {
		return nil
	}
	i.logger.Debug("closing database connection", "driver", driverName)
	return i.db.Close()
}

// withTimeout applies the per-query timeout unless ctx already expires sooner.
func (i *Inspector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= i.timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, i.timeout)
}

func (i *Inspector) ListTables(ctx context.Context, schema string, filter source.TableFilter) ([]source.TableInfo, error) {
	if schema == "" {
		return nil, &source.QueryError{Op: "list tables", Err: source.ErrEmptySchema}
	}

	query, args := tablesQuery(schema, filter)
	i.logger.Debug("catalog query", "op", "list_tables", "schema", schema, "contains", filter.Contains, "include", len(filter.Include))

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, i.wrap("list tables", "", err)
	}
	defer rows.Close()

	var tables []source.TableInfo
	for rows.Next() {
		var t tableRow
		if err := rows.Scan(&t.Name, &t.Comment); err != nil {
			return nil, i.wrap("list tables", "", err)
		}
		tables = append(tables, t.info())
	}
	if err := rows.Err(); err != nil {
		return nil, i.wrap("list tables", "", err)
	}
	return filter.Apply(tables), nil
}

func (i *Inspector) ListColumns(ctx context.Context, schema, table string, exclude []string) ([]source.ColumnInfo, error) {
	if schema == "" {
		return nil, &source.QueryError{Op: "list columns", Table: table, Err: source.ErrEmptySchema}
	}
	if table == "" {
		return nil, &source.QueryError{Op: "list columns", Err: errors.New("table name is required")}
	}

	query, args := columnsQuery(schema, table, exclude)
	i.logger.Debug("catalog query", "op", "list_columns", "schema", schema, "table", table)

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, i.wrap("list columns", table, err)
	}
	defer rows.Close()

	var cols []source.ColumnInfo
	for rows.Next() {
		var c columnRow
		if err := rows.Scan(&c.Name, &c.Type, &c.Nullable, &c.Key, &c.Comment); err != nil {
			return nil, i.wrap("list columns", table, err)
		}
		cols = append(cols, c.info())
	}
	if err := rows.Err(); err != nil {
		return nil, i.wrap("list columns", table, err)
	}
	return cols, nil
}

func tablesQuery(schema string, filter source.TableFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT TABLE_NAME, TABLE_COMMENT
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'`)
	args := []any{schema}

	if filter.Contains != "" {
		sb.WriteString(` AND TABLE_NAME LIKE ?`)
		args = append(args, source.LikeContains(filter.Contains))
	}
	if len(filter.Include) > 0 {
		sb.WriteString(` AND TABLE_NAME IN (`)
		sb.WriteString(source.Placeholders(len(filter.Include), 1, func(int) string { return "?" }))
		sb.WriteString(`)`)
		for _, name := range filter.Include {
			args = append(args, name)
		}
	}
	return sb.String(), args
}

func columnsQuery(schema, table string, exclude []string) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_KEY, COLUMN_COMMENT
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`)
	args := []any{schema, table}

	if len(exclude) > 0 {
		sb.WriteString(` AND COLUMN_NAME NOT IN (`)
		sb.WriteString(source.Placeholders(len(exclude), 1, func(int) string { return "?" }))
		sb.WriteString(`)`)
		for _, name := range exclude {
			args = append(args, name)
		}
	}
	sb.WriteString(`
		ORDER BY ORDINAL_POSITION`)
	return sb.String(), args
}

// wrap classifies a driver error: lost connections and rejected credentials
// become ConnectionError, everything else a QueryError.
func (i *Inspector) wrap(op, table string, err error) error {
	if isConnectionFailure(err) {
		return &source.ConnectionError{Driver: driverName, Addr: i.addr, Err: err}
	}
	return &source.QueryError{Op: op, Table: table, Err: err}
}

func isConnectionFailure(err error) bool {
	var me *driver.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case erAccessDenied, erDBAccessDenied, erBadDB:
			return true
		}
		return false
	}
	return errors.Is(err, driver.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone)
}
