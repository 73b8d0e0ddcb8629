// Package postgres reads table and column metadata from PostgreSQL's
// information_schema, filling the MySQL-only fields (table and column
// comments, COLUMN_KEY) from pg_catalog.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/alexanderjulianmartinez/datadict/internal/source"
)

const (
	driverName    = "postgres"
	sqlDriverName = "pgx"
	DefaultSchema = "public"
)

func init() {
	source.Register(driverName, func(ctx context.Context, p source.Params) (source.Reader, error) {
		return NewInspector(ctx, p)
	})
}

// Inspector implements source.Reader for PostgreSQL.
type Inspector struct {
	db      *sql.DB
	addr    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewInspector opens a pool through pgx's database/sql adapter and pings it.
func NewInspector(ctx context.Context, p source.Params) (*Inspector, error) {
	db, err := sql.Open(sqlDriverName, FormatDSN(p))
	if err != nil {
		return nil, &source.ConnectionError{Driver: driverName, Addr: p.Addr(), Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, p.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &source.ConnectionError{Driver: driverName, Addr: p.Addr(), Err: fmt.Errorf("postgres ping failed: %w", err)}
	}

	i := NewWithDB(db, p.QueryTimeout, p.Logger)
	i.addr = p.Addr()
	i.logger.Info("database connection established", "driver", driverName, "addr", i.addr, "database", p.Database)
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

// FormatDSN returns p.DSN if set, otherwise a postgres:// URL built from the
// connection fields.
func FormatDSN(p source.Params) string {
	if p.DSN != "" {
		return p.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.Database,
	}
	if p.User != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	q := url.Values{}
	if p.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(p.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
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
		var t source.TableInfo
		if err := rows.Scan(&t.Name, &t.Comment); err != nil {
			return nil, i.wrap("list tables", "", err)
		}
		tables = append(tables, t)
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
		var (
			c        source.ColumnInfo
			nullable string
			key      string
		)
		if err := rows.Scan(&c.Name, &c.Type, &nullable, &key, &c.Comment); err != nil {
			return nil, i.wrap("list columns", table, err)
		}
		c.Nullable = strings.EqualFold(nullable, "YES")
		c.Key = source.KeyKindFromColumnKey(key)
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, i.wrap("list columns", table, err)
	}
	return cols, nil
}

func dollar(i int) string { return "$" + strconv.Itoa(i) }

func tablesQuery(schema string, filter source.TableFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT t.table_name,
		       COALESCE(obj_description(format('%I.%I', t.table_schema, t.table_name)::regclass, 'pg_class'), '')
		FROM information_schema.tables t
		WHERE t.table_schema = $1 AND t.table_type = 'BASE TABLE'`)
	args := []any{schema}

	if filter.Contains != "" {
		args = append(args, source.LikeContains(filter.Contains))
		sb.WriteString(` AND t.table_name LIKE ` + dollar(len(args)))
	}
	if len(filter.Include) > 0 {
		sb.WriteString(` AND t.table_name IN (`)
		sb.WriteString(source.Placeholders(len(filter.Include), len(args)+1, dollar))
		sb.WriteString(`)`)
		for _, name := range filter.Include {
			args = append(args, name)
		}
	}
	return sb.String(), args
}

// columnsQuery reports PRI for primary-key columns and MUL for columns in
// any other key constraint or index, mirroring MySQL's COLUMN_KEY.
func columnsQuery(schema, table string, exclude []string) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT c.column_name,
		       COALESCE(pg_catalog.format_type(a.atttypid, a.atttypmod), c.data_type),
		       c.is_nullable,
		       COALESCE(k.column_key, ''),
		       COALESCE(col_description(a.attrelid, a.attnum), '')
		FROM information_schema.columns c
		LEFT JOIN pg_catalog.pg_attribute a
		       ON a.attrelid = format('%I.%I', c.table_schema, c.table_name)::regclass
		      AND a.attname = c.column_name
		LEFT JOIN (
			SELECT keyed.column_name,
			       CASE WHEN bool_or(keyed.is_primary) THEN 'PRI' ELSE 'MUL' END AS column_key
			FROM (
				SELECT kcu.column_name::text AS column_name,
				       tc.constraint_type = 'PRIMARY KEY' AS is_primary
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
				  ON kcu.constraint_schema = tc.constraint_schema
				 AND kcu.constraint_name = tc.constraint_name
				 AND kcu.table_name = tc.table_name
				WHERE tc.table_schema = $1 AND tc.table_name = $2
				UNION ALL
				SELECT ia.attname::text, ix.indisprimary
				FROM pg_catalog.pg_index ix
				JOIN pg_catalog.pg_attribute ia
				  ON ia.attrelid = ix.indrelid
				 AND ia.attnum = ANY(ix.indkey)
				WHERE ix.indrelid = to_regclass(format('%I.%I', $1::text, $2::text))
			) keyed
			GROUP BY keyed.column_name
		) k ON k.column_name = c.column_name::text
		WHERE c.table_schema = $1 AND c.table_name = $2`)
	args := []any{schema, table}

	if len(exclude) > 0 {
		sb.WriteString(` AND c.column_name NOT IN (`)
		sb.WriteString(source.Placeholders(len(exclude), len(args)+1, dollar))
		sb.WriteString(`)`)
		for _, name := range exclude {
			args = append(args, name)
		}
	}
	sb.WriteString(`
		ORDER BY c.ordinal_position`)
	return sb.String(), args
}

func (i *Inspector) wrap(op, table string, err error) error {
	if isConnectionFailure(err) {
		return &source.ConnectionError{Driver: driverName, Addr: i.addr, Err: err}
	}
	return &source.QueryError{Op: op, Table: table, Err: err}
}

// isConnectionFailure matches dial errors plus SQLSTATE class 28
// (invalid authorization) and 3D000 (unknown database).
func isConnectionFailure(err error) bool {
	var ce *pgconn.ConnectError
	if errors.As(err, &ce) {
		return true
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return strings.HasPrefix(pe.Code, "28") || pe.Code == "3D000"
	}
	return errors.Is(err, sql.ErrConnDone)
}
