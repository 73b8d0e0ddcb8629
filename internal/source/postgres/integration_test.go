//go:build integration

package postgres

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/alexanderjulianmartinez/datadict/internal/export"
	"github.com/alexanderjulianmartinez/datadict/internal/source"
	"github.com/alexanderjulianmartinez/datadict/internal/testutil"
)

const shopDDL = `
CREATE TABLE users (
	id    bigint PRIMARY KEY,
	email varchar(128) NOT NULL UNIQUE,
	name  varchar(64)
);
COMMENT ON TABLE users IS 'registered users';
COMMENT ON COLUMN users.id IS 'user id';
COMMENT ON COLUMN users.email IS 'login email';

CREATE TABLE orders (
	id      bigint PRIMARY KEY,
	user_id bigint NOT NULL REFERENCES users (id),
	note    text,
	placed  timestamptz NOT NULL
);
COMMENT ON TABLE orders IS 'customer orders';
CREATE INDEX orders_placed_idx ON orders (placed);

CREATE VIEW user_emails AS SELECT id, email FROM users;
`

func startShop(t *testing.T) source.Params {
	t.Helper()
	ctx := t.Context()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("shop"),
		tcpostgres.WithUsername("datadict"),
		tcpostgres.WithPassword("datadict"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open(sqlDriverName, dsn)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.ExecContext(ctx, shopDDL)
	require.NoError(t, err)

	return source.Params{
		Driver:         driverName,
		Database:       "shop",
		Schema:         DefaultSchema,
		DSN:            dsn,
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   10 * time.Second,
		Logger:         testutil.NewTestLogger(t),
	}
}

func TestIntegration_Catalog(t *testing.T) {
	p := startShop(t)
	ctx := t.Context()

	insp, err := NewInspector(ctx, p)
	require.NoError(t, err)
	defer insp.Close()

	tables, err := insp.ListTables(ctx, p.Schema, source.TableFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []source.TableInfo{
		{Name: "users", Comment: "registered users"},
		{Name: "orders", Comment: "customer orders"},
	}, tables, "views are not base tables")

	cols, err := insp.ListColumns(ctx, p.Schema, "users", nil)
	require.NoError(t, err)
	assert.Equal(t, []source.ColumnInfo{
		{Name: "id", Type: "bigint", Key: source.KeyPrimary, Comment: "user id"},
		{Name: "email", Type: "character varying(128)", Key: source.KeyOther, Comment: "login email"},
		{Name: "name", Type: "character varying(64)", Nullable: true},
	}, cols)

	cols, err = insp.ListColumns(ctx, p.Schema, "orders", []string{"note"})
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, []string{"id", "user_id", "placed"}, []string{cols[0].Name, cols[1].Name, cols[2].Name})
	assert.Equal(t, source.KeyOther, cols[1].Key, "foreign key column")
	assert.Equal(t, source.KeyOther, cols[2].Key, "column with only a plain index")
}

func TestIntegration_Export(t *testing.T) {
	p := startShop(t)
	ctx := t.Context()

	r, err := source.Open(ctx, p)
	require.NoError(t, err)
	defer r.Close()

	out := filepath.Join(t.TempDir(), "shop.docx")
	exp := &export.Exporter{Reader: r, Schema: p.Schema, Logger: p.Logger}
	res, err := exp.Run(ctx, export.ExportRequest{
		Tables:     []string{"orders", "users"},
		OutputPath: out,
		Language:   "en",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Tables)
	assert.Equal(t, 7, res.Columns)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestIntegration_BadPassword(t *testing.T) {
	p := startShop(t)
	p.DSN = strings.Replace(p.DSN, "datadict:datadict@", "datadict:wrong@", 1)

	_, err := NewInspector(t.Context(), p)
	require.Error(t, err)
	assert.True(t, source.IsConnectionError(err))
}
