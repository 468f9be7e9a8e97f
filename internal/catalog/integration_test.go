//go:build integration

package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/koustreak/metadump/internal/catalog"
	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const fixture = `
	CREATE TABLE users (
		id    serial PRIMARY KEY,
		email text NOT NULL
	);
	CREATE TABLE orders (
		id      serial PRIMARY KEY,
		user_id integer NOT NULL REFERENCES users(id)
	);
	CREATE VIEW user_emails AS SELECT id, email FROM users;

	CREATE TABLE regions (
		country char(2),
		code    text,
		PRIMARY KEY (country, code)
	);
	CREATE TABLE stores (
		id      serial PRIMARY KEY,
		country char(2) NOT NULL,
		region  text NOT NULL,
		FOREIGN KEY (country, region) REFERENCES regions (country, code)
	);

	CREATE SCHEMA billing;
	CREATE TABLE billing.accounts (id serial PRIMARY KEY);
	CREATE TABLE invoices (
		id         serial PRIMARY KEY,
		account_id integer REFERENCES billing.accounts(id)
	);`

func TestIntrospect_PostgresContainer(t *testing.T) {
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("shop"),
		tcpostgres.WithUsername("app"),
		tcpostgres.WithPassword("secret"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, fixture)
	require.NoError(t, err)
	require.NoError(t, conn.Close(ctx))

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := postgres.Connect(ctx, &database.Config{
		Engine:         database.EnginePostgres,
		Host:           host,
		Port:           port.Int(),
		User:           "app",
		Password:       "secret",
		Database:       "shop",
		ConnectTimeout: 30 * time.Second,
	})
	require.NoError(t, err)
	defer db.Close()

	records, err := catalog.Introspect(ctx, db, database.EnginePostgres, "shop")
	require.NoError(t, err)

	byColumn := make(map[string]catalog.Record)
	perColumn := make(map[string]int)
	for _, r := range records {
		key := r.TableName + "." + r.ColumnName
		byColumn[key] = r
		perColumn[key]++
	}

	// users(2) + orders(2) + user_emails(2) + regions(2) + stores(3) + invoices(2);
	// billing.accounts is outside the dumped schema.
	assert.Len(t, records, 13)
	for key, n := range perColumn {
		assert.Equal(t, 1, n, key)
	}

	fk := byColumn["orders.user_id"]
	require.True(t, fk.IsForeignKey())
	assert.Equal(t, "users", *fk.ReferencedTable)
	assert.Equal(t, "id", *fk.ReferencedColumn)
	assert.False(t, *fk.IsView)

	view := byColumn["user_emails.email"]
	require.NotNil(t, view.IsView)
	assert.True(t, *view.IsView)
	assert.Equal(t, "text", view.DataType)

	country := byColumn["stores.country"]
	require.True(t, country.IsForeignKey())
	assert.Equal(t, "regions", *country.ReferencedTable)
	assert.Equal(t, "country", *country.ReferencedColumn)

	region := byColumn["stores.region"]
	require.True(t, region.IsForeignKey())
	assert.Equal(t, "regions", *region.ReferencedTable)
	assert.Equal(t, "code", *region.ReferencedColumn)

	assert.False(t, byColumn["stores.id"].IsForeignKey())

	account := byColumn["invoices.account_id"]
	require.True(t, account.IsForeignKey())
	assert.Equal(t, "billing.accounts", *account.ReferencedTable)
	assert.Equal(t, "id", *account.ReferencedColumn)
}
