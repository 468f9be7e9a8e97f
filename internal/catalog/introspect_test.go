package catalog_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/koustreak/metadump/internal/catalog"
	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/database/dbtest"
	"github.com/koustreak/metadump/internal/errs"
	"github.com/koustreak/metadump/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntrospect_BindsParameters(t *testing.T) {
	tests := []struct {
		engine database.Engine
		args   []any
	}{
		{database.EngineMySQL, []any{"shop"}},
		{database.EnginePostgres, []any{catalog.PostgresSchema}},
		{database.EngineSQLServer, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.engine), func(t *testing.T) {
			db := &dbtest.DB{}

			records, err := catalog.Introspect(context.Background(), db, tt.engine, "shop")
			require.NoError(t, err)
			assert.Empty(t, records)
			assert.NotNil(t, records)

			require.Len(t, db.Queries, 1)
			c, err := catalog.For(tt.engine)
			require.NoError(t, err)
			assert.Equal(t, c.Query, db.Queries[0][0])
			assert.Equal(t, tt.args, c.Args("shop"))
			assert.Len(t, db.Queries[0], 1+len(tt.args))
		})
	}
}

func TestIntrospect_MySQL(t *testing.T) {
	db := &dbtest.DB{Rows: dbtest.NewRows(
		[]string{"TABLE_NAME", "COLUMN_NAME", "DATA_TYPE", "CONSTRAINT_TYPE", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME"},
		[]any{[]byte("orders"), []byte("user_id"), []byte("int"), []byte("FOREIGN KEY"), []byte("users"), []byte("id")},
		[]any{[]byte("payments"), []byte("order_id"), []byte("bigint"), []byte("FOREIGN KEY"), []byte("orders"), []byte("id")},
	)}

	records, err := catalog.Introspect(context.Background(), db, database.EngineMySQL, "shop")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "orders", records[0].TableName)
	assert.Equal(t, "payments", records[1].TableName)
	assert.Equal(t, "orders", *records[1].ReferencedTable)
	assert.True(t, db.Rows.Closed)
	assert.Equal(t, "shop", db.Queries[0][1])
}

func TestIntrospect_EmptyCatalogWarns(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.New(&logger.Config{Level: "warn", Format: "json", Output: buf}).WithContext(context.Background())

	records, err := catalog.Introspect(ctx, &dbtest.DB{}, database.EngineMySQL, "shpo")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "no columns")
}

func TestIntrospect_QueryError(t *testing.T) {
	db := &dbtest.DB{QueryErr: errs.New(errs.ErrKindQueryFailed, "query failed: syntax error")}

	records, err := catalog.Introspect(context.Background(), db, database.EnginePostgres, "shop")
	assert.Nil(t, records)
	assert.True(t, errs.IsQueryFailed(err))
}

func TestIntrospect_IterationError(t *testing.T) {
	rows := dbtest.NewRows([]string{"table_name"})
	rows.IterErr = assert.AnError
	db := &dbtest.DB{Rows: rows}

	_, err := catalog.Introspect(context.Background(), db, database.EngineSQLServer, "shop")
	assert.True(t, errs.IsQueryFailed(err))
}
