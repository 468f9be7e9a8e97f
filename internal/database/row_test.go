package database_test

import (
	"errors"
	"testing"

	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/database/dbtest"
	"github.com/koustreak/metadump/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRows(t *testing.T) {
	rows := dbtest.NewRows(
		[]string{"TABLE_NAME", "COLUMN_NAME", "CONSTRAINT_TYPE"},
		[]any{[]byte("orders"), "user_id", "FOREIGN KEY"},
		[]any{"users", []byte("id"), nil},
	)

	got, err := database.ScanRows(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "orders", got[0]["TABLE_NAME"])
	assert.Equal(t, "id", got[1]["COLUMN_NAME"])
	assert.Nil(t, got[1]["CONSTRAINT_TYPE"])
	assert.True(t, rows.Closed)
}

func TestScanRows_Empty(t *testing.T) {
	got, err := database.ScanRows(dbtest.NewRows([]string{"a"}))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestScanRows_IterationError(t *testing.T) {
	rows := dbtest.NewRows([]string{"a"})
	rows.IterErr = errors.New("connection reset")

	_, err := database.ScanRows(rows)
	assert.True(t, errs.IsQueryFailed(err))
	assert.True(t, rows.Closed)
}
