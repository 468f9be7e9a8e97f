package mysql

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *database.Config {
	return &database.Config{
		Engine:         database.EngineMySQL,
		Host:           "db.internal",
		Port:           3307,
		User:           "app",
		Password:       "s3cret",
		Database:       "shop",
		ConnectTimeout: 2 * time.Second,
	}
}

func TestBuildConfig(t *testing.T) {
	mc := buildConfig(testConfig())

	assert.Equal(t, "app", mc.User)
	assert.Equal(t, "s3cret", mc.Passwd)
	assert.Equal(t, "tcp", mc.Net)
	assert.Equal(t, "db.internal:3307", mc.Addr)
	assert.Equal(t, "shop", mc.DBName)
	assert.True(t, mc.ParseTime)
	assert.Equal(t, 2*time.Second, mc.Timeout)
	assert.Contains(t, mc.FormatDSN(), "app:s3cret@tcp(db.internal:3307)/shop?")
}

func TestBuildConfig_DefaultPort(t *testing.T) {
	cfg := testConfig()
	cfg.Port = 0
	assert.Equal(t, "db.internal:3306", buildConfig(cfg).Addr)
}

func TestOpen_PingFailureClosesHandle(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(&gomysql.MySQLError{Number: 1045, Message: "Access denied for user 'app'"})
	mock.ExpectClose()

	d, err := open(context.Background(), db, testConfig())
	assert.Nil(t, d)
	assert.True(t, errs.IsConnectionFailed(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriver_Query(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	mock.ExpectQuery("SELECT (.+) FROM INFORMATION_SCHEMA.COLUMNS").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "COLUMN_NAME"}).
			AddRow("orders", "user_id").
			AddRow("orders", "id"))
	mock.ExpectClose()

	d, err := open(context.Background(), db, testConfig())
	require.NoError(t, err)

	rows, err := d.Query(context.Background(), "SELECT c.TABLE_NAME, c.COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS c WHERE c.TABLE_SCHEMA = ?", "shop")
	require.NoError(t, err)

	got, err := database.ScanRows(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "orders", got[0]["TABLE_NAME"])
	assert.Equal(t, "id", got[1]["COLUMN_NAME"])

	d.Close()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriver_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectQuery("SELECT").WillReturnError(&gomysql.MySQLError{Number: 1146, Message: "Table 'x' doesn't exist"})

	d := &Driver{db: db}
	_, err = d.Query(context.Background(), "SELECT 1")
	assert.True(t, errs.IsQueryFailed(err))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"access denied", &gomysql.MySQLError{Number: 1045, Message: "denied"}, errs.ErrKindConnectionFailed},
		{"unknown database", &gomysql.MySQLError{Number: 1049, Message: "unknown"}, errs.ErrKindConnectionFailed},
		{"syntax", &gomysql.MySQLError{Number: 1064, Message: "syntax"}, errs.ErrKindQueryFailed},
		{"refused", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, errs.ErrKindConnectionFailed},
		{"invalid conn", gomysql.ErrInvalidConn, errs.ErrKindConnectionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapError(tt.err, "op").Kind)
		})
	}
	assert.Nil(t, mapError(nil, "op"))
}
