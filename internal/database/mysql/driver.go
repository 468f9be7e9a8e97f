package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/errs"
)

// Driver is a MySQL implementation of database.DB backed by database/sql.
// It holds at most one open connection.
type Driver struct {
	db *sql.DB
}

// New opens a MySQL connection using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning, and releases
// the handle again when the ping fails.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	connector, err := gomysql.NewConnector(buildConfig(cfg))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid mysql configuration", err)
	}
	return open(ctx, sql.OpenDB(connector), cfg)
}

// Connect is New typed as a database.Connector.
func Connect(ctx context.Context, cfg *database.Config) (database.DB, error) {
	d, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func open(ctx context.Context, db *sql.DB, cfg *database.Config) (*Driver, error) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &Driver{db: db}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return d, nil
}

// --- database.DB implementation ---

func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) Close() {
	_ = d.db.Close()
}

func (d *Driver) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &mysqlRows{rows: rows}, nil
}

// --- sql.DB type wrappers ---

type mysqlRows struct {
	rows *sql.Rows
}

func (r *mysqlRows) Next() bool                 { return r.rows.Next() }
func (r *mysqlRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *mysqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *mysqlRows) Close()                     { _ = r.rows.Close() }
func (r *mysqlRows) Err() error                 { return r.rows.Err() }

// --- error mapping ---

// mapError translates go-sql-driver/mysql errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(
			classifyMySQLCode(mysqlErr.Number),
			fmt.Sprintf("%s: %s", msg, mysqlErr.Message),
			err,
		)
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, gomysql.ErrInvalidConn) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	// Fallthrough: network-level failures (refused, DNS, TLS)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// MySQL server error numbers
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errDBAccessDenied   = 1044
	errAccessDenied     = 1045
	errNoDBSelected     = 1046
	errUnknownDatabase  = 1049
	errTooManyConns     = 1040
	errUserLimitReached = 1203
	errBadField         = 1054
	errParse            = 1064
	errNoSuchTable      = 1146
)

// classifyMySQLCode maps MySQL error numbers to ErrKind.
func classifyMySQLCode(code uint16) errs.ErrKind {
	switch code {
	case errDBAccessDenied, errAccessDenied, errNoDBSelected, errUnknownDatabase:
		return errs.ErrKindConnectionFailed
	case errTooManyConns, errUserLimitReached:
		return errs.ErrKindConnectionFailed
	case errBadField, errParse, errNoSuchTable:
		return errs.ErrKindQueryFailed
	default:
		return errs.ErrKindQueryFailed
	}
}
