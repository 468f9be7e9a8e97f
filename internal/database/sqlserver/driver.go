// Package sqlserver provides a Microsoft SQL Server implementation of
// database.DB on top of database/sql and go-mssqldb.
package sqlserver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/errs"
)

// Driver is a SQL Server implementation of database.DB.
// It holds at most one open connection.
type Driver struct {
	db *sql.DB
}

// New opens a SQL Server connection and verifies it with Ping.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	connector, err := mssql.NewConnector(buildDSN(cfg))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid sqlserver configuration", err)
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
	return &mssqlRows{rows: rows}, nil
}

type mssqlRows struct {
	rows *sql.Rows
}

func (r *mssqlRows) Next() bool                 { return r.rows.Next() }
func (r *mssqlRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *mssqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *mssqlRows) Close()                     { _ = r.rows.Close() }
func (r *mssqlRows) Err() error                 { return r.rows.Err() }

// SQL Server error numbers
// Full list: https://learn.microsoft.com/sql/relational-databases/errors-events/database-engine-events-and-errors
const (
	errLoginFailed      = 18456
	errCannotOpenDB     = 4060
	errSyntax           = 102
	errInvalidObject    = 208
	errInvalidColumn    = 207
	errPermissionDenied = 229
)

// mapError translates go-mssqldb errors into *errs.Error.
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

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		kind := errs.ErrKindQueryFailed
		switch msErr.Number {
		case errLoginFailed, errCannotOpenDB:
			kind = errs.ErrKindConnectionFailed
		case errSyntax, errInvalidObject, errInvalidColumn, errPermissionDenied:
			kind = errs.ErrKindQueryFailed
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, msErr.Message), err)
	}

	if errors.Is(err, driver.ErrBadConn) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	// Login failures surface as plain errors from the TDS handshake,
	// network failures as *net.OpError.
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
