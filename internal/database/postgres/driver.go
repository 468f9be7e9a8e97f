package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/errs"
)

// Driver is a PostgreSQL implementation of database.DB backed by a single
// pgx connection. It is not safe for concurrent use.
type Driver struct {
	conn *pgx.Conn
}

// New connects to PostgreSQL using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	connCfg, err := buildConnConfig(cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid postgres configuration", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	conn, err := pgx.ConnectConfig(connectCtx, connCfg)
	if err != nil {
		return nil, mapError(err, "failed to connect")
	}

	d := &Driver{conn: conn}

	if err := d.Ping(connectCtx); err != nil {
		_ = conn.Close(context.Background())
		return nil, err
	}

	return d, nil
}

// Connect is New typed as a database.Connector.
func Connect(ctx context.Context, cfg *database.Config) (database.DB, error) {
	d, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// --- database.DB implementation ---

// Ping verifies the server still answers on the open connection.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.conn.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close terminates the connection. Calling it on a closed Driver is a no-op.
func (d *Driver) Close() {
	_ = d.conn.Close(context.Background())
}

// Query executes a SQL statement that returns multiple rows.
func (d *Driver) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	rows, err := d.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &pgxRows{rows: rows}, nil
}

// --- pgx type wrappers ---

// pgxRows wraps pgx.Rows to satisfy database.Rows.
type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *pgxRows) Close()                 { r.rows.Close() }
func (r *pgxRows) Err() error             { return r.rows.Err() }

func (r *pgxRows) Columns() ([]string, error) {
	descs := r.rows.FieldDescriptions()
	cols := make([]string, len(descs))
	for i, d := range descs {
		cols[i] = d.Name
	}
	return cols, nil
}

// --- error mapping ---

// PostgreSQL SQLSTATE codes and classes
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgClassConnection    = "08"
	pgClassInvalidAuth   = "28"
	pgErrInvalidCatalog  = "3D000" // database does not exist
	pgErrTooManyConnects = "53300"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	// Context cancellation / deadline exceeded
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	// No rows
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	// Postgres server-side error (SQLSTATE codes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := errs.ErrKindQueryFailed
		switch {
		case hasClass(pgErr.Code, pgClassConnection), hasClass(pgErr.Code, pgClassInvalidAuth):
			kind = errs.ErrKindConnectionFailed
		case pgErr.Code == pgErrInvalidCatalog, pgErr.Code == pgErrTooManyConnects:
			kind = errs.ErrKindConnectionFailed
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// Fallthrough: connection-level errors (TLS, network, auth)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func hasClass(code, class string) bool {
	return len(code) >= 2 && code[:2] == class
}
