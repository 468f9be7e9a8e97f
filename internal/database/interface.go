package database

import "context"

// DB is the contract every engine adapter implements.
// Layers above this package talk only to this interface;
// they never import the postgres, mysql or sqlserver packages directly.
type DB interface {
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection. Safe to call more than once.
	Close()

	// Query executes a SQL statement that returns multiple rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Connector opens a DB for a given Config. Each adapter package exposes
// one as its Connect function.
type Connector func(ctx context.Context, cfg *Config) (DB, error)

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() ([]string, error)

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}
