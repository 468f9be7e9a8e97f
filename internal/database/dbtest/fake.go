// Package dbtest provides in-memory database.DB and database.Rows fakes for
// tests that should not need a running server.
package dbtest

import (
	"context"
	"fmt"

	"github.com/koustreak/metadump/internal/database"
)

// Rows is a canned result set. Scan only supports *any destinations,
// which is what database.ScanRows passes.
type Rows struct {
	Cols    []string
	Data    [][]any
	IterErr error

	pos    int
	Closed bool
}

// NewRows builds a result set from column names and row values.
func NewRows(cols []string, data ...[]any) *Rows {
	return &Rows{Cols: cols, Data: data}
}

func (r *Rows) Next() bool {
	if r.pos >= len(r.Data) {
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	row := r.Data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("dbtest: scan expected %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		p, ok := d.(*any)
		if !ok {
			return fmt.Errorf("dbtest: destination %d is %T, want *any", i, d)
		}
		*p = row[i]
	}
	return nil
}

func (r *Rows) Columns() ([]string, error) { return r.Cols, nil }
func (r *Rows) Close()                     { r.Closed = true }
func (r *Rows) Err() error                 { return r.IterErr }

// DB records the queries it receives and answers them with Rows.
type DB struct {
	Rows     *Rows
	QueryErr error

	Queries [][]any // each entry is {sql, args...}
	Closed  bool
}

func (d *DB) Ping(context.Context) error { return nil }

func (d *DB) Close() { d.Closed = true }

func (d *DB) Query(_ context.Context, sql string, args ...any) (database.Rows, error) {
	d.Queries = append(d.Queries, append([]any{sql}, args...))
	if d.QueryErr != nil {
		return nil, d.QueryErr
	}
	if d.Rows == nil {
		return NewRows(nil), nil
	}
	return d.Rows, nil
}

// Connector returns a database.Connector that hands out db, or fails with
// err when err is non-nil.
func Connector(db *DB, err error) database.Connector {
	return func(context.Context, *database.Config) (database.DB, error) {
		if err != nil {
			return nil, err
		}
		return db, nil
	}
}
