package postgres

import (
	"context"
	"database/sql"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// letting the same repository code run pooled or inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
