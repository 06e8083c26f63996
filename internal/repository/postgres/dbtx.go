package postgres

import (
	"context"
	"database/sql"
)

// DBTX is a common interface for *sqlx.DB and *sqlx.Tx so the repository
// runs inside a rolled-back transaction in integration tests
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	PingContext(ctx context.Context) error
}
