package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
)

func (d *DB) trace(ctx context.Context, query string, args ...interface{}) {
	if d.logger != nil {
		query = strings.Join(strings.Fields(query), " ")
		d.logger.DebugContext(ctx, "trace", "query", query, "args", args)
	}
}

// GetContext is a wrapper around sqlx.GetContext that logs the query and arguments.
func (d *DB) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	d.trace(ctx, query, args...)
	return d.DB.GetContext(ctx, dest, query, args...)
}

// QueryRowxContext is a wrapper around sqlx.QueryRowxContext that logs the query and arguments.
func (d *DB) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	d.trace(ctx, query, args...)
	return d.DB.QueryRowxContext(ctx, query, args...)
}

// ExecContext is a wrapper around sqlx.ExecContext that logs the query and arguments.
func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	d.trace(ctx, query, args...)
	return d.DB.ExecContext(ctx, query, args...)
}
