// Package dbtest provides testing utilities for database operations.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"adt-service/pkg/database"
)

// OpenSqlite opens a new temp SQLite database for testing.
// It closes the database when the test is done using tb.Cleanup.
func OpenSqlite(ctx context.Context, tb testing.TB) *database.DB {
	tb.Helper()
	if ctx == nil {
		ctx = context.TODO()
	}

	db, err := database.NewDatabase(ctx, database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(tb.TempDir(), "test.db"),
	}, nil)
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}

	tb.Cleanup(func() {
		if err := db.Close(); err != nil {
			tb.Error(err)
		}
	})
	return db
}
