package repository

import (
	"context"
	"fmt"

	"adt-service/pkg/database"
)

const tableName = "adt"

var schemas = map[string]string{
	database.DriverMySQL: `
		CREATE TABLE IF NOT EXISTS adt (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			owner VARCHAR(120) NOT NULL,
			header VARCHAR(120) NOT NULL,
			description TEXT NOT NULL,
			creation_time DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	database.DriverPostgres: `
		CREATE TABLE IF NOT EXISTS adt (
			id BIGSERIAL PRIMARY KEY,
			owner VARCHAR(120) NOT NULL,
			header VARCHAR(120) NOT NULL,
			description TEXT NOT NULL,
			creation_time TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	database.DriverSQLite: `
		CREATE TABLE IF NOT EXISTS adt (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner VARCHAR(120) NOT NULL,
			header VARCHAR(120) NOT NULL,
			description TEXT NOT NULL,
			creation_time DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
}

// EnsureSchema creates the advertisement table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	schema, ok := schemas[db.DriverName()]
	if !ok {
		return fmt.Errorf("no %s schema for driver %q", tableName, db.DriverName())
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create %s table: %w", tableName, err)
	}
	return nil
}
