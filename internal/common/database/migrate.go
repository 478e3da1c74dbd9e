// internal/common/database/migrate.go
package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements are idempotent; Migrate may run on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            VARCHAR(36) PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		name          VARCHAR(255) NOT NULL,
		username      VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS saved_itineraries (
		id                VARCHAR(36) PRIMARY KEY,
		user_id           VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title             TEXT NOT NULL,
		destination       TEXT NOT NULL,
		starting_location TEXT NOT NULL,
		duration          TEXT NOT NULL,
		budget            TEXT NOT NULL,
		travel_type       TEXT NOT NULL,
		itinerary_data    TEXT NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_saved_itineraries_user_created
		ON saved_itineraries (user_id, created_at DESC)`,
}

// Migrate creates the tables used by the stores inside one transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
