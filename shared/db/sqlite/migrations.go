package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dfryer1193/keta/shared/db"
)

// migration represents a single database migration
type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of all database migrations.
// Each one runs inside its own transaction together with its bookkeeping row.
var migrations = []migration{
	{
		version: 1,
		name:    "create_kv_table",
		up: `
			CREATE TABLE IF NOT EXISTS kv (
				key TEXT PRIMARY KEY,
				value BLOB NOT NULL
			);
		`,
	},
}

// runMigrations executes all pending migrations
func runMigrations(ctx context.Context, sqlDB *sql.DB) error {
	_, err := sqlDB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return db.IOError("create schema_migrations table", err)
	}

	currentVersion := 0
	err = sqlDB.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return db.IOError("get current schema version", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		err := db.RunInTransaction(ctx, sqlDB, func(txCtx context.Context) error {
			executor := db.GetExecutor(txCtx, sqlDB)

			if _, err := executor.ExecContext(txCtx, m.up); err != nil {
				return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
			}

			_, err := executor.ExecContext(txCtx,
				"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
				m.version,
				m.name,
			)
			if err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
