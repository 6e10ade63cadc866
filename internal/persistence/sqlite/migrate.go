package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrationStep is one ordered schema change. Steps are applied exactly once
// and recorded in schema_migrations by version.
type migrationStep struct {
	version     int
	description string
	statements  []string
}

var migrations = []migrationStep{
	{
		version:     1,
		description: "create users and sessions",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id),
				token TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				revoked_at TEXT
			)`,
		},
	},
	{
		version:     2,
		description: "create rooms",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS rooms (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				capacity INTEGER NOT NULL CHECK (capacity >= 0),
				description TEXT NOT NULL DEFAULT '',
				amenities TEXT NOT NULL DEFAULT '',
				available INTEGER NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
	{
		version:     3,
		description: "create bookings",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS bookings (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id),
				room_id TEXT NOT NULL REFERENCES rooms(id),
				booking_date TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'cancelled')),
				created_at TEXT NOT NULL,
				CHECK (start_time < end_time)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_room_date ON bookings (room_id, booking_date, status)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id)`,
		},
	},
}

// Migrate applies all pending schema migrations in version order.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.DB().ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("failed to initialize schema_migrations: %w", err)
	}

	for _, step := range migrations {
		applied, err := migrationApplied(ctx, pool, step.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range step.statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d (%s) failed: %w", step.version, step.description, err)
				}
			}
			_, err := tx.Exec(
				"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
				step.version, step.description,
			)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func migrationApplied(ctx context.Context, pool *ConnectionPool, version int) (bool, error) {
	var count int
	err := pool.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %d: %w", version, err)
	}
	return count > 0, nil
}
