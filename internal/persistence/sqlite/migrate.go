package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration pairs a monotonically increasing version with the statements
// that bring the schema to it. Applied versions are tracked in
// schema_migrations; the runner is safe to call on every startup.
type migration struct {
	version    int
	name       string
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "base schema",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS organizations (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS staff_users (
				id TEXT PRIMARY KEY,
				org_id TEXT NOT NULL REFERENCES organizations(id),
				email TEXT NOT NULL,
				display_name TEXT NOT NULL,
				role TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				disabled INTEGER NOT NULL DEFAULT 0,
				failed_attempts INTEGER NOT NULL DEFAULT 0,
				last_failed_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				UNIQUE (org_id, email)
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				staff_id TEXT NOT NULL REFERENCES staff_users(id),
				token TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				revoked_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS clients (
				id TEXT PRIMARY KEY,
				org_id TEXT NOT NULL REFERENCES organizations(id),
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				phone TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS locations (
				id TEXT PRIMARY KEY,
				org_id TEXT NOT NULL REFERENCES organizations(id),
				client_id TEXT NOT NULL REFERENCES clients(id),
				label TEXT NOT NULL,
				street TEXT NOT NULL,
				city TEXT NOT NULL,
				zip TEXT NOT NULL,
				gate_code TEXT,
				dog_count INTEGER NOT NULL DEFAULT 1 CHECK (dog_count >= 0),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS subscriptions (
				id TEXT PRIMARY KEY,
				org_id TEXT NOT NULL REFERENCES organizations(id),
				client_id TEXT NOT NULL REFERENCES clients(id),
				location_id TEXT NOT NULL REFERENCES locations(id),
				status TEXT NOT NULL,
				frequency TEXT NOT NULL,
				preferred_weekday INTEGER CHECK (preferred_weekday BETWEEN 0 AND 6),
				price_cents INTEGER NOT NULL CHECK (price_cents >= 0),
				start_date TEXT NOT NULL,
				end_date TEXT,
				next_service_date TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS jobs (
				id TEXT PRIMARY KEY,
				org_id TEXT NOT NULL REFERENCES organizations(id),
				client_id TEXT NOT NULL REFERENCES clients(id),
				location_id TEXT NOT NULL REFERENCES locations(id),
				subscription_id TEXT REFERENCES subscriptions(id),
				scheduled_date TEXT NOT NULL,
				status TEXT NOT NULL,
				price_cents INTEGER NOT NULL CHECK (price_cents >= 0),
				assigned_tech_id TEXT REFERENCES staff_users(id),
				completed_at TEXT,
				skipped_reason TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			// Regeneration relies on this to turn a concurrent duplicate
			// insert into a rejected write instead of a duplicate visit.
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_subscription_date
				ON jobs(subscription_id, scheduled_date)
				WHERE subscription_id IS NOT NULL AND status != 'CANCELED'`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_org_date ON jobs(org_id, scheduled_date)`,
			`CREATE TABLE IF NOT EXISTS quote_requests (
				id TEXT PRIMARY KEY,
				org_id TEXT NOT NULL REFERENCES organizations(id),
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				phone TEXT NOT NULL DEFAULT '',
				zip TEXT NOT NULL DEFAULT '',
				dog_count INTEGER NOT NULL DEFAULT 1 CHECK (dog_count >= 0),
				yard_size TEXT NOT NULL DEFAULT '',
				frequency_raw TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				notes TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
}

// Migrate applies pending schema migrations in order.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	err := pool.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		m := m
		err := pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
				}
			}
			_, err := tx.Exec(`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, datetime('now'))`, m.version, m.name)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}
