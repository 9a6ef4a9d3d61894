package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS admin_activity (
		id         UUID PRIMARY KEY,
		actor_uid  TEXT NOT NULL,
		action     TEXT NOT NULL,
		target     TEXT NOT NULL DEFAULT '',
		details    JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS admin_activity_created_at_idx ON admin_activity (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS dashboard_snapshots (
		day             DATE PRIMARY KEY,
		active_pickups  INTEGER NOT NULL DEFAULT 0,
		pending_returns INTEGER NOT NULL DEFAULT 0,
		completed_today INTEGER NOT NULL DEFAULT 0,
		routes_current  INTEGER NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the activity and snapshot tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
