package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/haulzy/haulzy-backend/internal/activity"
)

// SnapshotStore keeps one dashboard summary per day.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Upsert writes the snapshot for its day, replacing an earlier one.
func (s *SnapshotStore) Upsert(ctx context.Context, snap activity.Snapshot) error {
	query := `
		INSERT INTO dashboard_snapshots (day, active_pickups, pending_returns, completed_today, routes_current)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (day) DO UPDATE SET
			active_pickups = EXCLUDED.active_pickups,
			pending_returns = EXCLUDED.pending_returns,
			completed_today = EXCLUDED.completed_today,
			routes_current = EXCLUDED.routes_current,
			created_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query,
		snap.Day.Format("2006-01-02"),
		snap.ActivePickups,
		snap.PendingReturns,
		snap.CompletedToday,
		snap.RoutesCurrent,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// ListSince returns snapshots from day onwards, oldest first.
func (s *SnapshotStore) ListSince(ctx context.Context, day time.Time) ([]activity.Snapshot, error) {
	query := `
		SELECT day, active_pickups, pending_returns, completed_today, routes_current, created_at
		FROM dashboard_snapshots
		WHERE day >= $1
		ORDER BY day ASC
	`
	rows, err := s.db.QueryContext(ctx, query, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []activity.Snapshot{}
	for rows.Next() {
		var snap activity.Snapshot
		if err := rows.Scan(
			&snap.Day,
			&snap.ActivePickups,
			&snap.PendingReturns,
			&snap.CompletedToday,
			&snap.RoutesCurrent,
			&snap.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return snaps, nil
}
