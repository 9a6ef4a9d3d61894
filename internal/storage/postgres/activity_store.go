package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haulzy/haulzy-backend/internal/activity"
)

// ActivityStore handles PostgreSQL operations for the admin activity log
type ActivityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// Record inserts an entry, filling in its id and timestamp when unset.
func (s *ActivityStore) Record(ctx context.Context, e activity.Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	details, err := json.Marshal(e.Details)
	if err != nil || e.Details == nil {
		details = []byte("{}")
	}

	query := `
		INSERT INTO admin_activity (id, actor_uid, action, target, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.ExecContext(ctx, query, e.ID, e.ActorUID, e.Action, e.Target, details, e.CreatedAt); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first.
func (s *ActivityStore) ListRecent(ctx context.Context, limit int) ([]activity.Entry, error) {
	if limit <= 0 {
		limit = activity.DefaultListLimit
	}

	query := `
		SELECT id, actor_uid, action, target, details, created_at
		FROM admin_activity
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	entries := []activity.Entry{}
	for rows.Next() {
		var e activity.Entry
		var details []byte
		if err := rows.Scan(&e.ID, &e.ActorUID, &e.Action, &e.Target, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				e.Details = nil
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity: %w", err)
	}
	return entries, nil
}
