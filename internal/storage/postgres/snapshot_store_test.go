package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulzy/haulzy-backend/internal/activity"
)

func TestSnapshotStore_Upsert(t *testing.T) {
	db, mock := setupDB(t)
	store := NewSnapshotStore(db)

	mock.ExpectExec(`INSERT INTO dashboard_snapshots`).
		WithArgs("2024-05-01", 3, 7, 2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Upsert(context.Background(), activity.Snapshot{
		Day:            time.Date(2024, 5, 1, 23, 55, 0, 0, time.UTC),
		ActivePickups:  3,
		PendingReturns: 7,
		CompletedToday: 2,
		RoutesCurrent:  1,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStore_ListSince(t *testing.T) {
	db, mock := setupDB(t)
	store := NewSnapshotStore(db)

	day1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"day", "active_pickups", "pending_returns", "completed_today", "routes_current", "created_at"}).
		AddRow(day1, 3, 7, 2, 1, day1.Add(23*time.Hour)).
		AddRow(day1.AddDate(0, 0, 1), 4, 5, 6, 2, day1.Add(47*time.Hour))

	mock.ExpectQuery(`SELECT day, active_pickups`).
		WithArgs("2024-05-01").
		WillReturnRows(rows)

	snaps, err := store.ListSince(context.Background(), day1)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 7, snaps[0].PendingReturns)
	assert.Equal(t, 6, snaps[1].CompletedToday)
	require.NoError(t, mock.ExpectationsWereMet())
}
