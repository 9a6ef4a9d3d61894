// Package activity describes the admin audit trail and the daily dashboard
// snapshots kept alongside it.
package activity

import (
	"context"
	"time"
)

// Actions recorded by admin operations.
const (
	ActionItemStatus = "item.status"
	ActionItemScan   = "item.scan"
	ActionToggleRole = "user.toggle_role"
	ActionSetAdmin   = "user.set_admin"
	ActionDeleteUser = "user.delete"
	ActionSignup     = "checkout.signup"
	ActionPurchase   = "checkout.purchase"
	ActionSnapshot   = "dashboard.snapshot"
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type Entry struct {
	ID        string         `json:"id"`
	ActorUID  string         `json:"actor_uid"`
	Action    string         `json:"action"`
	Target    string         `json:"target"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Snapshot is one day's dashboard summary.
type Snapshot struct {
	Day            time.Time `json:"day"`
	ActivePickups  int       `json:"active_pickups"`
	PendingReturns int       `json:"pending_returns"`
	CompletedToday int       `json:"completed_today"`
	RoutesCurrent  int       `json:"routes_current"`
	CreatedAt      time.Time `json:"created_at"`
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

type Snapshots interface {
	Upsert(ctx context.Context, s Snapshot) error
	ListSince(ctx context.Context, day time.Time) ([]Snapshot, error)
}

// Nop stands in when no database is configured: writes are dropped and
// reads are empty.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error                      { return nil }
func (Nop) ListRecent(context.Context, int) ([]Entry, error)         { return []Entry{}, nil }
func (Nop) Upsert(context.Context, Snapshot) error                   { return nil }
func (Nop) ListSince(context.Context, time.Time) ([]Snapshot, error) { return []Snapshot{}, nil }
