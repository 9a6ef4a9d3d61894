package domain

import (
	"time"

	"github.com/haulzy/haulzy-backend/internal/records"
)

// Section names used as keys of Overview.Errors.
const (
	SectionRoutes  = "routes"
	SectionPickups = "pickups"
	SectionItems   = "items"
	SectionUsers   = "users"
)

type ItemRef struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	NotFound    bool   `json:"not_found,omitempty"`
	Unloaded    bool   `json:"unloaded,omitempty"`
	Status      string `json:"status,omitempty"`
	StatusColor string `json:"status_color,omitempty"`
}

type PickupRef struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	NotFound bool   `json:"not_found,omitempty"`
	Unloaded bool   `json:"unloaded,omitempty"`
	Address  string `json:"address,omitempty"`
	Status   string `json:"status,omitempty"`
}

type RouteView struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Driver         string                 `json:"driver"`
	Status         string                 `json:"status"`
	StatusColor    string                 `json:"status_color"`
	Scheduled      *time.Time             `json:"scheduled"`
	WindowStart    *time.Time             `json:"window_start"`
	WindowEnd      *time.Time             `json:"window_end"`
	WindowLabel    string                 `json:"window_label"`
	Classification records.Classification `json:"classification"`
	Pickups        []PickupRef            `json:"pickups"`
}

// RouteDetail is one route with the sections that failed while joining it.
type RouteDetail struct {
	RouteView
	Errors map[string]string `json:"errors,omitempty"`
}

type PickupView struct {
	ID             string                 `json:"id"`
	Address        string                 `json:"address"`
	Customer       string                 `json:"customer"`
	Reference      string                 `json:"reference"`
	Scheduled      *time.Time             `json:"scheduled"`
	ScheduledLabel string                 `json:"scheduled_label"`
	WindowLabel    string                 `json:"window_label"`
	Status         string                 `json:"status"`
	StatusColor    string                 `json:"status_color"`
	Classification records.Classification `json:"classification"`
	Items          []ItemRef              `json:"items"`
}

// Summary holds the dashboard headline counts.
type Summary struct {
	ActivePickups  int `json:"active_pickups"`
	PendingReturns int `json:"pending_returns"`
	CompletedToday int `json:"completed_today"`
	RoutesCurrent  int `json:"routes_current"`
	RoutesUpcoming int `json:"routes_upcoming"`
}

type RouteGroups struct {
	Current  []RouteView `json:"current"`
	Upcoming []RouteView `json:"upcoming"`
	Past     []RouteView `json:"past"`
	Unknown  []RouteView `json:"unknown"`
}

// Overview is the reconciled admin dashboard. A section that failed to load
// is empty and has its message in Errors.
type Overview struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Summary     Summary           `json:"summary"`
	Routes      RouteGroups       `json:"routes"`
	Pickups     []PickupView      `json:"pickups"`
	Errors      map[string]string `json:"errors,omitempty"`
}
