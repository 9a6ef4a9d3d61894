package domain

import "errors"

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrInvalidDays   = errors.New("days must be between 1 and 365")

	ErrIncompleteSnapshot = errors.New("dashboard sections failed to load")
)
