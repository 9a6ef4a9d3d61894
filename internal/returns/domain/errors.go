package domain

import "errors"

var (
	ErrInvalidStatus     = errors.New("status must be one of pending, processing, returned")
	ErrInvalidScanStatus = errors.New("scan status must be one of Scanned, Rejected, Hauled Off")
	ErrItemNotFound      = errors.New("item not found")
	ErrMissingItemID     = errors.New("item id is required")
)
