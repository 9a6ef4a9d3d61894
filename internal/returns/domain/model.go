package domain

import "time"

// Processing statuses written by admins.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusReturned   = "returned"
)

// Scan-in statuses accepted by the scan_in_item function, in their canonical casing.
const (
	ScanScanned   = "Scanned"
	ScanRejected  = "Rejected"
	ScanHauledOff = "Hauled Off"
)

// ItemView is one returnable item with the context of the pickup it belongs to.
type ItemView struct {
	ID                   string     `json:"id"`
	PickupID             string     `json:"pickup_id"`
	Embedded             bool       `json:"embedded,omitempty"`
	Name                 string     `json:"name"`
	Description          string     `json:"description,omitempty"`
	Quantity             string     `json:"quantity,omitempty"`
	Size                 string     `json:"size,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	PhotoURL             string     `json:"photo_url,omitempty"`
	QRURL                string     `json:"qr_url,omitempty"`
	ReturnLocationID     string     `json:"return_location_id,omitempty"`
	ReturnLocation       string     `json:"return_location"`
	Status               string     `json:"status"`
	StatusColor          string     `json:"status_color"`
	PickupAddress        string     `json:"pickup_address"`
	PickupReference      string     `json:"pickup_reference,omitempty"`
	CustomerName         string     `json:"customer_name,omitempty"`
	PickupScheduled      *time.Time `json:"pickup_scheduled"`
	PickupScheduledLabel string     `json:"pickup_scheduled_label"`
}

// Filter narrows the item list. Empty fields and "all" match everything.
type Filter struct {
	Status           string
	Term             string
	ReturnLocationID string
}

type ItemList struct {
	Items   []ItemView `json:"items"`
	Total   int        `json:"total"`
	Matched int        `json:"matched"`
}

type ReturnLocation struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ScanResult is what the scan_in_item function answered.
type ScanResult struct {
	ItemID string         `json:"item_id"`
	Status string         `json:"status"`
	Result map[string]any `json:"result,omitempty"`
}
