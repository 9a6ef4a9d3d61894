package records

import "strings"

// Bucket groups status strings with the same meaning across views.
type Bucket string

const (
	BucketDone    Bucket = "done"
	BucketActive  Bucket = "active"
	BucketPending Bucket = "pending"
	BucketFailed  Bucket = "failed"
	BucketOther   Bucket = "other"
)

const (
	ColorDone    = "#16a34a"
	ColorActive  = "#0284c7"
	ColorPending = "#a16207"
	ColorFailed  = "#dc2626"
	ColorDefault = "#475569"
)

// DefaultItemStatus is assumed for items that carry no status.
const DefaultItemStatus = "pending"

var statusBuckets = map[string]Bucket{
	"returned":    BucketDone,
	"complete":    BucketDone,
	"completed":   BucketDone,
	"done":        BucketDone,
	"delivered":   BucketDone,
	"hauled off":  BucketDone,
	"hauled_off":  BucketDone,
	"processing":  BucketActive,
	"active":      BucketActive,
	"in_progress": BucketActive,
	"in-progress": BucketActive,
	"ongoing":     BucketActive,
	"received":    BucketActive,
	"scanned":     BucketActive,
	"picked_up":   BucketActive,
	"pending":     BucketPending,
	"scheduled":   BucketPending,
	"queued":      BucketPending,
	"cancelled":   BucketFailed,
	"canceled":    BucketFailed,
	"failed":      BucketFailed,
	"rejected":    BucketFailed,
}

var bucketColors = map[Bucket]string{
	BucketDone:    ColorDone,
	BucketActive:  ColorActive,
	BucketPending: ColorPending,
	BucketFailed:  ColorFailed,
	BucketOther:   ColorDefault,
}

// NormalizeStatus lowercases and trims a status for comparison.
func NormalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// StatusBucket classifies any status string; unknown strings are BucketOther.
func StatusBucket(status string) Bucket {
	if b, ok := statusBuckets[NormalizeStatus(status)]; ok {
		return b
	}
	return BucketOther
}

// StatusColor maps every status string to a pill color.
func StatusColor(status string) string {
	return bucketColors[StatusBucket(status)]
}

// ItemStatus returns the item's status, defaulting to pending.
func ItemStatus(item map[string]any) string {
	if s := String(item, "status"); s != "" {
		return s
	}
	return DefaultItemStatus
}

// MatchStatus compares a record status with a filter value ignoring case.
// An empty filter or "all" matches everything.
func MatchStatus(status, filter string) bool {
	f := NormalizeStatus(filter)
	if f == "" || f == "all" {
		return true
	}
	return NormalizeStatus(status) == f
}

// MatchTerm reports whether term occurs in any of fields, ignoring case.
func MatchTerm(term string, fields ...string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return true
	}
	hay := strings.ToLower(joinNonEmpty(" ", fields...))
	return strings.Contains(hay, t)
}
