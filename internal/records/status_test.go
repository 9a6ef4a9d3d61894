package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusColor(t *testing.T) {
	cases := map[string]string{
		"returned":    ColorDone,
		"COMPLETED":   ColorDone,
		" Hauled Off": ColorDone,
		"Processing":  ColorActive,
		"in-progress": ColorActive,
		"Scanned":     ColorActive,
		"PENDING":     ColorPending,
		"scheduled":   ColorPending,
		"Canceled":    ColorFailed,
		"rejected":    ColorFailed,
		"":            ColorDefault,
		"mystery":     ColorDefault,
		"✨":           ColorDefault,
	}
	for in, want := range cases {
		assert.Equal(t, want, StatusColor(in), "status %q", in)
	}
}

func TestStatusBucket(t *testing.T) {
	assert.Equal(t, BucketDone, StatusBucket("Done"))
	assert.Equal(t, BucketActive, StatusBucket("ongoing"))
	assert.Equal(t, BucketPending, StatusBucket("queued"))
	assert.Equal(t, BucketFailed, StatusBucket("failed"))
	assert.Equal(t, BucketOther, StatusBucket("unheard of"))
}

func TestMatchStatus(t *testing.T) {
	record := map[string]any{"status": "Scanned"}
	assert.True(t, MatchStatus(ItemStatus(record), "scanned"))
	assert.True(t, MatchStatus("scanned", "SCANNED"))
	assert.True(t, MatchStatus("anything", "all"))
	assert.True(t, MatchStatus("anything", ""))
	assert.False(t, MatchStatus("returned", "pending"))

	assert.Equal(t, DefaultItemStatus, ItemStatus(map[string]any{}))
	assert.True(t, MatchStatus(ItemStatus(map[string]any{"status": ""}), "Pending"))
}

func TestMatchTerm(t *testing.T) {
	assert.True(t, MatchTerm("", "x"))
	assert.True(t, MatchTerm("main", "12 MAIN St", ""))
	assert.True(t, MatchTerm(" blender ", "", "Blender, red"))
	assert.False(t, MatchTerm("shoes", "Blender"))
}
