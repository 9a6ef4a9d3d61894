package records

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDate(t *testing.T) {
	t.Run("malformed or missing input yields no date", func(t *testing.T) {
		inputs := []any{
			nil,
			"",
			"   ",
			"not a date",
			"2024-13-45",
			0,
			float64(0),
			map[string]any{"foo": "bar"},
			map[string]any{"seconds": "abc"},
			[]any{1, 2},
			true,
			time.Time{},
			(*time.Time)(nil),
		}
		for _, in := range inputs {
			_, ok := ToDate(in)
			assert.False(t, ok, "input %#v", in)
			assert.Nil(t, DatePtr(in))
			assert.Equal(t, Placeholder, FormatDateTime(DatePtr(in)))
			assert.Equal(t, Placeholder, FormatDate(DatePtr(in)))
		}
	})

	t.Run("timestamp wrapper", func(t *testing.T) {
		got, ok := ToDate(map[string]any{"seconds": int64(1700000000), "nanoseconds": int64(500)})
		require.True(t, ok)
		assert.Equal(t, time.Unix(1700000000, 500), got)

		got, ok = ToDate(map[string]any{"_seconds": float64(1700000000), "_nanoseconds": float64(0)})
		require.True(t, ok)
		assert.Equal(t, int64(1700000000), got.Unix())
	})

	t.Run("epoch milliseconds", func(t *testing.T) {
		got, ok := ToDate(int64(1700000000123))
		require.True(t, ok)
		assert.Equal(t, int64(1700000000123), got.UnixMilli())

		got, ok = ToDate(json.Number("1700000000000"))
		require.True(t, ok)
		assert.Equal(t, int64(1700000000), got.Unix())
	})

	t.Run("strings", func(t *testing.T) {
		got, ok := ToDate("2024-03-05T10:30:00Z")
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), got.UTC())

		got, ok = ToDate("2024-03-05")
		require.True(t, ok)
		assert.Equal(t, 5, got.Day())

		got, ok = ToDate("2024-03-05T10:30")
		require.True(t, ok)
		assert.Equal(t, 10, got.Hour())
	})

	t.Run("native time values", func(t *testing.T) {
		now := time.Now()
		got, ok := ToDate(now)
		require.True(t, ok)
		assert.True(t, now.Equal(got))

		got, ok = ToDate(&now)
		require.True(t, ok)
		assert.True(t, now.Equal(got))
	})
}

func TestFirstDate(t *testing.T) {
	doc := map[string]any{
		"scheduledTime": "garbage",
		"scheduledAt":   "2024-06-01T09:00:00Z",
		"date":          "2024-07-01T09:00:00Z",
	}
	got := FirstDate(doc, PickupScheduleKeys...)
	require.NotNil(t, got)
	assert.Equal(t, time.June, got.UTC().Month())

	assert.Nil(t, FirstDate(map[string]any{}, PickupScheduleKeys...))
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2024, 3, 5, 15, 4, 0, 0, time.Local)
	assert.Equal(t, "Mar 5, 2024, 3:04 PM", FormatDateTime(&ts))
	assert.Equal(t, "Mar 5, 2024", FormatDate(&ts))
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "12 Main St", FormatAddress("  12 Main St "))
	assert.Equal(t, "12 Main St • Austin, TX • 78701", FormatAddress(map[string]any{
		"street": "12 Main St", "city": "Austin", "state": "TX", "zip": "78701",
	}))
	assert.Equal(t, "Austin • 78701", FormatAddress(map[string]any{"city": "Austin", "zip": "78701"}))
	assert.Equal(t, "", FormatAddress(42))
	assert.Equal(t, Placeholder, OrPlaceholder(FormatAddress(nil)))

	t.Run("pickup falls back to pickupAddress", func(t *testing.T) {
		p := map[string]any{"pickupAddress": map[string]any{"street": "1 Elm", "city": "Reno", "state": "NV"}}
		assert.Equal(t, "1 Elm • Reno, NV", PickupAddress(p))
		assert.Equal(t, "9 Oak", PickupAddress(map[string]any{"address": "9 Oak", "pickupAddress": map[string]any{"street": "x"}}))
	})
}
