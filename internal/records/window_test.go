package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteWindow(t *testing.T) {
	t.Run("no timing fields gives an empty window", func(t *testing.T) {
		w := RouteWindow(map[string]any{"name": "North"}, nil)
		assert.Nil(t, w.Start)
		assert.Nil(t, w.End)
		assert.True(t, w.IsZero())
		assert.Equal(t, Placeholder, w.Label())
	})

	t.Run("min start and max end across route and pickups", func(t *testing.T) {
		route := map[string]any{
			"startTime": "2024-05-01T10:00:00Z",
			"endTime":   "2024-05-01T12:00:00Z",
		}
		pickups := []map[string]any{
			{"windowStart": "2024-05-01T09:00:00Z", "windowEnd": "2024-05-01T11:00:00Z"},
			{"timeWindow": map[string]any{"start": "2024-05-01T11:00:00Z", "end": "2024-05-01T14:30:00Z"}},
			{"notes": "no window"},
		}
		w := RouteWindow(route, pickups)
		require.NotNil(t, w.Start)
		require.NotNil(t, w.End)
		assert.Equal(t, 9, w.Start.UTC().Hour())
		assert.Equal(t, 14, w.End.UTC().Hour())
		assert.Equal(t, 30, w.End.UTC().Minute())
	})

	t.Run("pickup windows alone are enough", func(t *testing.T) {
		w := RouteWindow(map[string]any{}, []map[string]any{{"windowStart": "2024-05-01T09:00:00Z"}})
		require.NotNil(t, w.Start)
		assert.Nil(t, w.End)
	})
}

func TestClassify(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	at := func(h int, day int) *time.Time {
		v := time.Date(2024, 5, day, h, 0, 0, 0, time.UTC)
		return &v
	}

	t.Run("unknown without any signal", func(t *testing.T) {
		assert.Equal(t, Unknown, Classify(Window{}, nil, now))
	})

	t.Run("window straddling now is current", func(t *testing.T) {
		assert.Equal(t, Current, Classify(Window{Start: at(9, 1), End: at(15, 1)}, nil, now))
	})

	t.Run("window ahead and behind", func(t *testing.T) {
		assert.Equal(t, Upcoming, Classify(Window{Start: at(13, 1), End: at(15, 1)}, nil, now))
		assert.Equal(t, Past, Classify(Window{Start: at(8, 1), End: at(10, 1)}, nil, now))
	})

	t.Run("scheduled instant on the same day is current", func(t *testing.T) {
		assert.Equal(t, Current, Classify(Window{}, at(0, 1), now))
		assert.Equal(t, Current, Classify(Window{}, at(23, 1), now))
	})

	t.Run("scheduled instant on other days", func(t *testing.T) {
		assert.Equal(t, Upcoming, Classify(Window{}, at(9, 2), now))
		assert.Equal(t, Past, Classify(Window{}, at(9, 1), now.AddDate(0, 0, 1)))
	})

	t.Run("window wins over scheduled instant", func(t *testing.T) {
		assert.Equal(t, Past, Classify(Window{Start: at(8, 1), End: at(10, 1)}, at(12, 1), now))
	})

	t.Run("half-open window compares its instant", func(t *testing.T) {
		assert.Equal(t, Upcoming, Classify(Window{Start: at(9, 3)}, nil, now))
		assert.Equal(t, Current, Classify(Window{End: at(20, 1)}, nil, now))
	})
}

func TestRouteWithOnlyTodaysScheduleIsCurrent(t *testing.T) {
	now := time.Now()
	today := now.Format("2006-01-02")
	route := map[string]any{"date": today}

	w := RouteWindow(route, nil)
	require.True(t, w.IsZero())
	scheduled := FirstDate(route, RouteScheduleKeys...)
	require.NotNil(t, scheduled)
	assert.Equal(t, Current, Classify(w, scheduled, now))
}
