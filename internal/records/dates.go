package records

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Placeholder is rendered wherever a value is missing or unparseable.
const Placeholder = "—"

const dateTimeLayout = "Jan 2, 2006, 3:04 PM"
const dateLayout = "Jan 2, 2006"

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ToDate coerces a store timestamp, epoch milliseconds or a date string into
// a time. It never panics; ok is false for anything it cannot read.
func ToDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case map[string]any:
		return timestampWrapper(t)
	case string:
		return parseDateString(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpochMillis(f)
	case int:
		return fromEpochMillis(float64(t))
	case int32:
		return fromEpochMillis(float64(t))
	case int64:
		return fromEpochMillis(float64(t))
	case float32:
		return fromEpochMillis(float64(t))
	case float64:
		return fromEpochMillis(t)
	}
	return time.Time{}, false
}

// DatePtr is ToDate returning nil for unparseable input.
func DatePtr(v any) *time.Time {
	t, ok := ToDate(v)
	if !ok {
		return nil
	}
	return &t
}

// FirstDate returns the first key among keys that holds a readable date.
func FirstDate(data map[string]any, keys ...string) *time.Time {
	for _, k := range keys {
		v, ok := Lookup(data, k)
		if !ok {
			continue
		}
		if t := DatePtr(v); t != nil {
			return t
		}
	}
	return nil
}

// FormatDateTime renders a medium date with a short time, or Placeholder.
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Placeholder
	}
	return t.In(time.Local).Format(dateTimeLayout)
}

// FormatDate renders a medium date, or Placeholder.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Placeholder
	}
	return t.In(time.Local).Format(dateLayout)
}

func timestampWrapper(m map[string]any) (time.Time, bool) {
	secRaw, ok := m["seconds"]
	if !ok {
		secRaw, ok = m["_seconds"]
	}
	if !ok {
		return time.Time{}, false
	}
	sec, ok := toFloat(secRaw)
	if !ok {
		return time.Time{}, false
	}
	var nsec float64
	if n, found := m["nanoseconds"]; found {
		nsec, _ = toFloat(n)
	} else if n, found := m["_nanoseconds"]; found {
		nsec, _ = toFloat(n)
	}
	return time.Unix(int64(sec), int64(nsec)), true
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromEpochMillis(ms float64) (time.Time, bool) {
	if ms == 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
