package records

import "time"

// Classification places a record relative to now.
type Classification string

const (
	Current  Classification = "current"
	Upcoming Classification = "upcoming"
	Past     Classification = "past"
	Unknown  Classification = "unknown"
)

var (
	windowStartKeys = []string{"windowStart", "startTime", "start", "timeWindow.start", "window.start"}
	windowEndKeys   = []string{"windowEnd", "endTime", "end", "timeWindow.end", "window.end"}

	// PickupScheduleKeys is the fallback chain for a pickup's scheduled instant.
	PickupScheduleKeys = []string{"scheduledTime", "scheduledTimeLocal", "scheduledAt", "date", "scheduledDate"}
	// RouteScheduleKeys is the fallback chain for a route's scheduled instant.
	RouteScheduleKeys = []string{"scheduledTime", "scheduledAt", "date", "scheduledDate"}
)

// Window is a derived start/end pair; either end may be nil.
type Window struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// IsZero reports whether the window has neither end.
func (w Window) IsZero() bool {
	return w.Start == nil && w.End == nil
}

// Label renders "start – end" with placeholders for missing ends.
func (w Window) Label() string {
	if w.IsZero() {
		return Placeholder
	}
	return FormatDateTime(w.Start) + " – " + FormatDateTime(w.End)
}

// WindowOf reads the explicit window fields of a single record.
func WindowOf(data map[string]any) Window {
	return Window{
		Start: FirstDate(data, windowStartKeys...),
		End:   FirstDate(data, windowEndKeys...),
	}
}

// RouteWindow derives a route's window from its own fields and the window
// fields of every pickup on it: the earliest start and the latest end.
func RouteWindow(route map[string]any, pickups []map[string]any) Window {
	w := WindowOf(route)
	for _, p := range pickups {
		pw := WindowOf(p)
		if pw.Start != nil && (w.Start == nil || pw.Start.Before(*w.Start)) {
			w.Start = pw.Start
		}
		if pw.End != nil && (w.End == nil || pw.End.After(*w.End)) {
			w.End = pw.End
		}
	}
	return w
}

// Classify places a record in time. A window that straddles now is current;
// without a window a scheduled instant on now's calendar day is current.
func Classify(w Window, scheduled *time.Time, now time.Time) Classification {
	switch {
	case w.Start != nil && w.End != nil:
		if now.Before(*w.Start) {
			return Upcoming
		}
		if now.After(*w.End) {
			return Past
		}
		return Current
	case w.Start != nil:
		return classifyInstant(*w.Start, now)
	case w.End != nil:
		return classifyInstant(*w.End, now)
	case scheduled != nil:
		return classifyInstant(*scheduled, now)
	}
	return Unknown
}

// SameDay reports whether t falls on now's calendar day in now's location.
func SameDay(t, now time.Time) bool {
	ty, tm, td := t.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}

func classifyInstant(t, now time.Time) Classification {
	if SameDay(t, now) {
		return Current
	}
	if t.After(now) {
		return Upcoming
	}
	return Past
}
