// Package timewindow resolves the absolute time window that scopes ingestion
// and fallback retrieval. The window is computed once at startup and stays
// fixed for the process lifetime.
package timewindow

import (
	"log/slog"
	"time"
)

// DefaultLookback is applied when no explicit start bound is configured.
const DefaultLookback = 7 * 24 * time.Hour

// boundLayouts are the accepted formats for explicit window bounds, tried in
// order. Naive values are interpreted in the reference zone.
var boundLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Window is a closed instant interval [Start, End] anchored to a single
// reference time zone.
type Window struct {
	Start time.Time
	End   time.Time
	Loc   *time.Location
}

// ParseBound parses an explicit window bound. Zoned values are converted to
// loc, naive values are assumed to already be in it. An empty or unparseable
// value yields a zero time, which callers treat as "not provided".
func ParseBound(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range boundLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.In(loc)
		}
	}
	slog.Warn("Unparseable window bound, falling back to default window rule", "value", s)
	return time.Time{}
}

// Resolve computes the window from the configured bounds. When both bounds
// are given they are used verbatim; otherwise end defaults to now and start
// to end minus lookback, each bound individually overridable.
func Resolve(startStr, endStr string, lookback time.Duration, loc *time.Location) Window {
	if lookback <= 0 {
		lookback = DefaultLookback
	}

	start := ParseBound(startStr, loc)
	end := ParseBound(endStr, loc)

	if !start.IsZero() && !end.IsZero() {
		return Window{Start: start, End: end, Loc: loc}
	}

	if end.IsZero() {
		end = time.Now().In(loc)
	}
	if start.IsZero() {
		start = end.Add(-lookback)
	}
	return Window{Start: start, End: end, Loc: loc}
}

// In reports whether t falls inside the window after conversion to the
// reference zone. Both bounds are inclusive.
func (w Window) In(t time.Time) bool {
	t = t.In(w.Loc)
	return !t.Before(w.Start) && !t.After(w.End)
}
