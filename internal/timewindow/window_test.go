package timewindow_test

import (
	"testing"
	"time"

	"github.com/tzachyh/telescan/internal/timewindow"
)

func jerusalem(t *testing.T) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("loading reference zone: %v", err)
	}
	return loc
}

func TestResolveExplicitBounds(t *testing.T) {
	t.Parallel()
	loc := jerusalem(t)

	w := timewindow.Resolve("2025-09-10", "2025-09-30T23:59:59", 0, loc)

	wantStart := time.Date(2025, 9, 10, 0, 0, 0, 0, loc)
	wantEnd := time.Date(2025, 9, 30, 23, 59, 59, 0, loc)

	if !w.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", w.Start, wantStart)
	}
	if !w.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", w.End, wantEnd)
	}
}

func TestResolveZonedBoundConverted(t *testing.T) {
	t.Parallel()
	loc := jerusalem(t)

	w := timewindow.Resolve("2025-09-10T00:00:00Z", "2025-09-20", 0, loc)

	wantStart := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want instant %v", w.Start, wantStart)
	}
	if w.Start.Location().String() != loc.String() {
		t.Errorf("Start location = %v, want %v", w.Start.Location(), loc)
	}
}

func TestResolveDefaultLookback(t *testing.T) {
	t.Parallel()
	loc := jerusalem(t)

	before := time.Now().In(loc)
	w := timewindow.Resolve("", "", 0, loc)
	after := time.Now().In(loc)

	if w.End.Before(before) || w.End.After(after) {
		t.Errorf("End = %v, want roughly now", w.End)
	}
	if got := w.End.Sub(w.Start); got != timewindow.DefaultLookback {
		t.Errorf("End-Start = %v, want %v", got, timewindow.DefaultLookback)
	}
}

func TestResolveIndividualOverrides(t *testing.T) {
	t.Parallel()
	loc := jerusalem(t)

	// Only end provided: start derived from it by lookback.
	w := timewindow.Resolve("", "2025-09-30", 48*time.Hour, loc)
	wantEnd := time.Date(2025, 9, 30, 0, 0, 0, 0, loc)
	if !w.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", w.End, wantEnd)
	}
	if !w.Start.Equal(wantEnd.Add(-48 * time.Hour)) {
		t.Errorf("Start = %v, want %v", w.Start, wantEnd.Add(-48*time.Hour))
	}

	// Only start provided: end defaults to now.
	w = timewindow.Resolve("2025-09-10", "", 0, loc)
	wantStart := time.Date(2025, 9, 10, 0, 0, 0, 0, loc)
	if !w.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", w.Start, wantStart)
	}
	if time.Until(w.End) > time.Minute {
		t.Errorf("End = %v, want roughly now", w.End)
	}
}

func TestResolveMalformedBoundFallsBack(t *testing.T) {
	t.Parallel()
	loc := jerusalem(t)

	w := timewindow.Resolve("not-a-date", "2025-09-30", 0, loc)

	wantEnd := time.Date(2025, 9, 30, 0, 0, 0, 0, loc)
	if !w.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", w.End, wantEnd)
	}
	if !w.Start.Equal(wantEnd.Add(-timewindow.DefaultLookback)) {
		t.Errorf("Start = %v, want end minus default lookback", w.Start)
	}
}

func TestInInclusiveBounds(t *testing.T) {
	t.Parallel()
	loc := jerusalem(t)

	start := time.Date(2025, 9, 10, 0, 0, 0, 0, loc)
	end := time.Date(2025, 9, 30, 23, 59, 59, 0, loc)
	w := timewindow.Window{Start: start, End: end, Loc: loc}

	testCases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"exactly at start", start, true},
		{"exactly at end", end, true},
		{"inside", start.Add(time.Hour), true},
		{"one second before start", start.Add(-time.Second), false},
		{"one second after end", end.Add(time.Second), false},
		{"same instant in UTC", end.UTC(), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := w.In(tc.t); got != tc.want {
				t.Errorf("In(%v) = %v, want %v", tc.t, got, tc.want)
			}
		})
	}
}
