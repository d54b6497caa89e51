package reconcile

import (
	"fmt"
	"time"
)

// MonthKeyLayout is the wire format for accounting month keys.
const MonthKeyLayout = "2006-01"

// MonthWindow is one calendar-month accounting bucket. End is the first
// instant of the following month, so the window is [Start, End).
type MonthWindow struct {
	Key   string
	Start time.Time
	End   time.Time
}

// WindowForMonth builds the window containing the given date.
func WindowForMonth(date time.Time) MonthWindow {
	start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	return MonthWindow{
		Key:   start.Format(MonthKeyLayout),
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}

// WindowForKey builds the window for a YYYY-MM key.
func WindowForKey(key string) (MonthWindow, error) {
	start, err := time.Parse(MonthKeyLayout, key)
	if err != nil {
		return MonthWindow{}, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return WindowForMonth(start), nil
}

// Contains reports whether t falls inside the window.
func (w MonthWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// MonthKeys expands an inclusive date range into ordered YYYY-MM keys,
// one per calendar month. An inverted range yields an empty slice; callers
// treat that as "no report rows", not as an error.
func MonthKeys(start, end time.Time) []string {
	if end.Before(start) {
		return nil
	}
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	var keys []string
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		keys = append(keys, m.Format(MonthKeyLayout))
	}
	return keys
}

// MonthWindows is MonthKeys with each key expanded to its window.
func MonthWindows(start, end time.Time) []MonthWindow {
	keys := MonthKeys(start, end)
	windows := make([]MonthWindow, len(keys))
	for i, key := range keys {
		windows[i], _ = WindowForKey(key)
	}
	return windows
}
