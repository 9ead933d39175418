package util

import (
	"time"
)

// DateLayout is the on-disk and wire format for NAV dates.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO date (2006-01-02), also accepting RFC3339
// timestamps from upstreams that attach a time component. The result is
// normalized to UTC midnight. Returns (t, true) if any layout worked.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Midnight(t), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Midnight(t), true
	}
	return time.Time{}, false
}

// FormatDate renders a date in the cache file layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight truncates a timestamp to its UTC calendar date.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two timestamps fall on the same UTC calendar date.
func SameDate(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}
