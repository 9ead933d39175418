package http

import (
	"time"

	xutil "NavPulse/pkg/util"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }

// ParseDateDefault parses an ISO date or returns default if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time {
	if t, ok := xutil.ParseDate(s); ok {
		return t
	}
	return def
}
