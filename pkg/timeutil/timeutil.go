// Package timeutil provides display-oriented time helpers for the
// leaderboard service. All period math lives in the domain and is UTC
// only; this package covers the presentation side - converting
// boundaries into a community's timezone and humanizing ages.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// InZone converts a UTC instant into the given IANA zone, falling back
// to UTC when the zone name does not resolve.
func InZone(t time.Time, zone string) time.Time {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return t.UTC()
	}
	return t.In(loc)
}

// Midnight returns midnight UTC of the day containing t.
func Midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NextMidnight returns the first midnight UTC strictly after t.
func NextMidnight(t time.Time) time.Time {
	return Midnight(t).AddDate(0, 0, 1)
}

// Ago humanizes the age of a timestamp: "just now", "5m ago", "3h ago",
// "2d ago". Zero timestamps read as "never".
func Ago(t time.Time) string {
	if t.IsZero() || t.Unix() <= 0 {
		return "never"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// FormatDuration renders a duration in the largest sensible unit:
// "850ms", "2.5s", "4m10s", "1h05m".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// FormatBoundary renders a period boundary for announcements, e.g.
// "2025-01-15 (Wed)".
func FormatBoundary(t time.Time) string {
	return t.UTC().Format("2006-01-02 (Mon)")
}
