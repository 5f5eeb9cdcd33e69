package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMidnight(t *testing.T) {
	at := time.Date(2025, 1, 15, 17, 45, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Midnight(at))
	assert.Equal(t, time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), NextMidnight(at))
}

func TestNextMidnight_AcrossMonth(t *testing.T) {
	at := time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), NextMidnight(at))
}

func TestInZone_FallbackToUTC(t *testing.T) {
	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	got := InZone(at, "Not/AZone")
	assert.Equal(t, time.UTC, got.Location())
}

func TestAgo(t *testing.T) {
	assert.Equal(t, "never", Ago(time.Time{}))
	assert.Equal(t, "just now", Ago(time.Now().Add(-10*time.Second)))
	assert.Equal(t, "5m ago", Ago(time.Now().Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", Ago(time.Now().Add(-3*time.Hour)))
	assert.Equal(t, "2d ago", Ago(time.Now().Add(-49*time.Hour)))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "850ms", FormatDuration(850*time.Millisecond))
	assert.Equal(t, "2.5s", FormatDuration(2500*time.Millisecond))
	assert.Equal(t, "4m10s", FormatDuration(4*time.Minute+10*time.Second))
	assert.Equal(t, "1h05m", FormatDuration(time.Hour+5*time.Minute))
}

func TestFormatBoundary(t *testing.T) {
	at := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-15 (Wed)", FormatBoundary(at))
}
