package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
)

func TestBounds_Day(t *testing.T) {
	// Среда 15 января 2025, 10:30 UTC.
	ref := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	start, end, err := Bounds(shared.PeriodDay, ref)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC), start)
}

func TestBounds_Week(t *testing.T) {
	tests := []struct {
		name      string
		ref       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "среда - конец в прошлый понедельник",
			ref:       time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "полночь понедельника - конец в эту же полночь",
			ref:       time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "воскресенье - конец в понедельник шесть дней назад",
			ref:       time.Date(2025, 1, 19, 23, 59, 0, 0, time.UTC),
			wantStart: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := Bounds(shared.PeriodWeek, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestBounds_Month(t *testing.T) {
	// Март после февраля: месяц не равен 30 дням.
	ref := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	start, end, err := Bounds(shared.PeriodMonth, ref)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestBounds_MonthAcrossYear(t *testing.T) {
	ref := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	start, end, err := Bounds(shared.PeriodMonth, ref)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestBounds_AllTime(t *testing.T) {
	_, _, err := Bounds(shared.PeriodAllTime, time.Now())
	assert.ErrorIs(t, err, shared.ErrUnboundedPeriod)
}

func TestBounds_InvalidKind(t *testing.T) {
	_, _, err := Bounds(shared.PeriodKind("century"), time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidPeriod)
}

// Границы соседних периодов не пересекаются и стыкуются:
// конец предыдущего периода равен началу текущего.
func TestBounds_DisjointContiguous(t *testing.T) {
	refs := []time.Time{
		time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC),
	}

	for _, kind := range shared.BoundedKinds() {
		for _, ref := range refs {
			start, end, err := Bounds(kind, ref)
			require.NoError(t, err)
			require.True(t, start.Before(end), "%s at %s: start must precede end", kind, ref)
		}
	}

	// Стыковка для дня: период, вычисленный на сутки раньше,
	// заканчивается ровно там, где начинается текущий.
	ref := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	start, _, err := Bounds(shared.PeriodDay, ref)
	require.NoError(t, err)
	_, prevEnd, err := Bounds(shared.PeriodDay, ref.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, start, prevEnd)

	// Для недели: неделей раньше.
	start, _, err = Bounds(shared.PeriodWeek, ref)
	require.NoError(t, err)
	_, prevEnd, err = Bounds(shared.PeriodWeek, ref.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, start, prevEnd)

	// Для месяца: через границу года.
	start, _, err = Bounds(shared.PeriodMonth, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, prevEnd, err = Bounds(shared.PeriodMonth, time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, start, prevEnd)
}

func TestClosesAt(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
		want Closes
	}{
		{
			name: "обычная полночь - закрывается только день",
			ref:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			want: Closes{Day: true},
		},
		{
			name: "полночь понедельника - день и неделя",
			ref:  time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
			want: Closes{Day: true, Week: true},
		},
		{
			name: "полночь первого числа - день и месяц",
			ref:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			want: Closes{Day: true, Month: true},
		},
		{
			name: "первое число и понедельник - всё сразу",
			ref:  time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			want: Closes{Day: true, Week: true, Month: true},
		},
		{
			name: "середина дня - ничего",
			ref:  time.Date(2025, 1, 15, 12, 30, 0, 0, time.UTC),
			want: Closes{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClosesAt(tt.ref))
		})
	}
}

func TestTruncate(t *testing.T) {
	ref := time.Date(2025, 1, 15, 23, 59, 59, 999, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Truncate(ref))
}
