package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
)

func TestNewProfile_GlobalIsAnonymous(t *testing.T) {
	global, err := NewProfile(42, 0)
	require.NoError(t, err)
	assert.False(t, global.Prefs.ShowName)
	assert.False(t, global.Prefs.ShowHandle)

	regular, err := NewProfile(42, 7)
	require.NoError(t, err)
	assert.True(t, regular.Prefs.ShowName)
	assert.True(t, regular.Prefs.ShowHandle)
}

func TestProfile_CreditWin(t *testing.T) {
	p, err := NewProfile(42, 7)
	require.NoError(t, err)

	boundary := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, p.CreditWin(shared.PeriodDay, boundary))
	assert.Equal(t, 1, p.WinsFor(shared.PeriodDay))

	// Повторное начисление за ту же границу отклоняется.
	err = p.CreditWin(shared.PeriodDay, boundary)
	assert.ErrorIs(t, err, ErrWinAlreadyCounted)
	assert.Equal(t, 1, p.WinsFor(shared.PeriodDay))

	// Следующая граница - новое начисление.
	require.NoError(t, p.CreditWin(shared.PeriodDay, boundary.AddDate(0, 0, 1)))
	assert.Equal(t, 2, p.WinsFor(shared.PeriodDay))

	// Счётчики разных периодов независимы.
	require.NoError(t, p.CreditWin(shared.PeriodWeek, boundary))
	assert.Equal(t, 1, p.WinsFor(shared.PeriodWeek))
	assert.Equal(t, 0, p.WinsFor(shared.PeriodMonth))
}

func TestProfile_CreditWin_UnknownKind(t *testing.T) {
	p, err := NewProfile(42, 7)
	require.NoError(t, err)

	assert.Error(t, p.CreditWin(shared.PeriodAllTime, time.Now()))
}
