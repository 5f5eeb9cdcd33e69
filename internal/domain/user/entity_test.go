package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionCounts_Score(t *testing.T) {
	tests := []struct {
		name   string
		counts SubmissionCounts
		want   Score
	}{
		{"нулевые счётчики", SubmissionCounts{}, 0},
		{"только easy", SubmissionCounts{Easy: 10}, 10},
		{"взвешенная сумма", SubmissionCounts{Easy: 10, Medium: 5, Hard: 2}, 39},
		{"только hard", SubmissionCounts{Hard: 3}, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.counts.Score())
		})
	}
}

func TestNewUser_Validation(t *testing.T) {
	_, err := NewUser(0, "grinder", SubmissionCounts{})
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = NewUser(42, "", SubmissionCounts{})
	assert.ErrorIs(t, err, ErrInvalidHandle)

	_, err = NewUser(42, "bad handle", SubmissionCounts{})
	assert.ErrorIs(t, err, ErrInvalidHandle)

	_, err = NewUser(42, "grinder", SubmissionCounts{Easy: -1})
	assert.ErrorIs(t, err, ErrInvalidCounts)
}

func TestUser_UpdateStats(t *testing.T) {
	u, err := NewUser(42, "grinder", SubmissionCounts{Easy: 200})
	require.NoError(t, err)

	delta, err := u.UpdateStats(SubmissionCounts{Easy: 230})
	require.NoError(t, err)
	assert.Equal(t, Score(30), delta)
	assert.Equal(t, Score(230), u.TotalScore)

	// Отрицательная дельта на этом уровне допустима.
	delta, err = u.UpdateStats(SubmissionCounts{Easy: 220})
	require.NoError(t, err)
	assert.Equal(t, Score(-10), delta)
}
