package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_Validation(t *testing.T) {
	s, err := NewServer(7, "")
	require.NoError(t, err)
	assert.Equal(t, "UTC", s.Timezone)
	assert.Empty(t, s.NotifyChannelIDs)

	_, err = NewServer(-1, "UTC")
	assert.Error(t, err)

	_, err = NewServer(7, "Atlantis/Nowhere")
	assert.Error(t, err)
}

func TestServer_NotifyChannelSet(t *testing.T) {
	s, err := NewServer(7, "UTC")
	require.NoError(t, err)

	assert.True(t, s.AddNotifyChannel(100))
	assert.True(t, s.AddNotifyChannel(200))
	// Повторное добавление не создаёт дубликата.
	assert.False(t, s.AddNotifyChannel(100))
	assert.Equal(t, []int64{100, 200}, s.NotifyChannelIDs)

	assert.True(t, s.RemoveNotifyChannel(100))
	assert.False(t, s.RemoveNotifyChannel(100))
	assert.Equal(t, []int64{200}, s.NotifyChannelIDs)
}

func TestServer_MarkRefreshedRecordsBothEnds(t *testing.T) {
	s, err := NewServer(7, "Europe/Berlin")
	require.NoError(t, err)

	started := time.Date(2025, 1, 15, 0, 0, 1, 0, time.UTC)
	finished := started.Add(42 * time.Second)
	s.MarkRefreshed(started, finished)

	assert.Equal(t, started, s.LastRefreshStartedAt)
	assert.Equal(t, finished, s.LastRefreshAt)
	assert.Equal(t, finished, s.UpdatedAt)
}
