package command

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/leaderboard"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/server"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

type linkFixture struct {
	users     *memUserRepo
	profiles  *memProfileRepo
	snapshots *memSnapshotRepo
	judge     *fakeJudge
	handler   *LinkAccountHandler
}

func newLinkFixture(t *testing.T, now time.Time) *linkFixture {
	t.Helper()

	f := &linkFixture{
		users:     &memUserRepo{users: make(map[user.DiscordID]*user.User)},
		profiles:  &memProfileRepo{profiles: make(map[[2]int64]*user.Profile)},
		snapshots: &memSnapshotRepo{snaps: make(map[user.DiscordID][]*leaderboard.Snapshot)},
		judge:     &fakeJudge{stats: make(map[user.Handle]user.SubmissionCounts), failFor: make(map[user.Handle]error)},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	servers := &memServerRepo{servers: make(map[int64]*server.Server)}

	f.handler = NewLinkAccountHandler(
		f.users, f.profiles, servers, f.snapshots, f.judge, nil, logger,
		WithLinkClock(func() time.Time { return now }),
	)
	return f
}

func TestLinkAccount_NewUserSeedsBaselineSnapshot(t *testing.T) {
	midday := boundary.Add(13 * time.Hour)
	f := newLinkFixture(t, midday)
	f.judge.stats["alice"] = user.SubmissionCounts{Easy: 40, Medium: 10}

	res, err := f.handler.Handle(context.Background(), LinkAccountCommand{
		UserID: 1, ServerID: 7, Handle: "alice",
	})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.False(t, res.AlreadyLinked)

	// The first period must score against the counts alice linked with,
	// so the link leaves a snapshot at today's boundary behind.
	assert.Equal(t, 1, f.snapshots.countFor(1, boundary))
	snap, err := f.snapshots.FindAt(context.Background(), 1, boundary)
	require.NoError(t, err)
	assert.Equal(t, user.SubmissionCounts{Easy: 40, Medium: 10}, snap.Counts)

	// Enrolled both in the initiating community and in the global one.
	for _, serverID := range []int64{7, server.GlobalServerID} {
		_, err := f.profiles.Get(context.Background(), 1, serverID)
		assert.NoError(t, err)
	}
}

func TestLinkAccount_RelinkKeepsExistingBaseline(t *testing.T) {
	midday := boundary.Add(13 * time.Hour)
	f := newLinkFixture(t, midday)
	f.judge.stats["alice"] = user.SubmissionCounts{Easy: 40}

	_, err := f.handler.Handle(context.Background(), LinkAccountCommand{UserID: 1, ServerID: 7, Handle: "alice"})
	require.NoError(t, err)

	// Linking from a second community adds a profile, nothing else.
	res, err := f.handler.Handle(context.Background(), LinkAccountCommand{UserID: 1, ServerID: 9, Handle: "alice"})
	require.NoError(t, err)

	assert.True(t, res.AlreadyLinked)
	assert.Equal(t, 1, f.snapshots.countFor(1, boundary))
	_, err = f.profiles.Get(context.Background(), 1, 9)
	assert.NoError(t, err)
}

func TestLinkAccount_UnknownHandleIsRejected(t *testing.T) {
	f := newLinkFixture(t, boundary)

	_, err := f.handler.Handle(context.Background(), LinkAccountCommand{UserID: 1, ServerID: 7, Handle: "ghost"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrHandleNotFound)

	// Nothing stored for a handle the judge does not know.
	_, err = f.users.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
	assert.Equal(t, 0, f.snapshots.countFor(1, boundary))
}

func TestUnlinkAccount_RemovesSnapshotHistory(t *testing.T) {
	f := newLinkFixture(t, boundary.Add(13*time.Hour))
	f.judge.stats["alice"] = user.SubmissionCounts{Easy: 40}

	_, err := f.handler.Handle(context.Background(), LinkAccountCommand{UserID: 1, ServerID: 7, Handle: "alice"})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	unlink := NewUnlinkAccountHandler(f.users, f.snapshots, nil, logger)
	require.NoError(t, unlink.Handle(context.Background(), UnlinkAccountCommand{UserID: 1}))

	_, err = f.users.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
	assert.Equal(t, 0, f.snapshots.countFor(1, boundary))
}
