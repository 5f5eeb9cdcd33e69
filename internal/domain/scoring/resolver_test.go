package scoring

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/leaderboard"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

// ──────────────────────────────────────────────────────────────────────────────
// In-memory фейки хранилищ
// ──────────────────────────────────────────────────────────────────────────────

type fakeSnapshotRepo struct {
	snaps map[user.DiscordID][]*leaderboard.Snapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{snaps: make(map[user.DiscordID][]*leaderboard.Snapshot)}
}

func (f *fakeSnapshotRepo) Insert(_ context.Context, s *leaderboard.Snapshot) error {
	for _, existing := range f.snaps[s.UserID] {
		if existing.BoundaryAt.Equal(s.BoundaryAt) {
			return shared.ErrDuplicateSnapshot
		}
	}
	f.snaps[s.UserID] = append(f.snaps[s.UserID], s)
	sort.Slice(f.snaps[s.UserID], func(i, j int) bool {
		return f.snaps[s.UserID][i].BoundaryAt.Before(f.snaps[s.UserID][j].BoundaryAt)
	})
	return nil
}

func (f *fakeSnapshotRepo) FindAt(_ context.Context, id user.DiscordID, at time.Time) (*leaderboard.Snapshot, error) {
	for _, s := range f.snaps[id] {
		if s.BoundaryAt.Equal(at) {
			return s, nil
		}
	}
	return nil, shared.ErrSnapshotNotFound
}

func (f *fakeSnapshotRepo) FindAtOrAfter(_ context.Context, id user.DiscordID, at time.Time) (*leaderboard.Snapshot, error) {
	for _, s := range f.snaps[id] {
		if !s.BoundaryAt.Before(at) {
			return s, nil
		}
	}
	return nil, shared.ErrSnapshotNotFound
}

func (f *fakeSnapshotRepo) DeleteByUser(_ context.Context, id user.DiscordID) error {
	delete(f.snaps, id)
	return nil
}

type fakeProfileRepo struct {
	profiles map[[2]int64]*user.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[[2]int64]*user.Profile)}
}

func (f *fakeProfileRepo) Create(_ context.Context, p *user.Profile) error {
	f.profiles[[2]int64{int64(p.UserID), p.ServerID}] = p
	return nil
}

func (f *fakeProfileRepo) Get(_ context.Context, id user.DiscordID, serverID int64) (*user.Profile, error) {
	p, ok := f.profiles[[2]int64{int64(id), serverID}]
	if !ok {
		return nil, shared.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) ListByServer(_ context.Context, serverID int64) ([]*user.Profile, error) {
	var out []*user.Profile
	for k, p := range f.profiles {
		if k[1] == serverID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) Save(_ context.Context, p *user.Profile) error {
	f.profiles[[2]int64{int64(p.UserID), p.ServerID}] = p
	return nil
}

func (f *fakeProfileRepo) CreditWin(_ context.Context, id user.DiscordID, serverID int64, kind string, boundary time.Time) error {
	p, ok := f.profiles[[2]int64{int64(id), serverID}]
	if !ok {
		return shared.ErrProfileNotFound
	}
	return p.CreditWin(shared.PeriodKind(kind), boundary)
}

func (f *fakeProfileRepo) Delete(_ context.Context, id user.DiscordID, serverID int64) error {
	delete(f.profiles, [2]int64{int64(id), serverID})
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Хелперы
// ──────────────────────────────────────────────────────────────────────────────

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func mustUser(t *testing.T, counts user.SubmissionCounts) *user.User {
	t.Helper()
	u, err := user.NewUser(42, "grinder", counts)
	require.NoError(t, err)
	return u
}

func mustSnapshot(t *testing.T, repo *fakeSnapshotRepo, id user.DiscordID, boundary time.Time, counts user.SubmissionCounts) {
	t.Helper()
	s, err := leaderboard.NewSnapshot(id, boundary, counts)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), s))
}

func resolverAt(snaps *fakeSnapshotRepo, profiles *fakeProfileRepo, now time.Time) *Resolver {
	return NewResolver(snaps, profiles, testLogger, WithClock(func() time.Time { return now }))
}

// ──────────────────────────────────────────────────────────────────────────────
// Тесты
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_AllTimeLive(t *testing.T) {
	u := mustUser(t, user.SubmissionCounts{Easy: 10, Medium: 5, Hard: 2})
	r := resolverAt(newFakeSnapshotRepo(), newFakeProfileRepo(), time.Now())

	score, err := r.Resolve(context.Background(), u, shared.PeriodAllTime, false)
	require.NoError(t, err)
	// 10*1 + 5*3 + 2*7 = 39
	assert.Equal(t, user.Score(39), score)
}

func TestResolve_AllTimePreviousIsContractViolation(t *testing.T) {
	u := mustUser(t, user.SubmissionCounts{})
	r := resolverAt(newFakeSnapshotRepo(), newFakeProfileRepo(), time.Now())

	_, err := r.Resolve(context.Background(), u, shared.PeriodAllTime, true)
	assert.ErrorIs(t, err, shared.ErrUnboundedPeriod)
}

func TestResolve_PreviousDayDelta(t *testing.T) {
	// Кумулятивный счёт 200 на границе T, 230 на границе T+1d:
	// счёт за закрытый день равен 30.
	snaps := newFakeSnapshotRepo()
	boundary := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	mustSnapshot(t, snaps, 42, boundary.AddDate(0, 0, -1), user.SubmissionCounts{Easy: 200})
	mustSnapshot(t, snaps, 42, boundary, user.SubmissionCounts{Easy: 230})

	u := mustUser(t, user.SubmissionCounts{Easy: 230})
	r := resolverAt(snaps, newFakeProfileRepo(), boundary.Add(30*time.Minute))

	score, err := r.Resolve(context.Background(), u, shared.PeriodDay, true)
	require.NoError(t, err)
	assert.Equal(t, user.Score(30), score)
}

func TestResolve_PreviousMissingSnapshotIsZero(t *testing.T) {
	u := mustUser(t, user.SubmissionCounts{Easy: 100})
	r := resolverAt(newFakeSnapshotRepo(), newFakeProfileRepo(), time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))

	score, err := r.Resolve(context.Background(), u, shared.PeriodDay, true)
	require.NoError(t, err)
	assert.Equal(t, user.Score(0), score)
}

func TestResolve_PreviousStartSnapshotBeyondEndIsZero(t *testing.T) {
	// Единственный снапшот в диапазоне недели лежит уже на её конце:
	// базы начала периода нет, счёт нулевой.
	snaps := newFakeSnapshotRepo()
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	mustSnapshot(t, snaps, 42, monday, user.SubmissionCounts{Easy: 100})

	u := mustUser(t, user.SubmissionCounts{Easy: 100})
	r := resolverAt(snaps, newFakeProfileRepo(), monday.Add(2*time.Hour))

	score, err := r.Resolve(context.Background(), u, shared.PeriodWeek, true)
	require.NoError(t, err)
	assert.Equal(t, user.Score(0), score)
}

func TestResolve_CurrentOpenPeriod(t *testing.T) {
	// Живой счёт 250, база на полуночи 230: за открытый день
	// заработано 20.
	snaps := newFakeSnapshotRepo()
	boundary := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	mustSnapshot(t, snaps, 42, boundary, user.SubmissionCounts{Easy: 230})

	u := mustUser(t, user.SubmissionCounts{Easy: 250})
	r := resolverAt(snaps, newFakeProfileRepo(), boundary.Add(10*time.Hour))

	score, err := r.Resolve(context.Background(), u, shared.PeriodDay, false)
	require.NoError(t, err)
	assert.Equal(t, user.Score(20), score)
}

func TestResolve_CurrentWithoutBaseIsZero(t *testing.T) {
	u := mustUser(t, user.SubmissionCounts{Easy: 250})
	r := resolverAt(newFakeSnapshotRepo(), newFakeProfileRepo(), time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC))

	score, err := r.Resolve(context.Background(), u, shared.PeriodDay, false)
	require.NoError(t, err)
	assert.Equal(t, user.Score(0), score)
}

func TestResolve_NegativeDeltaClamped(t *testing.T) {
	// Upstream скорректировал данные вниз: счёт не уходит в минус.
	snaps := newFakeSnapshotRepo()
	boundary := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	mustSnapshot(t, snaps, 42, boundary.AddDate(0, 0, -1), user.SubmissionCounts{Easy: 300})
	mustSnapshot(t, snaps, 42, boundary, user.SubmissionCounts{Easy: 280})

	u := mustUser(t, user.SubmissionCounts{Easy: 280})
	r := resolverAt(snaps, newFakeProfileRepo(), boundary.Add(time.Hour))

	score, err := r.Resolve(context.Background(), u, shared.PeriodDay, true)
	require.NoError(t, err)
	assert.Equal(t, user.Score(0), score)

	// И на открытом периоде тоже.
	u2 := mustUser(t, user.SubmissionCounts{Easy: 270})
	score, err = r.Resolve(context.Background(), u2, shared.PeriodDay, false)
	require.NoError(t, err)
	assert.Equal(t, user.Score(0), score)
}

func TestResolveWins(t *testing.T) {
	profiles := newFakeProfileRepo()
	p, err := user.NewProfile(42, 7)
	require.NoError(t, err)
	require.NoError(t, p.CreditWin(shared.PeriodDay, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, profiles.Create(context.Background(), p))

	r := resolverAt(newFakeSnapshotRepo(), profiles, time.Now())

	wins, err := r.ResolveWins(context.Background(), 42, 7, shared.PeriodDay)
	require.NoError(t, err)
	assert.Equal(t, 1, wins)

	// Отсутствие профиля - ноль, а не ошибка.
	wins, err = r.ResolveWins(context.Background(), 99, 7, shared.PeriodDay)
	require.NoError(t, err)
	assert.Equal(t, 0, wins)
}
