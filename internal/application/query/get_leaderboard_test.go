package query

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

// ──────────────────────────────────────────────────────────────────────────────
// Фейки
// ──────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users map[user.DiscordID]*user.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id user.DiscordID) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByHandle(_ context.Context, handle user.Handle) (*user.User, error) {
	for _, u := range f.users {
		if u.Handle == handle {
			return u, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (f *fakeUserRepo) GetAll(_ context.Context) ([]*user.User, error) {
	var out []*user.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) ListByServer(_ context.Context, _ int64) ([]*user.User, error) {
	return f.GetAll(context.Background())
}

func (f *fakeUserRepo) SaveStats(_ context.Context, u *user.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id user.DiscordID) error {
	delete(f.users, id)
	return nil
}

type fakeProfileRepo struct {
	profiles []*user.Profile
}

func (f *fakeProfileRepo) Create(_ context.Context, p *user.Profile) error {
	f.profiles = append(f.profiles, p)
	return nil
}

func (f *fakeProfileRepo) Get(_ context.Context, id user.DiscordID, serverID int64) (*user.Profile, error) {
	for _, p := range f.profiles {
		if p.UserID == id && p.ServerID == serverID {
			return p, nil
		}
	}
	return nil, shared.ErrProfileNotFound
}

func (f *fakeProfileRepo) ListByServer(_ context.Context, serverID int64) ([]*user.Profile, error) {
	var out []*user.Profile
	for _, p := range f.profiles {
		if p.ServerID == serverID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) Save(_ context.Context, _ *user.Profile) error { return nil }

func (f *fakeProfileRepo) CreditWin(_ context.Context, id user.DiscordID, serverID int64, kind string, boundary time.Time) error {
	p, err := f.Get(context.Background(), id, serverID)
	if err != nil {
		return err
	}
	return p.CreditWin(shared.PeriodKind(kind), boundary)
}

func (f *fakeProfileRepo) Delete(_ context.Context, _ user.DiscordID, _ int64) error { return nil }

type fakeServerRepo struct {
	servers map[int64]*server.Server
}

func (f *fakeServerRepo) Create(_ context.Context, s *server.Server) error {
	f.servers[s.ID] = s
	return nil
}

func (f *fakeServerRepo) GetByID(_ context.Context, id int64) (*server.Server, error) {
	s, ok := f.servers[id]
	if !ok {
		return nil, shared.ErrServerNotFound
	}
	return s, nil
}

func (f *fakeServerRepo) GetAll(_ context.Context) ([]*server.Server, error) {
	var out []*server.Server
	for _, s := range f.servers {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeServerRepo) Save(_ context.Context, s *server.Server) error {
	f.servers[s.ID] = s
	return nil
}

func (f *fakeServerRepo) Delete(_ context.Context, id int64) error {
	delete(f.servers, id)
	return nil
}

// fakeResolver отдаёт заранее заданные счета и победы.
type fakeResolver struct {
	scores map[user.DiscordID]user.Score
	wins   map[user.DiscordID]int
}

func (f *fakeResolver) Resolve(_ context.Context, u *user.User, _ shared.PeriodKind, _ bool) (user.Score, error) {
	return f.scores[u.ID], nil
}

func (f *fakeResolver) ResolveWins(_ context.Context, id user.DiscordID, _ int64, _ shared.PeriodKind) (int, error) {
	return f.wins[id], nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Сборка
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	servers  *fakeServerRepo
	resolver *fakeResolver
	handler  *GetLeaderboardHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:    &fakeUserRepo{users: make(map[user.DiscordID]*user.User)},
		profiles: &fakeProfileRepo{},
		servers:  &fakeServerRepo{servers: make(map[int64]*server.Server)},
		resolver: &fakeResolver{scores: make(map[user.DiscordID]user.Score), wins: make(map[user.DiscordID]int)},
	}
	f.handler = NewGetLeaderboardHandler(
		f.users, f.profiles, f.servers, f.resolver, nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func (f *fixture) addServer(t *testing.T, id int64) {
	t.Helper()
	s, err := server.NewServer(id, "UTC")
	require.NoError(t, err)
	require.NoError(t, f.servers.Create(context.Background(), s))
}

func (f *fixture) addMember(t *testing.T, id user.DiscordID, handle user.Handle, serverID int64, score user.Score) {
	t.Helper()
	u, err := user.NewUser(id, handle, user.SubmissionCounts{})
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), u))

	p, err := user.NewProfile(id, serverID)
	require.NoError(t, err)
	require.NoError(t, f.profiles.Create(context.Background(), p))

	f.resolver.scores[id] = score
}

func dayQuery(serverID int64) GetLeaderboardQuery {
	return GetLeaderboardQuery{
		ServerID: serverID,
		Period:   shared.PeriodDay,
		SortKey:  leaderboard.SortByScore,
		Page:     1,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Тесты
// ──────────────────────────────────────────────────────────────────────────────

func TestGetLeaderboard_RanksAndPaginates(t *testing.T) {
	f := newFixture(t)
	f.addServer(t, 7)
	f.addMember(t, 1, "alice", 7, 50)
	f.addMember(t, 2, "bob", 7, 50)
	f.addMember(t, 3, "carol", 7, 30)

	res, err := f.handler.Handle(context.Background(), dayQuery(7))
	require.NoError(t, err)

	assert.False(t, res.Empty)
	require.Len(t, res.Entries, 3)
	assert.Equal(t, 1, res.Entries[0].Rank)
	assert.Equal(t, 1, res.Entries[1].Rank)
	assert.Equal(t, 2, res.Entries[2].Rank)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, 3, res.TotalUsers)
}

func TestGetLeaderboard_EmptyServerIsExplicit(t *testing.T) {
	f := newFixture(t)
	f.addServer(t, 7)

	res, err := f.handler.Handle(context.Background(), dayQuery(7))
	require.NoError(t, err)

	assert.True(t, res.Empty)
	assert.Empty(t, res.Entries)
	assert.Equal(t, 1, res.TotalPages)
}

func TestGetLeaderboard_GlobalAnonymity(t *testing.T) {
	f := newFixture(t)
	f.addServer(t, server.GlobalServerID)
	f.addMember(t, 1, "alice", server.GlobalServerID, 100)

	res, err := f.handler.Handle(context.Background(), dayQuery(server.GlobalServerID))
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, AnonymousName, res.Entries[0].DisplayName)
	assert.Empty(t, res.Entries[0].Handle)
	assert.Contains(t, res.Title, "Global")
}

func TestGetLeaderboard_SortByWins(t *testing.T) {
	f := newFixture(t)
	f.addServer(t, 7)
	f.addMember(t, 1, "alice", 7, 0)
	f.addMember(t, 2, "bob", 7, 0)
	f.resolver.wins[1] = 3
	f.resolver.wins[2] = 5

	q := dayQuery(7)
	q.SortKey = leaderboard.SortByWins

	res, err := f.handler.Handle(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "bob", res.Entries[0].DisplayName)
	assert.Equal(t, 5, res.Entries[0].Metric)
}

func TestGetLeaderboard_Validation(t *testing.T) {
	f := newFixture(t)
	f.addServer(t, 7)

	q := dayQuery(7)
	q.Period = shared.PeriodKind("decade")
	_, err := f.handler.Handle(context.Background(), q)
	assert.ErrorIs(t, err, shared.ErrValidation)

	q = dayQuery(7)
	q.Period = shared.PeriodAllTime
	q.Previous = true
	_, err = f.handler.Handle(context.Background(), q)
	assert.ErrorIs(t, err, shared.ErrValidation)

	q = dayQuery(7)
	q.SortKey = leaderboard.SortKey("luck")
	_, err = f.handler.Handle(context.Background(), q)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetLeaderboard_UnknownServer(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), dayQuery(404))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetLeaderboard_ClampsPage(t *testing.T) {
	f := newFixture(t)
	f.addServer(t, 7)
	for i := 1; i <= 25; i++ {
		f.addMember(t, user.DiscordID(i), user.Handle("u"+string(rune('a'+i%26))+"x"), 7, user.Score(100-i))
	}

	q := dayQuery(7)
	q.Page = 99
	q.PageSize = 10

	res, err := f.handler.Handle(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Page)
	assert.Len(t, res.Entries, 5)
	assert.Equal(t, 21, res.Entries[0].Rank)
}
