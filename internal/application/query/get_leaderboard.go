// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/leaderboard"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/server"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Получает страницу таблицы лидеров сообщества за период.
// Чистое чтение без побочных эффектов; рендеринг - забота вызывающего.
// ══════════════════════════════════════════════════════════════════════════════

// AnonymousName - плейсхолдер для участников, скрывших имя.
const AnonymousName = "Anonymous"

// GetLeaderboardQuery содержит параметры запроса таблицы лидеров.
type GetLeaderboardQuery struct {
	// ServerID - сообщество; 0 означает глобальную таблицу.
	ServerID int64

	// Period - вид периода (day/week/month/alltime).
	Period shared.PeriodKind

	// SortKey - метрика сортировки (score/wins).
	SortKey leaderboard.SortKey

	// Previous - показать закрытый период вместо текущего открытого.
	Previous bool

	// Page - запрашиваемая страница (1-based; за пределами диапазона
	// прижимается, не ошибка).
	Page int

	// PageSize - размер страницы (по умолчанию 10).
	PageSize int
}

// Validate проверяет корректность параметров запроса.
func (q *GetLeaderboardQuery) Validate() error {
	if q.ServerID < 0 {
		return errors.New("server id cannot be negative")
	}
	if !q.Period.IsValid() {
		return fmt.Errorf("invalid period kind: %q", q.Period)
	}
	if !q.SortKey.IsValid() {
		return fmt.Errorf("invalid sort key: %q", q.SortKey)
	}
	if q.Period == shared.PeriodAllTime && q.Previous {
		return errors.New("alltime period has no previous interval")
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = leaderboard.DefaultPageSize
	}
	return nil
}

// EntryDTO - одна строка таблицы для вызывающего.
type EntryDTO struct {
	// Rank - глобальная позиция (не перенумеровывается на странице).
	Rank int `json:"rank"`

	// DisplayName - имя или плейсхолдер анонимности.
	DisplayName string `json:"display_name"`

	// Handle - имя на LeetCode; пустое, если участник скрыл ссылку.
	Handle string `json:"handle,omitempty"`

	// Metric - значение выбранной метрики.
	Metric int `json:"metric"`

	// Medal - достоин ли участник особого знака ранга.
	Medal bool `json:"medal"`
}

// GetLeaderboardResult содержит страницу таблицы лидеров.
type GetLeaderboardResult struct {
	Title string `json:"title"`

	// Empty - в сообществе нет ни одного участника. Самостоятельное
	// состояние, а не страница нулевой длины.
	Empty bool `json:"empty"`

	Entries    []EntryDTO `json:"entries"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	TotalUsers int        `json:"total_users"`

	// LastRefreshAt - время последнего цикла обновления статистики.
	LastRefreshAt time.Time `json:"last_refresh_at"`

	GeneratedAt time.Time `json:"generated_at"`
}

// ScoreResolver - контракт вычисления счёта за период.
type ScoreResolver interface {
	Resolve(ctx context.Context, u *user.User, kind shared.PeriodKind, wantPrevious bool) (user.Score, error)
	ResolveWins(ctx context.Context, userID user.DiscordID, serverID int64, kind shared.PeriodKind) (int, error)
}

// GetLeaderboardHandler обрабатывает запросы таблицы лидеров.
type GetLeaderboardHandler struct {
	users    user.Repository
	profiles user.ProfileRepository
	servers  server.Repository
	resolver ScoreResolver
	cache    leaderboard.Cache
	logger   *slog.Logger
}

// NewGetLeaderboardHandler создаёт новый обработчик.
func NewGetLeaderboardHandler(
	users user.Repository,
	profiles user.ProfileRepository,
	servers server.Repository,
	resolver ScoreResolver,
	cache leaderboard.Cache,
	logger *slog.Logger,
) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{
		users:    users,
		profiles: profiles,
		servers:  servers,
		resolver: resolver,
		cache:    cache,
		logger:   logger,
	}
}

// Handle выполняет запрос страницы таблицы лидеров.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, query GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrValidation, err.Error(), err)
	}

	srv, err := h.servers.GetByID(ctx, query.ServerID)
	if err != nil {
		return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrNotFound, "server not found", err)
	}

	ranking, err := h.rankedFor(ctx, srv, query)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	title := buildTitle(srv, query)

	// Пустое сообщество - явное самостоятельное состояние.
	if ranking.IsEmpty() {
		return &GetLeaderboardResult{
			Title:         title,
			Empty:         true,
			Page:          1,
			TotalPages:    1,
			LastRefreshAt: srv.LastRefreshAt,
			GeneratedAt:   now,
		}, nil
	}

	page := ranking.Paginate(query.Page, query.PageSize)

	dtos := make([]EntryDTO, len(page.Entries))
	for i, e := range page.Entries {
		dtos[i] = EntryDTO{
			Rank:        e.Rank,
			DisplayName: e.DisplayName,
			Handle:      e.Handle.String(),
			Metric:      e.Metric,
			Medal:       e.Medal,
		}
	}

	return &GetLeaderboardResult{
		Title:         title,
		Entries:       dtos,
		Page:          page.Number,
		TotalPages:    page.TotalPages,
		TotalUsers:    page.TotalUsers,
		LastRefreshAt: srv.LastRefreshAt,
		GeneratedAt:   now,
	}, nil
}

// rankedFor строит отранжированную таблицу, используя кеш, где возможно.
func (h *GetLeaderboardHandler) rankedFor(ctx context.Context, srv *server.Server, query GetLeaderboardQuery) (*leaderboard.Ranking, error) {
	key := cacheKey(query)

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, key); err == nil {
			return cached, nil
		}
	}

	ranking, err := h.computeRanking(ctx, srv, query)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, ranking, cacheTTL(query.Period)); err != nil {
			// Недоступность кеша не критична для чтения.
			h.logger.Warn("leaderboard cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	return ranking, nil
}

// computeRanking вычисляет метрики всех участников сообщества
// и ранжирует их.
func (h *GetLeaderboardHandler) computeRanking(ctx context.Context, srv *server.Server, query GetLeaderboardQuery) (*leaderboard.Ranking, error) {
	profiles, err := h.profiles.ListByServer(ctx, srv.ID)
	if err != nil {
		return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrInternal, "failed to list profiles", err)
	}

	entries := make([]leaderboard.Entry, 0, len(profiles))
	for _, p := range profiles {
		u, err := h.users.GetByID(ctx, p.UserID)
		if err != nil {
			if shared.IsNotFound(err) {
				// Осиротевший профиль: участник уже отвязан.
				continue
			}
			return nil, err
		}

		metric, err := h.metricFor(ctx, u, p, query)
		if err != nil {
			return nil, err
		}

		entries = append(entries, leaderboard.Entry{
			UserID:      u.ID,
			DisplayName: displayName(u, p),
			Handle:      displayHandle(u, p),
			Metric:      metric,
		})
	}

	return leaderboard.Rank(srv.ID, query.Period, query.SortKey, entries), nil
}

// metricFor возвращает значение метрики участника по ключу сортировки.
func (h *GetLeaderboardHandler) metricFor(ctx context.Context, u *user.User, p *user.Profile, query GetLeaderboardQuery) (int, error) {
	switch query.SortKey {
	case leaderboard.SortByWins:
		return h.resolver.ResolveWins(ctx, u.ID, p.ServerID, query.Period)
	default:
		score, err := h.resolver.Resolve(ctx, u, query.Period, query.Previous)
		return int(score), err
	}
}

// displayName учитывает настройки анонимности профиля.
func displayName(u *user.User, p *user.Profile) string {
	if !p.Prefs.ShowName {
		return AnonymousName
	}
	return u.Handle.String()
}

// displayHandle скрывает ссылку на профиль, если участник этого хочет.
func displayHandle(u *user.User, p *user.Profile) user.Handle {
	if !p.Prefs.ShowHandle {
		return ""
	}
	return u.Handle
}

// buildTitle строит заголовок таблицы для отображения.
func buildTitle(srv *server.Server, query GetLeaderboardQuery) string {
	scope := "Server"
	if srv.IsGlobal() {
		scope = "Global"
	}

	var period string
	switch query.Period {
	case shared.PeriodDay:
		period = "Daily"
	case shared.PeriodWeek:
		period = "Weekly"
	case shared.PeriodMonth:
		period = "Monthly"
	default:
		period = "All-Time"
	}

	if query.Previous {
		period = "Last " + period
	}
	if query.SortKey == leaderboard.SortByWins {
		period += " Wins"
	}

	return fmt.Sprintf("%s %s Leaderboard", scope, period)
}

// cacheKey строит ключ кеша. Страница в ключ не входит: кешируется
// весь отранжированный список, пагинация выполняется поверх него.
func cacheKey(query GetLeaderboardQuery) string {
	prev := "current"
	if query.Previous {
		prev = "previous"
	}
	return fmt.Sprintf("leaderboard:%d:%s:%s:%s", query.ServerID, query.Period, query.SortKey, prev)
}

// cacheTTL подбирает время жизни кеша под период: открытый день
// меняется быстро, месяц - медленно.
func cacheTTL(kind shared.PeriodKind) time.Duration {
	switch kind {
	case shared.PeriodDay:
		return 2 * time.Minute
	case shared.PeriodWeek:
		return 5 * time.Minute
	case shared.PeriodMonth:
		return 10 * time.Minute
	default:
		return 5 * time.Minute
	}
}
