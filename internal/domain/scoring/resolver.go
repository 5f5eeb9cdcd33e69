// Package scoring вычисляет счёт участника за период через
// разность снапшотов.
package scoring

import (
	"context"
	"log/slog"
	"time"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/leaderboard"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORE RESOLVER
// ══════════════════════════════════════════════════════════════════════════════

// Resolver отвечает на вопрос "сколько участник заработал строго
// внутри периода". Текущий открытый период считается как разность
// живого кумулятивного счёта и снапшота на конце предыдущего;
// закрытый - как разность двух снапшотов на границах.
type Resolver struct {
	snapshots leaderboard.SnapshotRepository
	profiles  user.ProfileRepository
	logger    *slog.Logger
	now       func() time.Time
}

// Option настраивает Resolver.
type Option func(*Resolver)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver создаёт Resolver.
func NewResolver(snapshots leaderboard.SnapshotRepository, profiles user.ProfileRepository, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		snapshots: snapshots,
		profiles:  profiles,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve вычисляет счёт участника за период.
//
//   - AllTime без wantPrevious: живой кумулятивный счёт.
//   - AllTime с wantPrevious: нарушение контракта вызывающего -
//     громкая ошибка, а не тихий ноль.
//   - Закрытый период (wantPrevious): снапшот ровно на конце минус
//     снапшот внутри [start, end); отсутствие любого из них - не
//     ошибка, а нулевой счёт (данных ещё нет).
//   - Открытый период: живой счёт минус ближайший снапшот на конце
//     или после него; без снапшота - ноль.
//
// Отрицательная разность - аномалия данных upstream: логируется
// предупреждением и прижимается к нулю.
func (r *Resolver) Resolve(ctx context.Context, u *user.User, kind shared.PeriodKind, wantPrevious bool) (user.Score, error) {
	if kind == shared.PeriodAllTime {
		if wantPrevious {
			return 0, shared.NewDomainError("scoring", "resolve", shared.ErrUnboundedPeriod,
				"alltime period has no previous interval")
		}
		return u.TotalScore, nil
	}

	start, end, err := leaderboard.Bounds(kind, r.now())
	if err != nil {
		return 0, err
	}

	if wantPrevious {
		return r.resolvePrevious(ctx, u, start, end)
	}
	return r.resolveCurrent(ctx, u, end)
}

// resolvePrevious считает счёт закрытого периода [start, end).
func (r *Resolver) resolvePrevious(ctx context.Context, u *user.User, start, end time.Time) (user.Score, error) {
	endSnap, err := r.snapshots.FindAt(ctx, u.ID, end)
	if err != nil {
		if shared.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}

	startSnap, err := r.snapshots.FindAtOrAfter(ctx, u.ID, start)
	if err != nil {
		if shared.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	// Ближайший снапшот после start может оказаться уже за концом
	// периода - тогда данных о начале периода нет.
	if !startSnap.BoundaryAt.Before(end) {
		return 0, nil
	}

	return r.clamp(u.ID, endSnap.Score-startSnap.Score), nil
}

// resolveCurrent считает счёт открытого периода: живой счёт минус
// база на конце предыдущего периода.
func (r *Resolver) resolveCurrent(ctx context.Context, u *user.User, end time.Time) (user.Score, error) {
	base, err := r.snapshots.FindAtOrAfter(ctx, u.ID, end)
	if err != nil {
		if shared.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}

	return r.clamp(u.ID, u.TotalScore-base.Score), nil
}

// clamp прижимает отрицательную дельту к нулю с предупреждением.
func (r *Resolver) clamp(id user.DiscordID, delta user.Score) user.Score {
	if delta < 0 {
		r.logger.Warn("negative score delta clamped to zero",
			slog.Int64("user_id", int64(id)),
			slog.Int("delta", int(delta)),
		)
		return 0
	}
	return delta
}

// ResolveWins возвращает количество побед участника в сообществе
// за вид периода. Отсутствие профиля - не ошибка, а ноль.
func (r *Resolver) ResolveWins(ctx context.Context, userID user.DiscordID, serverID int64, kind shared.PeriodKind) (int, error) {
	p, err := r.profiles.Get(ctx, userID, serverID)
	if err != nil {
		if shared.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return p.WinsFor(kind), nil
}
