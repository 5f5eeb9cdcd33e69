package leaderboard

import (
	"context"
	"time"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotRepository определяет контракт хранилища снапшотов.
type SnapshotRepository interface {
	// Insert сохраняет снапшот. При нарушении уникальности
	// (user, boundary) возвращает shared.ErrDuplicateSnapshot -
	// повторное закрытие той же границы не является сбоем.
	Insert(ctx context.Context, s *Snapshot) error

	// FindAt возвращает снапшот участника ровно на границе at.
	// Возвращает shared.ErrSnapshotNotFound при отсутствии.
	FindAt(ctx context.Context, userID user.DiscordID, at time.Time) (*Snapshot, error)

	// FindAtOrAfter возвращает ближайший снапшот участника на
	// границе at или после неё.
	FindAtOrAfter(ctx context.Context, userID user.DiscordID, at time.Time) (*Snapshot, error)

	// DeleteByUser удаляет все снапшоты участника (при отвязке
	// аккаунта).
	DeleteByUser(ctx context.Context, userID user.DiscordID) error
}

// Cache определяет контракт кеша готовых таблиц лидеров.
// Кеш опционален: промах или недоступность не являются ошибкой
// чтения - таблица пересчитывается.
type Cache interface {
	// Get возвращает закешированную таблицу либо shared.ErrNotFound.
	Get(ctx context.Context, key string) (*Ranking, error)

	// Set сохраняет таблицу с временем жизни ttl.
	Set(ctx context.Context, key string, r *Ranking, ttl time.Duration) error

	// Invalidate сбрасывает все таблицы сообщества.
	Invalidate(ctx context.Context, serverID int64) error
}
