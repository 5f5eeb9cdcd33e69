package user

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет контракт хранилища участников.
// Реализация живёт в infrastructure/persistence.
type Repository interface {
	// Create сохраняет нового участника.
	// Возвращает shared.ErrAlreadyExists при дубликате ID или handle.
	Create(ctx context.Context, u *User) error

	// GetByID возвращает участника по Discord ID.
	// Возвращает shared.ErrUserNotFound, если участник не найден.
	GetByID(ctx context.Context, id DiscordID) (*User, error)

	// GetByHandle возвращает участника по handle LeetCode.
	GetByHandle(ctx context.Context, handle Handle) (*User, error)

	// GetAll возвращает всех участников для цикла синхронизации.
	GetAll(ctx context.Context) ([]*User, error)

	// ListByServer возвращает участников, состоящих в сообществе.
	ListByServer(ctx context.Context, serverID int64) ([]*User, error)

	// SaveStats сохраняет обновлённые счётчики и счёт участника.
	SaveStats(ctx context.Context, u *User) error

	// Delete удаляет участника и все его профили.
	Delete(ctx context.Context, id DiscordID) error
}

// ProfileRepository определяет контракт хранилища профилей.
type ProfileRepository interface {
	// Create сохраняет новый профиль участника в сообществе.
	Create(ctx context.Context, p *Profile) error

	// Get возвращает профиль по паре (участник, сообщество).
	// Возвращает shared.ErrProfileNotFound, если профиль не найден.
	Get(ctx context.Context, userID DiscordID, serverID int64) (*Profile, error)

	// ListByServer возвращает все профили сообщества.
	ListByServer(ctx context.Context, serverID int64) ([]*Profile, error)

	// Save сохраняет изменённый профиль (настройки отображения).
	Save(ctx context.Context, p *Profile) error

	// CreditWin атомарно засчитывает победу за границу boundary.
	// Начисление происходит только если отметка последнего начисления
	// в хранилище раньше boundary; иначе ErrWinAlreadyCounted.
	CreditWin(ctx context.Context, userID DiscordID, serverID int64, kind string, boundary time.Time) error

	// Delete удаляет профиль участника в сообществе.
	Delete(ctx context.Context, userID DiscordID, serverID int64) error
}

// StatsProvider - источник кумулятивной статистики внешнего judge.
// Реализация (GraphQL-клиент LeetCode) живёт в infrastructure/external.
type StatsProvider interface {
	// FetchUserStats возвращает свежие счётчики решённых задач.
	// Возвращает shared.ErrHandleNotFound, если handle не существует.
	FetchUserStats(ctx context.Context, handle Handle) (SubmissionCounts, error)
}
