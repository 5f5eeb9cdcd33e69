// Package user содержит доменную модель участника CodeGrind.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package user

import (
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// DiscordID представляет уникальный идентификатор аккаунта Discord.
type DiscordID int64

// IsValid проверяет, что DiscordID положительный.
func (d DiscordID) IsValid() bool {
	return d > 0
}

// String возвращает строковое представление идентификатора.
func (d DiscordID) String() string {
	return fmt.Sprintf("%d", d)
}

// Handle представляет имя пользователя на платформе LeetCode.
type Handle string

// IsValid проверяет корректность handle.
// LeetCode допускает буквы, цифры, дефисы и подчёркивания.
func (h Handle) IsValid() bool {
	s := string(h)
	if len(s) < 1 || len(s) > 40 {
		return false
	}
	return !strings.ContainsAny(s, " \t\n\r/\\")
}

// String возвращает строковое представление handle.
func (h Handle) String() string {
	return string(h)
}

// Score представляет взвешенную сумму решённых задач.
type Score int

// IsValid проверяет, что Score неотрицательный.
func (s Score) IsValid() bool {
	return s >= 0
}

// Веса сложности задач. Фиксированные константы, не выводятся из данных.
const (
	EasyWeight   = 1
	MediumWeight = 3
	HardWeight   = 7
)

// SubmissionCounts содержит кумулятивные счётчики решённых задач по сложности.
// Счётчики монотонно неубывающие - источником истины является внешний judge.
type SubmissionCounts struct {
	Easy   int
	Medium int
	Hard   int
}

// IsValid проверяет, что все счётчики неотрицательные.
func (c SubmissionCounts) IsValid() bool {
	return c.Easy >= 0 && c.Medium >= 0 && c.Hard >= 0
}

// Total возвращает общее количество решённых задач.
func (c SubmissionCounts) Total() int {
	return c.Easy + c.Medium + c.Hard
}

// Score вычисляет взвешенную сумму. Пересчитывается с нуля
// при каждом обновлении, а не инкрементально.
func (c SubmissionCounts) Score() Score {
	return Score(c.Easy*EasyWeight + c.Medium*MediumWeight + c.Hard*HardWeight)
}

// String возвращает строковое представление счётчиков.
func (c SubmissionCounts) String() string {
	return fmt.Sprintf("easy=%d medium=%d hard=%d", c.Easy, c.Medium, c.Hard)
}

// ══════════════════════════════════════════════════════════════════════════════
// USER ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// User представляет участника с привязанным аккаунтом LeetCode.
// Создаётся при успешной привязке аккаунта; счётчики обновляются
// циклом синхронизации; удаляется по явному запросу или при
// отсутствии членства в сообществах.
type User struct {
	// ID - идентификатор аккаунта Discord (внешний, непрозрачный).
	ID DiscordID

	// Handle - имя пользователя на LeetCode.
	Handle Handle

	// Counts - кумулятивные счётчики решённых задач.
	Counts SubmissionCounts

	// TotalScore - производный взвешенный счёт (кеш Counts.Score()).
	TotalScore Score

	// CreatedAt - время привязки аккаунта.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления статистики.
	UpdatedAt time.Time
}

// NewUser создаёт нового участника с валидацией.
func NewUser(id DiscordID, handle Handle, counts SubmissionCounts) (*User, error) {
	if !id.IsValid() {
		return nil, ErrInvalidID
	}
	if !handle.IsValid() {
		return nil, ErrInvalidHandle
	}
	if !counts.IsValid() {
		return nil, ErrInvalidCounts
	}

	now := time.Now().UTC()
	return &User{
		ID:         id,
		Handle:     handle,
		Counts:     counts,
		TotalScore: counts.Score(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// UpdateStats заменяет счётчики свежими данными judge и пересчитывает счёт.
// Возвращает дельту счёта. Отрицательная дельта не является ошибкой
// на этом уровне - upstream иногда корректирует данные; решение о
// клампинге принимает scoring-слой.
func (u *User) UpdateStats(counts SubmissionCounts) (Score, error) {
	if !counts.IsValid() {
		return 0, ErrInvalidCounts
	}

	oldScore := u.TotalScore
	u.Counts = counts
	u.TotalScore = counts.Score()
	u.UpdatedAt = time.Now().UTC()

	return u.TotalScore - oldScore, nil
}

// Touch обновляет отметку времени без изменения статистики.
func (u *User) Touch(at time.Time) {
	u.UpdatedAt = at.UTC()
}

// String возвращает строковое представление для логирования.
func (u *User) String() string {
	return fmt.Sprintf("User{ID: %d, Handle: %s, Score: %d}", u.ID, u.Handle, u.TotalScore)
}
