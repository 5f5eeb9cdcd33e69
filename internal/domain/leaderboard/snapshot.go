package leaderboard

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot - неизменяемая запись кумулятивной статистики участника
// на границе периода. Записи только добавляются; инвариант "не более
// одного снапшота на пару (участник, граница)" обеспечивается
// уникальным ключом хранилища.
//
// Все закрытия пишутся с дневной гранулярностью: недельные и месячные
// дельты выводятся поиском ближайшего снапшота на границе или после
// неё.
type Snapshot struct {
	ID     uuid.UUID
	UserID user.DiscordID

	// BoundaryAt - граница периода, всегда полночь UTC.
	BoundaryAt time.Time

	Counts user.SubmissionCounts
	Score  user.Score

	CreatedAt time.Time
}

// NewSnapshot создаёт снапшот на границе boundary с валидацией.
func NewSnapshot(userID user.DiscordID, boundary time.Time, counts user.SubmissionCounts) (*Snapshot, error) {
	if !userID.IsValid() {
		return nil, user.ErrInvalidID
	}
	if !counts.IsValid() {
		return nil, user.ErrInvalidCounts
	}

	boundary = boundary.UTC()
	if boundary.Hour() != 0 || boundary.Minute() != 0 || boundary.Second() != 0 {
		return nil, fmt.Errorf("snapshot boundary must be midnight UTC, got %s", boundary)
	}

	return &Snapshot{
		ID:         uuid.New(),
		UserID:     userID,
		BoundaryAt: boundary,
		Counts:     counts,
		Score:      counts.Score(),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// String возвращает строковое представление для логирования.
func (s *Snapshot) String() string {
	return fmt.Sprintf("Snapshot{User: %d, Boundary: %s, Score: %d}",
		s.UserID, s.BoundaryAt.Format("2006-01-02"), s.Score)
}
