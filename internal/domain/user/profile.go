package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ОШИБКИ ДОМЕНА USER
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidID - некорректный идентификатор Discord.
	ErrInvalidID = errors.New("invalid discord id")

	// ErrInvalidHandle - некорректный handle LeetCode.
	ErrInvalidHandle = errors.New("invalid leetcode handle")

	// ErrInvalidCounts - отрицательные счётчики задач.
	ErrInvalidCounts = errors.New("invalid submission counts")

	// ErrWinAlreadyCounted - победа за этот период уже засчитана.
	ErrWinAlreadyCounted = errors.New("win already counted for period")
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPLAY PREFERENCES
// ══════════════════════════════════════════════════════════════════════════════

// DisplayPrefs определяет, как участник отображается в таблице лидеров
// конкретного сообщества. В глобальном сообществе действуют более
// строгие правила анонимности.
type DisplayPrefs struct {
	// ShowName - показывать ли имя Discord вместо плейсхолдера.
	ShowName bool

	// ShowHandle - показывать ли ссылку на профиль LeetCode.
	ShowHandle bool
}

// DefaultPrefs возвращает настройки по умолчанию для обычного сообщества.
func DefaultPrefs() DisplayPrefs {
	return DisplayPrefs{ShowName: true, ShowHandle: true}
}

// AnonymousPrefs возвращает настройки по умолчанию для глобального
// сообщества: участник скрыт, пока явно не согласится на показ.
func AnonymousPrefs() DisplayPrefs {
	return DisplayPrefs{ShowName: false, ShowHandle: false}
}

// ══════════════════════════════════════════════════════════════════════════════
// WIN COUNTERS
// ══════════════════════════════════════════════════════════════════════════════

// WinCounter хранит количество побед и отметку последнего начисления.
// Отметка служит защитой от двойного начисления: победа за границу B
// засчитывается только если UpdatedAt < B.
type WinCounter struct {
	Count     int
	UpdatedAt time.Time
}

// CanCredit проверяет, можно ли засчитать победу за границу boundary.
func (w WinCounter) CanCredit(boundary time.Time) bool {
	return w.UpdatedAt.Before(boundary)
}

// WinTotals группирует счётчики побед по видам периодов.
type WinTotals struct {
	Day   WinCounter
	Week  WinCounter
	Month WinCounter
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Profile связывает участника с сообществом: настройки отображения
// и счётчики побед действуют в рамках одного сообщества.
// Уникальность пары (UserID, ServerID) обеспечивает хранилище.
type Profile struct {
	UserID   DiscordID
	ServerID int64

	Prefs DisplayPrefs
	Wins  WinTotals

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProfile создаёт профиль участника в сообществе.
// Для глобального сообщества (serverID == 0) применяются анонимные
// настройки по умолчанию.
func NewProfile(userID DiscordID, serverID int64) (*Profile, error) {
	if !userID.IsValid() {
		return nil, ErrInvalidID
	}
	if serverID < 0 {
		return nil, fmt.Errorf("invalid server id: %d", serverID)
	}

	prefs := DefaultPrefs()
	if serverID == 0 {
		prefs = AnonymousPrefs()
	}

	now := time.Now().UTC()
	return &Profile{
		UserID:    userID,
		ServerID:  serverID,
		Prefs:     prefs,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CreditWin засчитывает победу за период, закрытый на границе boundary.
// Идемпотентно: повторный вызов с той же границей возвращает
// ErrWinAlreadyCounted и не меняет счётчик.
func (p *Profile) CreditWin(kind shared.PeriodKind, boundary time.Time) error {
	counter := p.counterFor(kind)
	if counter == nil {
		return fmt.Errorf("unknown period kind: %s", kind)
	}
	if !counter.CanCredit(boundary) {
		return ErrWinAlreadyCounted
	}

	counter.Count++
	counter.UpdatedAt = boundary
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// WinsFor возвращает количество побед за указанный вид периода.
func (p *Profile) WinsFor(kind shared.PeriodKind) int {
	if c := p.counterFor(kind); c != nil {
		return c.Count
	}
	return 0
}

func (p *Profile) counterFor(kind shared.PeriodKind) *WinCounter {
	switch kind {
	case shared.PeriodDay:
		return &p.Wins.Day
	case shared.PeriodWeek:
		return &p.Wins.Week
	case shared.PeriodMonth:
		return &p.Wins.Month
	default:
		return nil
	}
}

// UpdatePrefs заменяет настройки отображения.
func (p *Profile) UpdatePrefs(prefs DisplayPrefs) {
	p.Prefs = prefs
	p.UpdatedAt = time.Now().UTC()
}

// String возвращает строковое представление для логирования.
func (p *Profile) String() string {
	return fmt.Sprintf("Profile{User: %d, Server: %d}", p.UserID, p.ServerID)
}
