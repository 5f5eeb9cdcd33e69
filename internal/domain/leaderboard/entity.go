package leaderboard

import (
	"sort"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// SORT KEY
// ══════════════════════════════════════════════════════════════════════════════

// SortKey - метрика, по которой строится таблица лидеров.
type SortKey string

const (
	// SortByScore - взвешенный счёт за период.
	SortByScore SortKey = "score"

	// SortByWins - количество побед за период.
	SortByWins SortKey = "wins"
)

// IsValid проверяет корректность ключа сортировки.
func (k SortKey) IsValid() bool {
	return k == SortByScore || k == SortByWins
}

// String возвращает строковое представление.
func (k SortKey) String() string {
	return string(k)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTRY / RANKING
// ══════════════════════════════════════════════════════════════════════════════

// Entry - одна строка таблицы лидеров. Rank присваивается один раз
// на весь список; пагинация его не перенумеровывает.
type Entry struct {
	UserID      user.DiscordID
	DisplayName string
	Handle      user.Handle

	// Metric - значение выбранной метрики (счёт или победы).
	Metric int

	// Rank - конкурентный ранг: равные метрики делят ранг,
	// следующее отличное значение увеличивает ранг на единицу.
	Rank int

	// Medal сообщает, достоин ли участник особого знака ранга.
	// Нулевая метрика знака не получает независимо от позиции.
	Medal bool
}

// Ranking - отранжированный список участников сообщества.
type Ranking struct {
	ServerID int64
	Period   shared.PeriodKind
	Key      SortKey
	Entries  []Entry
}

// IsEmpty сообщает, что в сообществе нет ни одного участника.
// Пустая таблица - самостоятельный результат, а не страница
// нулевой длины.
func (r *Ranking) IsEmpty() bool {
	return len(r.Entries) == 0
}

// Rank строит таблицу лидеров из пар (участник, метрика).
// Сортировка стабильная по убыванию метрики; при равенстве порядок
// входа сохраняется. Ранги конкурентные: [50, 50, 30, 10] даёт
// ранги [1, 1, 2, 3].
func Rank(serverID int64, period shared.PeriodKind, key SortKey, entries []Entry) *Ranking {
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Metric > ranked[j].Metric
	})

	rank := 0
	prev := -1
	for i := range ranked {
		if i == 0 || ranked[i].Metric != prev {
			rank++
			prev = ranked[i].Metric
		}
		ranked[i].Rank = rank
		ranked[i].Medal = ranked[i].Metric != 0
	}

	return &Ranking{
		ServerID: serverID,
		Period:   period,
		Key:      key,
		Entries:  ranked,
	}
}

// WinnersOnly возвращает усечённый список победителей: первые две
// группы рангов целиком ([100, 80, 80, 50] даёт три строки с рангами
// 1, 2, 2 - строка ранга 3 исключена), обрыв на первой нулевой
// метрике даже внутри пьедестала. Период, где все метрики нулевые,
// победителей не имеет.
func (r *Ranking) WinnersOnly() []Entry {
	var winners []Entry
	for _, e := range r.Entries {
		if e.Metric == 0 || e.Rank > 2 {
			break
		}
		winners = append(winners, e)
	}
	return winners
}

// TopScore возвращает максимальную метрику в таблице, либо 0
// для пустой таблицы.
func (r *Ranking) TopScore() int {
	if len(r.Entries) == 0 {
		return 0
	}
	return r.Entries[0].Metric
}

// Champions возвращает участников, разделивших первое место с
// положительной метрикой. Максимум 0 означает отсутствие
// победителей.
func (r *Ranking) Champions() []Entry {
	top := r.TopScore()
	if top <= 0 {
		return nil
	}
	var champs []Entry
	for _, e := range r.Entries {
		if e.Metric != top {
			break
		}
		champs = append(champs, e)
	}
	return champs
}
