// Package leaderboard содержит доменную модель таблицы лидеров:
// расчёт границ периодов, ранжирование, пагинацию и снапшоты.
package leaderboard

import (
	"time"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERIOD BOUNDS
// ══════════════════════════════════════════════════════════════════════════════

// Bounds вычисляет границы закрытого периода [start, end) для опорного
// момента ref. Чистая функция: вся арифметика ведётся в UTC, якоря
// фиксированы (полночь, полночь понедельника, полночь первого числа).
//
// Day:   end = полночь дня ref, start = end − 24h.
// Week:  end = ближайший прошедший понедельник 00:00, start = end − 7d.
// Month: end = первое число текущего месяца 00:00, start = первое число
//        предыдущего месяца (календарная арифметика, не 30 дней).
//
// Для AllTime границ не существует - возвращается ErrUnboundedPeriod,
// чтобы ошибка контракта вызывающего не маскировалась нулевыми датами.
func Bounds(kind shared.PeriodKind, ref time.Time) (start, end time.Time, err error) {
	ref = ref.UTC()
	midnight := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	switch kind {
	case shared.PeriodDay:
		end = midnight
		start = end.Add(-24 * time.Hour)

	case shared.PeriodWeek:
		// time.Weekday: Sunday==0, поэтому смещение до понедельника
		// считается по модулю 7.
		offset := (int(midnight.Weekday()) + 6) % 7
		end = midnight.AddDate(0, 0, -offset)
		start = end.AddDate(0, 0, -7)

	case shared.PeriodMonth:
		end = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		start = end.AddDate(0, -1, 0)

	case shared.PeriodAllTime:
		return time.Time{}, time.Time{}, shared.ErrUnboundedPeriod

	default:
		return time.Time{}, time.Time{}, shared.ErrInvalidPeriod
	}

	return start, end, nil
}

// Closes определяет, какие периоды закрываются в опорный момент ref.
// Периоды закрываются только ровно в полночь UTC: день - каждую
// полночь, неделя - в полночь понедельника, месяц - в полночь
// первого числа.
type Closes struct {
	Day   bool
	Week  bool
	Month bool
}

// Any сообщает, закрывается ли хоть один период.
func (c Closes) Any() bool {
	return c.Day || c.Week || c.Month
}

// Kinds возвращает закрывающиеся виды периодов в порядке
// день, неделя, месяц.
func (c Closes) Kinds() []shared.PeriodKind {
	var kinds []shared.PeriodKind
	if c.Day {
		kinds = append(kinds, shared.PeriodDay)
	}
	if c.Week {
		kinds = append(kinds, shared.PeriodWeek)
	}
	if c.Month {
		kinds = append(kinds, shared.PeriodMonth)
	}
	return kinds
}

// ClosesAt вычисляет закрывающиеся периоды для момента ref.
func ClosesAt(ref time.Time) Closes {
	ref = ref.UTC()
	atMidnight := ref.Hour() == 0 && ref.Minute() == 0
	return Closes{
		Day:   atMidnight,
		Week:  atMidnight && ref.Weekday() == time.Monday,
		Month: atMidnight && ref.Day() == 1,
	}
}

// Truncate обрезает момент до полуночи UTC - якорь снапшотов.
func Truncate(ref time.Time) time.Time {
	ref = ref.UTC()
	return time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
}
