package shared

// PeriodKind - вид отслеживаемого периода. Общий тип для доменов
// user и leaderboard.
type PeriodKind string

const (
	PeriodDay     PeriodKind = "day"
	PeriodWeek    PeriodKind = "week"
	PeriodMonth   PeriodKind = "month"
	PeriodAllTime PeriodKind = "alltime"
)

// IsValid проверяет корректность вида периода.
func (k PeriodKind) IsValid() bool {
	switch k {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodAllTime:
		return true
	}
	return false
}

// IsBounded сообщает, имеет ли период границы.
// AllTime границ не имеет и не закрывается оркестратором.
func (k PeriodKind) IsBounded() bool {
	return k == PeriodDay || k == PeriodWeek || k == PeriodMonth
}

// BoundedKinds возвращает все ограниченные виды периодов в порядке
// закрытия: день, неделя, месяц.
func BoundedKinds() []PeriodKind {
	return []PeriodKind{PeriodDay, PeriodWeek, PeriodMonth}
}

// String возвращает строковое представление.
func (k PeriodKind) String() string {
	return string(k)
}
