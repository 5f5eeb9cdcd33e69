package leaderboard

// ══════════════════════════════════════════════════════════════════════════════
// PAGINATION
// ══════════════════════════════════════════════════════════════════════════════

// DefaultPageSize - размер страницы таблицы лидеров по умолчанию.
const DefaultPageSize = 10

// Page - одна страница таблицы лидеров. Номера страниц для
// вызывающего начинаются с единицы; ранги остаются глобальными.
type Page struct {
	Entries    []Entry
	Number     int
	TotalPages int
	TotalUsers int
}

// HasNext сообщает, есть ли следующая страница.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// HasPrev сообщает, есть ли предыдущая страница.
func (p Page) HasPrev() bool {
	return p.Number > 1
}

// Paginate возвращает страницу number отранжированного списка.
// Номер за пределами диапазона прижимается к ближайшей допустимой
// странице - это не ошибка. Пустой список даёт одну пустую страницу.
func (r *Ranking) Paginate(number, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(r.Entries)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	lo := (number - 1) * pageSize
	hi := lo + pageSize
	if lo > total {
		lo = total
	}
	if hi > total {
		hi = total
	}

	return Page{
		Entries:    r.Entries[lo:hi],
		Number:     number,
		TotalPages: totalPages,
		TotalUsers: total,
	}
}
