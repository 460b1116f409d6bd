// File: pkg/ledger/pager.go

package ledger

import "fmt"

// Range — контракт пагинации: по общему числу совпавших строк выдаёт
// полуинтервал [start, end) индексов выборки.
type Range interface {
	// Bounds возвращает начальный (включительно) и конечный
	// (исключительно) индексы для данного total
	Bounds(total int) (start, end int)
}

// ExplicitRange — явный полуинтервал индексов, не зависящий от total.
type ExplicitRange struct {
	start int
	end   int
}

var _ Range = ExplicitRange{}

// NewExplicitRange создает интервал [start, end), start >= 0, end > start.
func NewExplicitRange(start, end int) (ExplicitRange, error) {
	if start < 0 {
		return ExplicitRange{}, fmt.Errorf("range: start index %d is negative", start)
	}
	if end <= start {
		return ExplicitRange{}, fmt.Errorf("range: end index %d is not after start %d", end, start)
	}
	return ExplicitRange{start: start, end: end}, nil
}

func (r ExplicitRange) Bounds(total int) (int, int) {
	return r.start, r.end
}

// PageRange — страничная пагинация: номер страницы (с единицы) и размер
// страницы. Запрос страницы за последней «прижимается» к последней
// странице, а не возвращает пустой результат.
type PageRange struct {
	page    int
	perPage int
}

var _ Range = PageRange{}

// NewPageRange создает страничный интервал, page >= 1, perPage >= 1.
func NewPageRange(page, perPage int) (PageRange, error) {
	if page < 1 {
		return PageRange{}, fmt.Errorf("range: page %d is less than 1", page)
	}
	if perPage < 1 {
		return PageRange{}, fmt.Errorf("range: page size %d is less than 1", perPage)
	}
	return PageRange{page: page, perPage: perPage}, nil
}

// Page возвращает запрошенный номер страницы.
func (r PageRange) Page() int {
	return r.page
}

// PerPage возвращает размер страницы.
func (r PageRange) PerPage() int {
	return r.perPage
}

// MaxPage возвращает номер последней валидной страницы, минимум 1.
func (r PageRange) MaxPage(total int) int {
	maxPage := (total + r.perPage - 1) / r.perPage
	if maxPage < 1 {
		return 1
	}
	return maxPage
}

// ActualPage прижимает запрошенную страницу в [1, MaxPage(total)].
func (r PageRange) ActualPage(total int) int {
	page := r.page
	if maxPage := r.MaxPage(total); page > maxPage {
		page = maxPage
	}
	if page < 1 {
		page = 1
	}
	return page
}

func (r PageRange) Bounds(total int) (int, int) {
	page := r.ActualPage(total)
	return (page - 1) * r.perPage, page * r.perPage
}
