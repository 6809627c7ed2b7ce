package pagination

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	MaxPerPage = 100
	// MaxPage keeps (page-1)*per_page inside a 32-bit int.
	MaxPage = math.MaxInt32 / MaxPerPage
)

type Params struct {
	Page    int
	PerPage int
}

func (p Params) Offset() int { return (p.Page - 1) * p.PerPage }
func (p Params) Limit() int  { return p.PerPage }

// FromQuery reads page and per_page from the query string, clamping both to
// sane bounds.
func FromQuery(c *fiber.Ctx, defaultPerPage int) Params {
	return Normalize(atoi(c.Query("page")), atoi(c.Query("per_page")), defaultPerPage)
}

func Normalize(page, perPage, defaultPerPage int) Params {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

func New[T any](items []T, p Params, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	last := 1
	if total > 0 {
		last = (total + p.PerPage - 1) / p.PerPage
	}
	return Page[T]{
		Data:        items,
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		Total:       total,
		LastPage:    last,
	}
}

// Slice cuts one page out of an in-memory list and reports the total.
func Slice[T any](all []T, p Params) ([]T, int) {
	total := len(all)
	start := p.Offset()
	if start < 0 || start >= total {
		return []T{}, total
	}
	end := start + p.Limit()
	if end > total {
		end = total
	}
	out := make([]T, end-start)
	copy(out, all[start:end])
	return out, total
}
