package repository

// The default of 20 fills one screen of the booking clients' catalog
// and booking-history views; 100 caps what an admin listing may pull
// in a single query.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps the request into the supported range so queries
// never run with a zero or runaway limit.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type PageResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

func newPageResult[T any](items []T, req PageRequest, total int64) PageResult[T] {
	pages := 0
	if total > 0 {
		pages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	return PageResult[T]{
		Items:      items,
		Page:       req.Page,
		PageSize:   req.PageSize,
		Total:      total,
		TotalPages: pages,
	}
}
