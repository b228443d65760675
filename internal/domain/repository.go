// Package domain provides types shared by the business packages.
package domain

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit into their valid ranges.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	// Truncated is set when the result was built from a capped scan.
	Truncated bool `json:"truncated,omitempty"`
}

// NewListResult builds a ListResult for one page of items.
func NewListResult[T any](items []T, total int64, p Pagination) ListResult[T] {
	p = p.Normalize()
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return ListResult[T]{
		Items:      items,
		TotalCount: total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: pages,
	}
}

// Paginate slices an in-memory result set.
func Paginate[T any](all []T, p Pagination) ListResult[T] {
	p = p.Normalize()
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return NewListResult(all[start:end], int64(len(all)), p)
}
