package shared

import "math"

const (
	// DefaultPageSize applies when the caller does not supply one.
	DefaultPageSize = 20
	// MaxPageSize is the hard ceiling on page size.
	MaxPageSize = 100
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ClampPage normalises a requested page number to >= 1.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampPageSize normalises a requested page size to [1, MaxPageSize],
// substituting the default when unset.
func ClampPageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// NewPagination computes pagination metadata from clamped inputs.
func NewPagination(page, pageSize, total int) Pagination {
	page = ClampPage(page)
	pageSize = ClampPageSize(pageSize)
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}
