package shared

import "math"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// MaxPerPage caps the page size a caller may request.
const MaxPerPage = 500

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Bounds returns the slice window [start, end) of the current page, clamped
// to Total.
func (p Pagination) Bounds() (int, int) {
	if p.PerPage <= 0 || p.Page <= 0 {
		return 0, 0
	}
	start := p.Total
	if p.Page-1 <= p.Total/p.PerPage {
		start = min((p.Page-1)*p.PerPage, p.Total)
	}
	end := p.Total
	if p.PerPage < p.Total-start {
		end = start + p.PerPage
	}
	return start, end
}
