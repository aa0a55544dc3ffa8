package domain

import "math"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PageRequest is a normalized 1-indexed page window.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest clamps page to >= 1 and limit to [1, MaxPageLimit]. A zero limit takes the default.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	switch {
	case limit == 0:
		limit = DefaultPageLimit
	case limit < 1:
		limit = 1
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip, saturating at math.MaxInt.
func (p PageRequest) Offset() int {
	if p.Limit > 0 && p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// PageMeta describes a page of results.
type PageMeta struct {
	Total           int
	Page            int
	Limit           int
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
}

// Meta computes page metadata for total matching rows.
func (p PageRequest) Meta(total int) PageMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return PageMeta{
		Total:           total,
		Page:            p.Page,
		Limit:           p.Limit,
		TotalPages:      totalPages,
		HasNextPage:     p.Page < totalPages,
		HasPreviousPage: p.Page > 1,
	}
}

// CasePage is one page of cases.
type CasePage struct {
	Items []Case
	Meta  PageMeta
}
