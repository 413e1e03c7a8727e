// Package pagination implements page/per-page pagination for list endpoints.
package pagination

import "gorm.io/gorm"

// Pagination carries the requested page window.
type Pagination struct {
	Page    int `form:"page,default=1"`
	PerPage int `form:"per_page,default=25" validate:"gte=1,lte=250"`
}

// PageInfo describes the returned page.
type PageInfo struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
	PerPage     int   `json:"per_page"`
}

// Normalize clamps the window to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 25
	}
	if p.PerPage > 250 {
		p.PerPage = 250
	}
	return p
}

// Apply adds LIMIT/OFFSET to a gorm statement.
func (p Pagination) Apply(stmt *gorm.DB) *gorm.DB {
	p = p.Normalize()
	return stmt.Limit(p.PerPage).Offset((p.Page - 1) * p.PerPage)
}

// BuildPageInfo computes page metadata for a total row count.
func BuildPageInfo(p Pagination, total int64) PageInfo {
	p = p.Normalize()
	pages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if pages < 1 {
		pages = 1
	}
	return PageInfo{
		CurrentPage: p.Page,
		TotalPages:  pages,
		TotalCount:  total,
		PerPage:     p.PerPage,
	}
}
