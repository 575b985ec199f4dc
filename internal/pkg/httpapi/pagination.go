package httpapi

import "strings"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageParams are the common list-query parameters. Page is 1-based.
type PageParams struct {
	Page  int    `form:"page"`
	Size  int    `form:"size"`
	Sort  string `form:"sort"`
	Order string `form:"order"`
}

// Normalize applies defaults and clamps values. Sort is checked against the
// caller's allow-list and falls back to the first entry on a miss, so user
// input never reaches the ORDER BY clause unfiltered.
func (p *PageParams) Normalize(allowedSort ...string) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	if p.Order = strings.ToLower(p.Order); p.Order != "desc" {
		p.Order = "asc"
	}
	ok := false
	for _, s := range allowedSort {
		if p.Sort == s {
			ok = true
			break
		}
	}
	if !ok && len(allowedSort) > 0 {
		p.Sort = allowedSort[0]
	}
}

// Offset returns the row offset for the current page.
func (p *PageParams) Offset() int {
	return (p.Page - 1) * p.Size
}

// OrderClause renders the normalized sort column and direction.
func (p *PageParams) OrderClause() string {
	return p.Sort + " " + p.Order
}

// Page is the wire format for paginated list responses.
type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// NewPage assembles a Page, normalizing a nil items slice to empty.
func NewPage[T any](items []T, params PageParams, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: params.Page, Size: params.Size, Total: total}
}
