package shared

import "context"

// TxManager runs a function inside one storage transaction. Every repository
// call made with the ctx passed to fn joins that transaction; if fn returns
// an error all of its writes roll back together.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Paginated is one page of a repository listing together with the totals
// the HTTP layer needs for its meta block.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated assembles a page result, deriving the page count from the
// total and page size.
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	p := Paginated[T]{Items: items, Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		p.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return p
}
