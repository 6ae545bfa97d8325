package resource

import (
	"math"

	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/store"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListParams selects records for List.
type ListParams struct {
	// Filters holds raw exact-match values keyed by field name; only filterable fields apply.
	Filters map[string]string
	Search  string
	// Page and Limit are zero when the caller did not ask for pagination.
	Page  int
	Limit int
	// Anonymous requests only see published records.
	Anonymous bool
}

// Paginated reports whether the caller asked for a page.
func (p ListParams) Paginated() bool {
	return p.Page != 0 || p.Limit != 0
}

// Pagination describes the page returned by List.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination normalises page and limit and derives the page count.
func NewPagination(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

// ListResult is the outcome of List. Pagination is nil for unpaginated lists.
type ListResult struct {
	Items      []store.Document
	Pagination *Pagination
}

func (s *Schema) buildQuery(p ListParams) (store.Query, error) {
	q := store.Query{
		Equals:       map[string]any{},
		Search:       p.Search,
		SearchFields: s.SearchFields(),
	}

	for name, raw := range p.Filters {
		f, ok := s.Field(name)
		if !ok || !f.Filterable || raw == "" {
			continue
		}
		v, empty, err := coerce(f, raw)
		if err != nil {
			return store.Query{}, apperr.Validation("invalid filter: %v", err)
		}
		if !empty {
			q.Equals[name] = v
		}
	}

	if p.Anonymous && s.PublishedField != "" {
		q.Equals[s.PublishedField] = true
	}

	if p.Paginated() {
		pg := NewPagination(p.Page, p.Limit, 0)
		if int64(pg.Page-1) > math.MaxInt64/int64(pg.Limit) {
			return store.Query{}, apperr.Validation("page is out of range")
		}
		q.Skip = int64(pg.Page-1) * int64(pg.Limit)
		q.Limit = int64(pg.Limit)
	}
	return q, nil
}
