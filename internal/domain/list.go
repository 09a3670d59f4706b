package domain

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Item is the contract for records held in a cached list.
// Identity is the ID alone; two values with the same ID are the same record.
type Item interface {
	// GetID returns the stable unique identifier
	GetID() string

	// GetCategory returns the tag that statistics are counted by
	GetCategory() string
}

// SortOrder is the direction of a sorted query
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Query describes one page of a filtered, searched, sorted collection.
type Query struct {
	Page      int
	Limit     int
	Category  string // empty = all categories
	Search    string // empty = no search filter
	SortField string
	SortOrder SortOrder
}

// Key returns a stable string identifying the query, used for request de-duplication.
func (q Query) Key() string {
	var b strings.Builder
	b.WriteString("page=")
	b.WriteString(strconv.Itoa(q.Page))
	b.WriteString("&limit=")
	b.WriteString(strconv.Itoa(q.Limit))
	b.WriteString("&category=")
	b.WriteString(q.Category)
	b.WriteString("&search=")
	b.WriteString(q.Search)
	b.WriteString("&sort=")
	b.WriteString(q.SortField)
	b.WriteString("&order=")
	b.WriteString(string(q.SortOrder))
	return b.String()
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPagination derives TotalPages, HasNext and HasPrev from page, limit and total.
func NewPagination(page, limit, total int) Pagination {
	if page < 1 {
		page = 1
	}
	if total < 0 {
		total = 0
	}
	p := Pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.TotalPages = (total + limit - 1) / limit
	}
	p.HasNext = p.Page < p.TotalPages
	p.HasPrev = p.Page > 1
	return p
}

// WithTotal returns a copy with a new total and the dependent fields recomputed.
func (p Pagination) WithTotal(total int) Pagination {
	return NewPagination(p.Page, p.Limit, total)
}

// Validate reports whether the derived fields agree with page, limit and total.
func (p Pagination) Validate() error {
	switch {
	case p.Page < 1:
		return fmt.Errorf("page must be >= 1, got %d", p.Page)
	case p.Limit <= 0:
		return fmt.Errorf("limit must be > 0, got %d", p.Limit)
	case p.Total < 0:
		return fmt.Errorf("total must be >= 0, got %d", p.Total)
	}
	want := NewPagination(p.Page, p.Limit, p.Total)
	if p != want {
		return fmt.Errorf("inconsistent pagination %+v, want %+v", p, want)
	}
	return nil
}

// Statistics holds aggregate counters for a result set.
// Total always equals the matching Pagination.Total once a fetch has settled.
type Statistics struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
}

// Count returns the counter for a category (0 if absent).
func (s Statistics) Count(category string) int {
	return s.ByCategory[category]
}

// Clone returns a copy that shares no memory with s.
func (s Statistics) Clone() Statistics {
	out := Statistics{Total: s.Total, ByCategory: make(map[string]int, len(s.ByCategory))}
	maps.Copy(out.ByCategory, s.ByCategory)
	return out
}

// Page is one fetched page of a collection.
type Page[T Item] struct {
	Items      []T
	Pagination Pagination
	Statistics Statistics
}

// MutationResult is the server's answer to a create or update.
// Statistics is nil when the server does not return updated counters.
type MutationResult[T Item] struct {
	Item       T
	Statistics *Statistics
}

// Gateway: Network operations for one remote collection (implemented by api.Resource).
// Payloads are validated by the server; the cache never re-validates them.
type Gateway[T Item, P any] interface {
	FetchPage(ctx context.Context, q Query) (Page[T], error)
	Create(ctx context.Context, payload P) (MutationResult[T], error)
	Update(ctx context.Context, id string, payload P) (MutationResult[T], error)
	// Delete returns updated statistics when the server provides them (nil otherwise)
	Delete(ctx context.Context, id string) (*Statistics, error)
}
