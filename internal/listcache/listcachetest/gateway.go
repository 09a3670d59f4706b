package listcachetest

import (
	"context"
	"errors"
	"sync"

	"github.com/mmcdole/campus/internal/domain"
)

// Record is a minimal list item for tests.
type Record struct {
	ID       string
	Category string
	Title    string
}

func (r Record) GetID() string       { return r.ID }
func (r Record) GetCategory() string { return r.Category }

// RecordInput is the payload type paired with Record.
type RecordInput struct {
	Category string
	Title    string
}

// ErrNotConfigured is returned by FakeGateway methods that have no func set.
var ErrNotConfigured = errors.New("fake gateway: not configured")

// FakeGateway is a domain.Gateway driven by per-method funcs. It records every call.
type FakeGateway[T domain.Item, P any] struct {
	FetchFunc  func(ctx context.Context, q domain.Query) (domain.Page[T], error)
	CreateFunc func(ctx context.Context, payload P) (domain.MutationResult[T], error)
	UpdateFunc func(ctx context.Context, id string, payload P) (domain.MutationResult[T], error)
	DeleteFunc func(ctx context.Context, id string) (*domain.Statistics, error)

	mu      sync.Mutex
	fetches []domain.Query
	creates []P
	updates []string
	deletes []string
}

func (g *FakeGateway[T, P]) FetchPage(ctx context.Context, q domain.Query) (domain.Page[T], error) {
	g.mu.Lock()
	g.fetches = append(g.fetches, q)
	fn := g.FetchFunc
	g.mu.Unlock()

	if fn == nil {
		return domain.Page[T]{}, ErrNotConfigured
	}
	return fn(ctx, q)
}

func (g *FakeGateway[T, P]) Create(ctx context.Context, payload P) (domain.MutationResult[T], error) {
	g.mu.Lock()
	g.creates = append(g.creates, payload)
	fn := g.CreateFunc
	g.mu.Unlock()

	if fn == nil {
		return domain.MutationResult[T]{}, ErrNotConfigured
	}
	return fn(ctx, payload)
}

func (g *FakeGateway[T, P]) Update(ctx context.Context, id string, payload P) (domain.MutationResult[T], error) {
	g.mu.Lock()
	g.updates = append(g.updates, id)
	fn := g.UpdateFunc
	g.mu.Unlock()

	if fn == nil {
		return domain.MutationResult[T]{}, ErrNotConfigured
	}
	return fn(ctx, id, payload)
}

func (g *FakeGateway[T, P]) Delete(ctx context.Context, id string) (*domain.Statistics, error) {
	g.mu.Lock()
	g.deletes = append(g.deletes, id)
	fn := g.DeleteFunc
	g.mu.Unlock()

	if fn == nil {
		return nil, ErrNotConfigured
	}
	return fn(ctx, id)
}

// Fetches returns the queries passed to FetchPage, in call order.
func (g *FakeGateway[T, P]) Fetches() []domain.Query {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.Query(nil), g.fetches...)
}

// Creates returns the payloads passed to Create, in call order.
func (g *FakeGateway[T, P]) Creates() []P {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]P(nil), g.creates...)
}

// Deletes returns the ids passed to Delete, in call order.
func (g *FakeGateway[T, P]) Deletes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.deletes...)
}

// Updates returns the ids passed to Update, in call order.
func (g *FakeGateway[T, P]) Updates() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.updates...)
}

// StaticPage returns a FetchFunc that always answers with items, paginated as
// if they were the whole collection. Statistics are counted from items.
func StaticPage[T domain.Item](items []T) func(context.Context, domain.Query) (domain.Page[T], error) {
	return func(_ context.Context, q domain.Query) (domain.Page[T], error) {
		return PageOf(items, q), nil
	}
}

// PageOf slices items into the page q asks for and counts statistics over all of them.
func PageOf[T domain.Item](items []T, q domain.Query) domain.Page[T] {
	limit := q.Limit
	if limit <= 0 {
		limit = len(items)
		if limit == 0 {
			limit = 1
		}
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	start := (page - 1) * limit
	end := start + limit
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	stats := domain.Statistics{Total: len(items), ByCategory: map[string]int{}}
	for _, it := range items {
		stats.ByCategory[it.GetCategory()]++
	}

	return domain.Page[T]{
		Items:      append([]T(nil), items[start:end]...),
		Pagination: domain.NewPagination(page, limit, len(items)),
		Statistics: stats,
	}
}
