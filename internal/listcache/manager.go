package listcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mmcdole/campus/internal/domain"
)

var (
	// ErrNoMorePages is returned by LoadMore when the last page is already loaded.
	ErrNoMorePages = errors.New("no more pages")

	// ErrInvalidPage is returned by GoToPage for page numbers below 1.
	ErrInvalidPage = errors.New("invalid page number")
)

// Options configures one list. Zero values fall back to the Client's config.
type Options struct {
	Name      string // shown in log lines
	PageSize  int
	Category  string // initial filter
	SortField string
	SortOrder domain.SortOrder
}

// Manager is the cache for one remote collection, owned by one screen.
//
// Queries settle through the query controller and are fetched on a goroutine;
// each fetch carries a generation token and a response for a superseded token
// is dropped. Mutations call the gateway first and patch the cached page only
// on success.
//
// Statistics returned with a mutation replace the local counters while the list
// is neither filtered nor searched. Otherwise, or when the server returns none,
// counters are adjusted by +1/-1, which drifts from the
// server's truth if other sessions mutate the same collection; the next fetch
// corrects it.
type Manager[T domain.Item, P any] struct {
	name    string
	gateway domain.Gateway[T, P]
	client  *Client
	logger  *slog.Logger
	timeout time.Duration

	store *Store[T]
	query *queryController
	mut   *coordinator[T, P]

	flight singleflight.Group // collapses identical in-flight fetches
	wg     sync.WaitGroup

	subMu      sync.Mutex
	subs       []chan struct{}
	subsClosed bool

	closeOnce sync.Once
}

// NewManager creates a list bound to client. Nothing is fetched until Open.
func NewManager[T domain.Item, P any](client *Client, gateway domain.Gateway[T, P], opts Options) *Manager[T, P] {
	cfg := client.Config()

	limit := opts.PageSize
	if limit <= 0 {
		limit = cfg.PageSize
	}
	name := opts.Name
	if name == "" {
		name = "list"
	}

	m := &Manager[T, P]{
		name:    name,
		gateway: gateway,
		client:  client,
		logger:  client.logger.With("list", name),
		timeout: cfg.FetchTimeout,
	}
	m.store = NewStore[T](m.notify)

	initial := domain.Query{
		Page:      1,
		Limit:     limit,
		Category:  opts.Category,
		SortField: opts.SortField,
		SortOrder: opts.SortOrder,
	}
	m.query = newQueryController(initial, client.clock, cfg.SearchDebounce, func(q domain.Query) {
		if err := m.startFetch(q, false); err != nil {
			m.logger.Debug("query change ignored", "error", err)
		}
	})
	m.mut = &coordinator[T, P]{
		gateway:  gateway,
		store:    m.store,
		timeout:  cfg.FetchTimeout,
		logger:   m.logger,
		scope:    m.query.Effective,
		onCommit: m.forgetInflight,
	}

	client.register(m)
	return m
}

// === Reads ===

// State returns a snapshot of the cached list.
func (m *Manager[T, P]) State() State[T] { return m.store.Snapshot() }

// Items returns the cached items in server order.
func (m *Manager[T, P]) Items() []T { return m.store.Snapshot().Items }

// Pagination returns the pagination of the cached page.
func (m *Manager[T, P]) Pagination() domain.Pagination { return m.store.Snapshot().Pagination }

// Statistics returns the aggregate counters.
func (m *Manager[T, P]) Statistics() domain.Statistics { return m.store.Snapshot().Statistics }

// Loading reports whether a fetch is in flight.
func (m *Manager[T, P]) Loading() bool { return m.store.Snapshot().Loading }

// Mutating reports whether a create, update or remove is in flight.
func (m *Manager[T, P]) Mutating() bool { return m.store.Snapshot().Mutating }

// Err returns the last fetch error (nil after a successful fetch).
func (m *Manager[T, P]) Err() error { return m.store.Snapshot().Err }

// Query returns the effective query.
func (m *Manager[T, P]) Query() domain.Query { return m.query.Effective() }

// === Query actions ===

// Open issues the first fetch for the initial query.
func (m *Manager[T, P]) Open() error {
	return m.Refresh()
}

// Refresh re-issues the effective query.
func (m *Manager[T, P]) Refresh() error {
	var err error
	m.query.Run(func(q domain.Query) {
		err = m.startFetch(q, false)
	})
	return err
}

// Search sets the search term (debounced; empty terms apply at once).
func (m *Manager[T, P]) Search(term string) { m.query.SetSearch(term) }

// Filter selects a category ("" = all) and returns to page 1.
func (m *Manager[T, P]) Filter(category string) { m.query.SetFilter(category) }

// Sort changes the ordering and returns to page 1.
func (m *Manager[T, P]) Sort(field string, order domain.SortOrder) { m.query.SetSort(field, order) }

// GoToPage replaces the cached page with page n.
func (m *Manager[T, P]) GoToPage(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, n)
	}
	m.query.SetPage(n)
	return nil
}

// LoadMore appends the next page to the cached items. It does nothing while a
// fetch is already in flight.
func (m *Manager[T, P]) LoadMore() error {
	var err error
	m.query.Run(func(q domain.Query) {
		st := m.store.Snapshot()
		if st.Loading {
			return
		}
		if !st.Pagination.HasNext {
			err = ErrNoMorePages
			return
		}
		next := q
		next.Page = st.Pagination.Page + 1
		err = m.startFetch(next, true)
	})
	return err
}

// === Mutations ===

// Create adds an item on the server and prepends it to the cached list.
func (m *Manager[T, P]) Create(ctx context.Context, payload P) (T, error) {
	return m.mut.create(ctx, payload)
}

// Update changes an item on the server and replaces it in place.
func (m *Manager[T, P]) Update(ctx context.Context, id string, payload P) (T, error) {
	return m.mut.update(ctx, id, payload)
}

// Remove deletes an item on the server and drops it from the cached list.
func (m *Manager[T, P]) Remove(ctx context.Context, id string) error {
	return m.mut.remove(ctx, id)
}

// === Lifecycle ===

// Subscribe returns a channel that receives a signal after state transitions.
// Signals coalesce; read State after each one. The channel closes with the list.
func (m *Manager[T, P]) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)

	m.subMu.Lock()
	defer m.subMu.Unlock()
	if m.subsClosed {
		close(ch)
		return ch
	}
	m.subs = append(m.subs, ch)
	return ch
}

// Wait blocks until every fetch issued so far has finished.
func (m *Manager[T, P]) Wait() {
	m.wg.Wait()
}

// Close discards the cached state. Fetches still in flight complete but their
// responses are ignored.
func (m *Manager[T, P]) Close() {
	m.closeOnce.Do(func() {
		m.query.Stop()
		m.store.Close()

		m.subMu.Lock()
		for _, ch := range m.subs {
			close(ch)
		}
		m.subs = nil
		m.subsClosed = true
		m.subMu.Unlock()

		m.client.unregister(m)
		m.logger.Debug("closed list")
	})
}

// === Private helpers ===

// startFetch begins a fetch for q. Callers hold the query controller lock.
func (m *Manager[T, P]) startFetch(q domain.Query, merge bool) error {
	gen, err := m.store.BeginFetch()
	if err != nil {
		return err
	}
	m.logger.Debug("fetching page", "query", q.Key(), "generation", gen, "merge", merge)

	m.wg.Add(1)
	go m.runFetch(gen, q, merge)
	return nil
}

func (m *Manager[T, P]) runFetch(gen uint64, q domain.Query, merge bool) {
	defer m.wg.Done()

	v, err, shared := m.flight.Do(q.Key(), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		page, err := m.gateway.FetchPage(ctx, q)
		return page, err
	})
	if err != nil {
		err = asNetworkError(err)
		if ferr := m.store.FailFetch(gen, err); ferr != nil {
			m.dropped(gen, ferr)
			return
		}
		m.logger.Error("failed to fetch page", "error", err, "query", q.Key())
		return
	}

	page := v.(domain.Page[T])
	if cerr := m.store.CommitFetch(gen, page, merge); cerr != nil {
		m.dropped(gen, cerr)
		return
	}
	m.logger.Debug("fetched page",
		"count", len(page.Items),
		"total", page.Pagination.Total,
		"generation", gen,
		"shared", shared,
	)
}

func (m *Manager[T, P]) dropped(gen uint64, err error) {
	switch {
	case errors.Is(err, ErrStaleResponse):
		m.logger.Debug("discarded stale response", "generation", gen)
	case errors.Is(err, ErrClosed):
		m.logger.Debug("discarded response after close", "generation", gen)
	}
}

// forgetInflight stops later fetches from joining a request issued before a mutation.
func (m *Manager[T, P]) forgetInflight() {
	m.query.Run(func(q domain.Query) {
		m.flight.Forget(q.Key())
	})
}

func (m *Manager[T, P]) notify() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default: // Pending signal already queued
		}
	}
}

// asNetworkError classifies a timeout the gateway did not classify itself.
func asNetworkError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrNetwork) {
		return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	return err
}
