package listcache

import (
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/campus/internal/domain"
)

// DefaultSearchDebounce is the quiet interval a search term must hold before it is fetched.
const DefaultSearchDebounce = 300 * time.Millisecond

// queryController owns the query of one list.
//
// draft holds every setter's latest value; effective is what was last handed to
// apply. apply runs under the controller lock, so fetches start in the same
// order the queries were settled.
type queryController struct {
	mu        sync.Mutex
	clock     Clock
	debounce  time.Duration
	draft     domain.Query
	effective domain.Query
	pending   Timer
	seq       uint64 // identifies the pending debounce task

	apply func(q domain.Query)
}

func newQueryController(initial domain.Query, clock Clock, debounce time.Duration, apply func(domain.Query)) *queryController {
	if initial.Page < 1 {
		initial.Page = 1
	}
	return &queryController{
		clock:     clock,
		debounce:  debounce,
		draft:     initial,
		effective: initial,
		apply:     apply,
	}
}

// Effective returns the last settled query.
func (c *queryController) Effective() domain.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effective
}

// SetSearch updates the search term. Non-empty terms settle after the debounce
// interval; an empty term settles at once.
func (c *queryController) SetSearch(term string) {
	term = strings.TrimSpace(term)

	c.mu.Lock()
	defer c.mu.Unlock()

	if term != c.draft.Search {
		c.draft.Search = term
		c.draft.Page = 1
	}
	c.cancelPendingLocked()

	if term == "" {
		c.settleLocked()
		return
	}

	seq := c.seq
	c.pending = c.clock.AfterFunc(c.debounce, func() { c.fire(seq) })
}

// SetFilter selects a category ("" = all). Applies immediately.
func (c *queryController) SetFilter(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if category != c.draft.Category {
		c.draft.Category = category
		c.draft.Page = 1
	}
	c.cancelPendingLocked()
	c.settleLocked()
}

// SetPage moves to page n. Applies immediately.
func (c *queryController) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.draft.Page = n
	c.cancelPendingLocked()
	c.settleLocked()
}

// SetSort changes ordering. Applies immediately.
func (c *queryController) SetSort(field string, order domain.SortOrder) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if field != c.draft.SortField || order != c.draft.SortOrder {
		c.draft.SortField = field
		c.draft.SortOrder = order
		c.draft.Page = 1
	}
	c.cancelPendingLocked()
	c.settleLocked()
}

// Run calls fn with the effective query under the controller lock, so no setter
// can settle a newer query while fn starts its fetch.
func (c *queryController) Run(fn func(q domain.Query)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.effective)
}

// Stop cancels any pending debounce task.
func (c *queryController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
}

func (c *queryController) fire(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Superseded: a newer setter cancelled this task after it was already due
	if seq != c.seq || c.pending == nil {
		return
	}
	c.pending = nil
	c.settleLocked()
}

func (c *queryController) cancelPendingLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.seq++
}

func (c *queryController) settleLocked() {
	if c.draft == c.effective {
		return
	}
	c.effective = c.draft
	c.apply(c.effective)
}
