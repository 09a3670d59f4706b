package listcache

import (
	"errors"
	"slices"
	"sync"

	"github.com/mmcdole/campus/internal/domain"
)

var (
	// ErrStaleResponse marks a fetch result that arrived after a newer fetch was issued.
	// Managers drop it silently; it never reaches State.Err.
	ErrStaleResponse = errors.New("stale response discarded")

	// ErrClosed is returned once the owning screen has closed the list.
	ErrClosed = errors.New("list is closed")
)

// State is a snapshot of one cached list.
type State[T domain.Item] struct {
	Items      []T
	Pagination domain.Pagination
	Statistics domain.Statistics
	Loading    bool
	Mutating   bool
	Err        error // last fetch failure; nil after a successful fetch
}

// Store owns the in-memory state of one list.
// Writes go through the fetch entry points or the mutation appliers; readers get copies.
type Store[T domain.Item] struct {
	mu         sync.RWMutex
	state      State[T]
	generation uint64 // token of the most recently issued fetch
	mutations  int    // in-flight mutations
	closed     bool

	onChange func()
}

// NewStore creates an empty store. onChange (may be nil) runs after every
// state transition, outside the lock.
func NewStore[T domain.Item](onChange func()) *Store[T] {
	return &Store[T]{
		state: State[T]{
			Statistics: domain.Statistics{ByCategory: map[string]int{}},
		},
		onChange: onChange,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store[T]) Snapshot() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	snap.Items = slices.Clone(s.state.Items)
	snap.Statistics = s.state.Statistics.Clone()
	return snap
}

// BeginFetch marks a fetch in flight and returns its generation token.
// Existing items stay visible until the fetch commits.
func (s *Store[T]) BeginFetch() (uint64, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	s.generation++
	gen := s.generation
	s.state.Loading = true
	s.state.Err = nil
	s.mu.Unlock()

	s.notify()
	return gen, nil
}

// CommitFetch installs a fetched page. With merge the page's items are appended
// (skipping ids already present) instead of replacing the list.
// Returns ErrStaleResponse if a newer fetch has been issued since gen.
func (s *Store[T]) CommitFetch(gen uint64, page domain.Page[T], merge bool) error {
	s.mu.Lock()
	if err := s.checkLocked(gen); err != nil {
		s.mu.Unlock()
		return err
	}

	if merge {
		s.state.Items = appendUnique(s.state.Items, page.Items)
	} else {
		s.state.Items = slices.Clone(page.Items)
	}
	s.state.Pagination = page.Pagination
	s.state.Statistics = page.Statistics.Clone()
	s.state.Loading = false
	s.state.Err = nil
	s.mu.Unlock()

	s.notify()
	return nil
}

// FailFetch records a fetch failure, keeping the previously cached data.
// Returns ErrStaleResponse if a newer fetch has been issued since gen.
func (s *Store[T]) FailFetch(gen uint64, err error) error {
	s.mu.Lock()
	if cerr := s.checkLocked(gen); cerr != nil {
		s.mu.Unlock()
		return cerr
	}
	s.state.Loading = false
	s.state.Err = err
	s.mu.Unlock()

	s.notify()
	return nil
}

// Close discards the state. Later fetch results and mutations are no-ops.
func (s *Store[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.state = State[T]{Statistics: domain.Statistics{ByCategory: map[string]int{}}}
	s.mu.Unlock()
}

func (s *Store[T]) checkLocked(gen uint64) error {
	if s.closed {
		return ErrClosed
	}
	if gen != s.generation {
		return ErrStaleResponse
	}
	return nil
}

// beginMutation raises the Mutating flag.
func (s *Store[T]) beginMutation() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mutations++
	s.state.Mutating = true
	s.mu.Unlock()

	s.notify()
	return nil
}

// endMutation lowers the Mutating flag once no mutation is in flight.
func (s *Store[T]) endMutation() {
	s.mu.Lock()
	if s.mutations > 0 {
		s.mutations--
	}
	s.state.Mutating = s.mutations > 0
	closed := s.closed
	s.mu.Unlock()

	if !closed {
		s.notify()
	}
}

// apply runs fn against the live state under the write lock.
func (s *Store[T]) apply(fn func(st *State[T])) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	fn(&s.state)
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store[T]) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// appendUnique appends the items of next whose id is not already in cur.
func appendUnique[T domain.Item](cur, next []T) []T {
	seen := make(map[string]struct{}, len(cur)+len(next))
	out := make([]T, 0, len(cur)+len(next))
	for _, it := range cur {
		seen[it.GetID()] = struct{}{}
		out = append(out, it)
	}
	for _, it := range next {
		if _, dup := seen[it.GetID()]; dup {
			continue
		}
		seen[it.GetID()] = struct{}{}
		out = append(out, it)
	}
	return out
}

func indexOf[T domain.Item](items []T, id string) int {
	return slices.IndexFunc(items, func(it T) bool { return it.GetID() == id })
}
