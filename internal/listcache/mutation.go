package listcache

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/mmcdole/campus/internal/domain"
)

// coordinator applies single-item mutations to a Store.
// The gateway is always called first; local state changes only after it succeeds,
// so a failed mutation leaves the store exactly as it was.
type coordinator[T domain.Item, P any] struct {
	gateway domain.Gateway[T, P]
	store   *Store[T]
	timeout time.Duration
	logger  *slog.Logger

	// scope returns the effective query of the list
	scope func() domain.Query

	// onCommit runs after a confirmed mutation has been applied
	onCommit func()
}

func (c *coordinator[T, P]) create(ctx context.Context, payload P) (T, error) {
	var zero T
	if err := c.store.beginMutation(); err != nil {
		return zero, err
	}
	defer c.store.endMutation()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.gateway.Create(ctx, payload)
	if err != nil {
		c.logger.Error("failed to create item", "error", err)
		return zero, asNetworkError(err)
	}

	res.Statistics = c.serverStatistics(res.Statistics)
	c.commit(func(st *State[T]) { applyCreate(st, res) })
	c.logger.Debug("created item", "itemID", res.Item.GetID(), "category", res.Item.GetCategory())
	return res.Item, nil
}

func (c *coordinator[T, P]) update(ctx context.Context, id string, payload P) (T, error) {
	var zero T
	if err := c.store.beginMutation(); err != nil {
		return zero, err
	}
	defer c.store.endMutation()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.gateway.Update(ctx, id, payload)
	if err != nil {
		c.logger.Error("failed to update item", "error", err, "itemID", id)
		return zero, asNetworkError(err)
	}

	res.Statistics = c.serverStatistics(res.Statistics)
	c.commit(func(st *State[T]) { applyUpdate(st, id, res) })
	c.logger.Debug("updated item", "itemID", id)
	return res.Item, nil
}

func (c *coordinator[T, P]) remove(ctx context.Context, id string) error {
	if err := c.store.beginMutation(); err != nil {
		return err
	}
	defer c.store.endMutation()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stats, err := c.gateway.Delete(ctx, id)
	if err != nil {
		c.logger.Error("failed to delete item", "error", err, "itemID", id)
		return asNetworkError(err)
	}

	stats = c.serverStatistics(stats)
	c.commit(func(st *State[T]) { applyRemove(st, id, stats) })
	c.logger.Debug("deleted item", "itemID", id)
	return nil
}

// serverStatistics returns stats when they count the same records as the cached
// page. Mutation responses count the whole collection, so they are dropped while
// a category or search narrows the list and the counters are adjusted locally.
func (c *coordinator[T, P]) serverStatistics(stats *domain.Statistics) *domain.Statistics {
	if stats == nil || c.scope == nil {
		return stats
	}
	if q := c.scope(); q.Category != "" || q.Search != "" {
		c.logger.Debug("ignored collection statistics for narrowed list", "query", q.Key())
		return nil
	}
	return stats
}

func (c *coordinator[T, P]) commit(fn func(st *State[T])) {
	if err := c.store.apply(fn); err != nil {
		// The server accepted the change; the screen is gone, so there is nothing to patch.
		if errors.Is(err, ErrClosed) {
			c.logger.Debug("mutation confirmed after close")
		}
		return
	}
	if c.onCommit != nil {
		c.onCommit()
	}
}

// applyCreate prepends the new item and counts it.
func applyCreate[T domain.Item](st *State[T], res domain.MutationResult[T]) {
	items := make([]T, 0, len(st.Items)+1)
	items = append(items, res.Item)
	st.Items = append(items, st.Items...)

	if res.Statistics != nil {
		useServerStatistics(st, *res.Statistics)
		return
	}
	stats := st.Statistics.Clone()
	stats.Total++
	stats.ByCategory[res.Item.GetCategory()]++
	setStatistics(st, stats)
}

// applyUpdate replaces the item in place and moves its count when the category changed.
func applyUpdate[T domain.Item](st *State[T], id string, res domain.MutationResult[T]) {
	idx := indexOf(st.Items, id)
	oldCategory := ""
	if idx >= 0 {
		oldCategory = st.Items[idx].GetCategory()
		items := slices.Clone(st.Items)
		items[idx] = res.Item
		st.Items = items
	}

	if res.Statistics != nil {
		useServerStatistics(st, *res.Statistics)
		return
	}
	// An item outside the loaded page has no known previous category
	newCategory := res.Item.GetCategory()
	if idx < 0 || oldCategory == newCategory {
		return
	}
	stats := st.Statistics.Clone()
	decrement(stats.ByCategory, oldCategory)
	stats.ByCategory[newCategory]++
	setStatistics(st, stats)
}

// applyRemove drops the item and uncounts it.
func applyRemove[T domain.Item](st *State[T], id string, server *domain.Statistics) {
	idx := indexOf(st.Items, id)
	category := ""
	if idx >= 0 {
		category = st.Items[idx].GetCategory()
		st.Items = slices.Delete(slices.Clone(st.Items), idx, idx+1)
	}

	if server != nil {
		useServerStatistics(st, *server)
		return
	}
	stats := st.Statistics.Clone()
	if stats.Total > 0 {
		stats.Total--
	}
	if idx >= 0 {
		decrement(stats.ByCategory, category)
	}
	setStatistics(st, stats)
}

func useServerStatistics[T domain.Item](st *State[T], server domain.Statistics) {
	stats := server.Clone()
	setStatistics(st, stats)
}

// setStatistics installs stats and keeps Pagination.Total in step with it.
func setStatistics[T domain.Item](st *State[T], stats domain.Statistics) {
	st.Statistics = stats
	st.Pagination = st.Pagination.WithTotal(stats.Total)
}

func decrement(counts map[string]int, key string) {
	if counts[key] > 0 {
		counts[key]--
	}
}
