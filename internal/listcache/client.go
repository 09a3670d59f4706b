package listcache

import (
	"log/slog"
	"sync"
	"time"
)

// Defaults for lists created from a Client
const (
	DefaultPageSize     = 20
	DefaultFetchTimeout = 30 * time.Second
)

// Config holds the settings shared by every list of a Client.
type Config struct {
	PageSize       int
	SearchDebounce time.Duration
	FetchTimeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.SearchDebounce <= 0 {
		c.SearchDebounce = DefaultSearchDebounce
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	return c
}

// Client is the cache context lists are created from. Create one at startup and
// pass it to each screen; Reset closes every open list (used between tests and on logout).
type Client struct {
	clock  Clock
	logger *slog.Logger
	config Config

	mu    sync.Mutex
	lists map[closer]struct{}
}

type closer interface {
	Close()
}

// NewClient creates a cache context. A nil clock uses SystemClock; a nil logger uses slog.Default().
func NewClient(cfg Config, clock Clock, logger *slog.Logger) *Client {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		clock:  clock,
		logger: logger,
		config: cfg.withDefaults(),
		lists:  make(map[closer]struct{}),
	}
}

// Config returns the effective settings.
func (c *Client) Config() Config {
	return c.config
}

// OpenLists returns the number of lists that have not been closed.
func (c *Client) OpenLists() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lists)
}

// Reset closes every open list.
func (c *Client) Reset() {
	c.mu.Lock()
	lists := make([]closer, 0, len(c.lists))
	for l := range c.lists {
		lists = append(lists, l)
	}
	c.mu.Unlock()

	for _, l := range lists {
		l.Close()
	}
	c.logger.Debug("reset list cache", "closed", len(lists))
}

func (c *Client) register(l closer) {
	c.mu.Lock()
	c.lists[l] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) unregister(l closer) {
	c.mu.Lock()
	delete(c.lists, l)
	c.mu.Unlock()
}
