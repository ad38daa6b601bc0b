package completion

import (
	"sync"

	"github.com/oakwood-commons/filterbar/pkg/filter"
)

type cacheKey struct {
	property string
	search   string
}

// OptionsCache holds fetched options keyed by (property, search). Entries
// never expire. A failed fetch leaves no entry and records a property-scoped
// error that the next successful fetch clears.
type OptionsCache struct {
	mu      sync.RWMutex
	entries map[cacheKey][]filter.Option
	latest  map[string]cacheKey
	errs    map[string]error
	loading map[string]bool
}

// NewOptionsCache returns an empty cache.
func NewOptionsCache() *OptionsCache {
	return &OptionsCache{
		entries: make(map[cacheKey][]filter.Option),
		latest:  make(map[string]cacheKey),
		errs:    make(map[string]error),
		loading: make(map[string]bool),
	}
}

// Get returns the options cached for exactly this search.
func (c *OptionsCache) Get(property, search string) ([]filter.Option, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	opts, ok := c.entries[cacheKey{property, search}]
	return opts, ok
}

// Latest returns the most recently stored options for the property,
// whatever search produced them.
func (c *OptionsCache) Latest(property string) ([]filter.Option, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.latest[property]
	if !ok {
		return nil, false
	}
	opts, ok := c.entries[key]
	return opts, ok
}

// Put stores options under (property, search) and clears the property's error.
func (c *OptionsCache) Put(property, search string, opts []filter.Option) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey{property, search}
	c.entries[key] = opts
	c.latest[property] = key
	delete(c.errs, property)
}

// Fail records a fetch failure for the property.
func (c *OptionsCache) Fail(property string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[property] = err
}

// Error returns the last fetch failure for the property, if any.
func (c *OptionsCache) Error(property string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errs[property]
}

// Loading reports whether a fetch for the property is in flight.
func (c *OptionsCache) Loading(property string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading[property]
}

func (c *OptionsCache) setLoading(property string, v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v {
		c.loading[property] = true
		return
	}
	delete(c.loading, property)
}
