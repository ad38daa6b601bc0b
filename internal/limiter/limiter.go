// Package limiter windows long candidate lists so only a bounded slice is
// rendered at a time.
package limiter

import "fmt"

// Config holds the windowing parameters.
type Config struct {
	Limit  int // Show only this many entries (0 = unlimited)
	Offset int // Skip the first N entries (0 = no skip)
}

// Validate rejects negative values.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--max-items must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", c.Offset)
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0
}

// Bounds returns the [start, end) range selected from a list of length n.
func (c Config) Bounds(n int) (start, end int) {
	start = min(max(c.Offset, 0), n)
	end = n
	if c.Limit > 0 {
		end = min(start+c.Limit, n)
	}
	return start, end
}

// Apply returns the configured window of items.
func Apply[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.Bounds(len(items))
	return items[start:end]
}

// Follow returns a copy of c whose offset is the smallest shift from the
// current one that keeps index visible within a list of length n.
func (c Config) Follow(index, n int) Config {
	if c.Limit <= 0 || n <= c.Limit {
		c.Offset = 0
		return c
	}
	index = min(max(index, 0), n-1)
	switch {
	case index < c.Offset:
		c.Offset = index
	case index >= c.Offset+c.Limit:
		c.Offset = index - c.Limit + 1
	}
	c.Offset = min(max(c.Offset, 0), n-c.Limit)
	return c
}

// Hidden reports how many entries fall before and after the window.
func (c Config) Hidden(n int) (above, below int) {
	start, end := c.Bounds(n)
	return start, n - end
}
