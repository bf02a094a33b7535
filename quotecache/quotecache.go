// Package quotecache bounds duplicate external quote requests. It is a
// request-coalescing cache, not a correctness cache: identical keys issued
// within a short window share one in-flight fetch, and entries self-evict
// after the window regardless of use, so no caller ever sees a quote older
// than the fixed TTL.
package quotecache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the coalescing window. Quotes are treated as
// freshness-bounded, not strongly consistent, so the window stays short.
const DefaultTTL = 300 * time.Millisecond

type entry[V any] struct {
	value   V
	fetched time.Time
}

// Cache coalesces concurrent fetches per key and memoizes results for a
// fixed TTL. One instance belongs to one engine; there is no global state.
type Cache[V any] struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]entry[V]
}

// New returns a cache with the given TTL, using now as its clock. A zero or
// negative ttl falls back to DefaultTTL; a nil clock uses time.Now.
func New[V any](ttl time.Duration, now func() time.Time) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache[V]{ttl: ttl, now: now, entries: make(map[string]entry[V])}
}

// GetOrFetch returns the cached value for key when one is still inside the
// TTL window, otherwise runs fetch. Concurrent callers with the same key
// share a single in-flight fetch; errors are returned to every waiter and
// never cached.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, error) {
	if value, ok := c.lookup(key); ok {
		return value, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have stored a
		// fresh entry between lookup and Do.
		if value, ok := c.lookup(key); ok {
			return value, nil
		}
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, value)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return e.value, false
	}
	if c.now().Sub(e.fetched) >= c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) store(key string, value V) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	// Opportunistic prune keeps the map bounded without a janitor goroutine.
	for k, e := range c.entries {
		if now.Sub(e.fetched) >= c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry[V]{value: value, fetched: now}
}

// Len reports the number of resident entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
