// Package memcache implements the in-process TTL cache used to memoize expensive reads.
package memcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nfaa/webapp/internal/core/ports"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) live(now time.Time) bool { return now.Before(e.expiresAt) }

// Options tunes a TTLCache.
type Options struct {
	// Name labels the cache for the janitor and logs.
	Name string
	// MaxEntries bounds the number of stored keys; 0 means unbounded.
	MaxEntries int
}

// TTLCache is a concurrency-safe map of string keys to values with per-entry expiry.
// Expired entries are purged lazily on access and in bulk by Sweep.
type TTLCache[V any] struct {
	mu      sync.RWMutex
	items   map[string]entry[V]
	clock   ports.Clock
	opts    Options
	flights singleflight.Group
}

// New creates an empty cache reading time from clock.
func New[V any](clock ports.Clock, opts Options) *TTLCache[V] {
	if opts.Name == "" {
		opts.Name = "cache"
	}
	return &TTLCache[V]{items: make(map[string]entry[V]), clock: clock, opts: opts}
}

var _ ports.Cache[string] = (*TTLCache[string])(nil)

func (c *TTLCache[V]) Name() string { return c.opts.Name }

// Get implements Cache.Get.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	now := c.clock.Now()
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if ok && e.live(now) {
		return e.value, true
	}
	if ok {
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed the key
		if cur, still := c.items[key]; still && !cur.live(now) {
			delete(c.items, key)
		}
		c.mu.Unlock()
	}
	var zero V
	return zero, false
}

// Set implements Cache.Set. A non-positive ttl stores nothing and drops any existing entry.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if ttl <= 0 {
		delete(c.items, key)
		return
	}
	if _, exists := c.items[key]; !exists && c.opts.MaxEntries > 0 && len(c.items) >= c.opts.MaxEntries {
		c.evictLocked(now)
	}
	c.items[key] = entry[V]{value: value, expiresAt: now.Add(ttl)}
}

// Delete implements Cache.Delete.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Wrap implements Cache.Wrap. Errors from compute are returned and nothing is stored.
func (c *TTLCache[V]) Wrap(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

// WrapOnce behaves like Wrap but collapses concurrent misses for the same key into a
// single compute call; waiters receive the leader's result. The shared compute runs
// detached from any caller's cancellation, and each caller stops waiting when its
// own ctx is done.
func (c *TTLCache[V]) WrapOnce(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (V, error)) (V, error) {
	var zero V
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	shared := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := compute(shared)
		if err != nil {
			return nil, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if res.Err != nil {
		return zero, res.Err
	}
	v, ok := res.Val.(V)
	if !ok {
		return zero, fmt.Errorf("memcache: unexpected type %T from singleflight result", res.Val)
	}
	return v, nil
}

// Sweep drops every expired entry and returns how many were removed.
func (c *TTLCache[V]) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(now)
}

// Len returns the number of stored entries, including expired ones not yet purged.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *TTLCache[V]) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range c.items {
		if !e.live(now) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

// evictLocked frees one slot: expired entries go first, otherwise the entry
// closest to expiry is dropped.
func (c *TTLCache[V]) evictLocked(now time.Time) {
	if c.sweepLocked(now) > 0 {
		return
	}
	var (
		victim  string
		soonest time.Time
		found   bool
	)
	for k, e := range c.items {
		if !found || e.expiresAt.Before(soonest) {
			victim, soonest, found = k, e.expiresAt, true
		}
	}
	if found {
		delete(c.items, victim)
	}
}
