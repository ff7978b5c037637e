package ports

import (
	"context"
	"time"
)

// Cache defines a typed in-process key-value cache with per-entry TTL.
// Implementations must be safe for concurrent use. A miss is not an error.
type Cache[V any] interface {
	// Get returns the value for key. ok=false if unseen or expired.
	Get(key string) (V, bool)
	// Set stores value for key, overwriting any entry and resetting its expiry.
	Set(key string, value V, ttl time.Duration)
	// Delete removes the key; absence is not an error.
	Delete(key string)
	// Wrap returns the cached value or computes, stores and returns it.
	// Concurrent misses on the same key may each invoke compute.
	Wrap(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (V, error)) (V, error)
}
