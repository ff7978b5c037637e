package ports

import (
	"time"
)

// RateLimitRepository provides the atomic counter operation behind the fixed-window limiter.
// Implementations MUST perform the read-modify-write in a single critical section.
type RateLimitRepository interface {
	// IncrementWindow counts one request for key at now. When no bucket exists or the
	// bucket's window has elapsed, the bucket restarts at now with count 1.
	// Returns the updated count and the window start.
	IncrementWindow(key string, now time.Time, window time.Duration) (count int, windowStart time.Time)
}

// RateDecision is the outcome of a rate limit check.
type RateDecision struct {
	Allowed bool
	// Limit is the configured max requests per window.
	Limit int
	// Remaining is the number of further requests allowed in the current window (>=0).
	Remaining int
	// RetryAfter is the advisory delay in whole seconds; only set when throttled.
	RetryAfter int
	// ResetAt is when the current window ends.
	ResetAt time.Time
}

// RateLimiterService bounds request throughput per client per resource path.
// Implementations MUST be safe for concurrent use.
type RateLimiterService interface {
	Check(clientID, path string, now time.Time) RateDecision
}
