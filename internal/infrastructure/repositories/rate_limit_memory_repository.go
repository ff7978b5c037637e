package repositories

import (
	"sync"
	"time"

	"github.com/nfaa/webapp/internal/core/ports"
)

type rateBucket struct {
	windowStart time.Time
	window      time.Duration
	count       int
}

// RateLimitMemoryRepository implements fixed-window counter storage in process memory.
type RateLimitMemoryRepository struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
}

func NewRateLimitMemoryRepository() *RateLimitMemoryRepository {
	return &RateLimitMemoryRepository{buckets: make(map[string]*rateBucket)}
}

var _ ports.RateLimitRepository = (*RateLimitMemoryRepository)(nil)

func (repo *RateLimitMemoryRepository) Name() string { return "rate_buckets" }

// IncrementWindow counts one request for key inside a fixed window.
func (repo *RateLimitMemoryRepository) IncrementWindow(key string, now time.Time, window time.Duration) (int, time.Time) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	b, ok := repo.buckets[key]
	if !ok || !now.Before(b.windowStart.Add(window)) {
		b = &rateBucket{windowStart: now, window: window, count: 1}
		repo.buckets[key] = b
		return b.count, b.windowStart
	}
	b.count++
	return b.count, b.windowStart
}

// Sweep drops buckets whose window has elapsed; they would be reset on next use anyway.
func (repo *RateLimitMemoryRepository) Sweep(now time.Time) int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	removed := 0
	for k, b := range repo.buckets {
		if !now.Before(b.windowStart.Add(b.window)) {
			delete(repo.buckets, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked buckets.
func (repo *RateLimitMemoryRepository) Len() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.buckets)
}
