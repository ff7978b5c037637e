package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nfaa/webapp/internal/core/ports"
)

// RateLimiterService implements a fixed-window limiter keyed by (client, path).
type RateLimiterService struct {
	repo   ports.RateLimitRepository
	limit  int
	window time.Duration
	logger *logrus.Logger
}

// RateLimiterConfig groups configuration parameters for the rate limiter.
type RateLimiterConfig struct {
	MaxRequests int
	Window      time.Duration
}

func NewRateLimiterService(repo ports.RateLimitRepository, cfg *RateLimiterConfig, logger *logrus.Logger) *RateLimiterService {
	// Apply defaults
	limit := 60
	w := 10 * time.Second
	if cfg != nil {
		if cfg.MaxRequests > 0 {
			limit = cfg.MaxRequests
		}
		if cfg.Window > 0 {
			w = cfg.Window
		}
	}
	return &RateLimiterService{repo: repo, limit: limit, window: w, logger: logger}
}

var _ ports.RateLimiterService = (*RateLimiterService)(nil)

// Check consumes one request unit for (clientID, path) at now.
func (s *RateLimiterService) Check(clientID, path string, now time.Time) ports.RateDecision {
	count, windowStart := s.repo.IncrementWindow(bucketKey(clientID, path), now, s.window)
	reset := windowStart.Add(s.window)

	if count > s.limit {
		retry := retryAfterSeconds(reset.Sub(now))
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"client": clientID, "path": path, "count": count, "limit": s.limit, "retry_after": retry}).Debug("rate limiter: throttled")
		}
		return ports.RateDecision{Allowed: false, Limit: s.limit, Remaining: 0, RetryAfter: retry, ResetAt: reset}
	}
	return ports.RateDecision{Allowed: true, Limit: s.limit, Remaining: s.limit - count, ResetAt: reset}
}

func bucketKey(clientID, path string) string {
	// NUL cannot appear in a header value or a URL path, so keys never collide
	return clientID + "\x00" + path
}

// retryAfterSeconds rounds the remaining window up to whole seconds, never below 1.
func retryAfterSeconds(remaining time.Duration) int {
	secs := int((remaining + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
