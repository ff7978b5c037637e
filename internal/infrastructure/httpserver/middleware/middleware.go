package middleware

import (
	"github.com/sirupsen/logrus"

	"github.com/nfaa/webapp/internal/core/ports"
	"github.com/nfaa/webapp/internal/infrastructure/httpserver/helpers"
)

// MiddlewareCollection holds all middleware instances
type MiddlewareCollection struct {
	Session   *SessionMiddleware
	Logging   *LoggingMiddleware
	RateLimit *RateLimitMiddleware
	Metrics   *MetricsMiddleware
}

// NewMiddlewareCollection creates a new collection of all middleware
func NewMiddlewareCollection(
	sessions ports.SessionStore,
	cookie *helpers.SessionCookie,
	rateLimiterService ports.RateLimiterService,
	clock ports.Clock,
	logger *logrus.Logger,
	metrics Metrics,
) *MiddlewareCollection {
	mm := NewMetricsMiddleware(metrics)
	return &MiddlewareCollection{
		Session:   NewSessionMiddleware(sessions, cookie, mm, logger),
		Logging:   NewLoggingMiddleware(logger),
		RateLimit: NewRateLimitMiddleware(rateLimiterService, clock, mm, logger),
		Metrics:   mm,
	}
}
