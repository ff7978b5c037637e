package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/nfaa/webapp/internal/core/domain/auth"
	"github.com/nfaa/webapp/internal/core/ports"
	"github.com/nfaa/webapp/internal/infrastructure/httpserver/helpers"
)

// RateLimitMessage is the error body sent with 429 responses.
const RateLimitMessage = "Rate limit exceeded"

type RateLimitMiddleware struct {
	rateLimiter ports.RateLimiterService
	clock       ports.Clock
	metrics     *MetricsMiddleware
	logger      *logrus.Logger
}

func NewRateLimitMiddleware(rateLimiter ports.RateLimiterService, clock ports.Clock, metrics *MetricsMiddleware, logger *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter, clock: clock, metrics: metrics, logger: logger}
}

// Handler counts the request against the (client, path) bucket and rejects it
// with 429 once the window's quota is spent. It runs before session lookup.
func (r *RateLimitMiddleware) Handler() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientID := helpers.ClientIdentifier(c)
			helpers.SetClientID(c, clientID)
			path := c.Request().URL.Path

			d := r.rateLimiter.Check(clientID, path, r.clock.Now())

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(d.RetryAfter))
				r.metrics.ObserveRateLimited(c)
				if r.logger != nil {
					r.logger.WithFields(logrus.Fields{"client": clientID, "path": path, "retry_after": d.RetryAfter}).Info("request throttled")
				}
				return echo.NewHTTPError(http.StatusTooManyRequests, RateLimitMessage).
					SetInternal(&auth.ThrottledError{RetryAfter: d.RetryAfter})
			}
			return next(c)
		}
	}
}
