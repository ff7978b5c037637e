package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the Prometheus collectors the HTTP layer writes to.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec   // method, path, status
	RequestDuration *prometheus.HistogramVec // method, path
	AuthFailures    *prometheus.CounterVec   // reason
	RateLimited     *prometheus.CounterVec   // path
}

// UnmatchedRoute labels requests that matched no registered route.
const UnmatchedRoute = "unmatched"

// routeLabel returns the matched route template so label values stay bounded
// whatever paths clients send.
func routeLabel(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return UnmatchedRoute
}

// MetricsMiddleware records request metrics and gatekeeping rejections.
// A nil *MetricsMiddleware or nil collector is a no-op.
type MetricsMiddleware struct {
	m Metrics
}

func NewMetricsMiddleware(m Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{m: m}
}

// CollectHTTPMetrics creates middleware that collects HTTP request metrics
func (mm *MetricsMiddleware) CollectHTTPMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			if mm == nil {
				return err
			}
			path := routeLabel(c)
			method := c.Request().Method
			status := c.Response().Status
			var he *echo.HTTPError
			if err != nil && !c.Response().Committed && errors.As(err, &he) {
				// the error handler has not written yet
				status = he.Code
			}

			if mm.m.RequestsTotal != nil {
				mm.m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			}
			if mm.m.RequestDuration != nil {
				mm.m.RequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			}
			return err
		}
	}
}

func (mm *MetricsMiddleware) ObserveAuthFailure(reason string) {
	if mm == nil || mm.m.AuthFailures == nil {
		return
	}
	mm.m.AuthFailures.WithLabelValues(reason).Inc()
}

// ObserveRateLimited counts a throttled request under its route template.
func (mm *MetricsMiddleware) ObserveRateLimited(c echo.Context) {
	if mm == nil || mm.m.RateLimited == nil {
		return
	}
	mm.m.RateLimited.WithLabelValues(routeLabel(c)).Inc()
}
