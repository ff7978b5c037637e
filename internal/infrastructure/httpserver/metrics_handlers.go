package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	customMiddleware "github.com/nfaa/webapp/internal/infrastructure/httpserver/middleware"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "The HTTP request latencies in seconds",
		},
		[]string{"method", "endpoint"},
	)

	authFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_auth_failures_total",
			Help: "Requests rejected by the session guard",
		},
		[]string{"reason"},
	)

	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, authFailures, rateLimited)
}

// GetMetrics returns the collectors the middleware writes to.
func GetMetrics() customMiddleware.Metrics {
	return customMiddleware.Metrics{
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
		AuthFailures:    authFailures,
		RateLimited:     rateLimited,
	}
}

// LogMetricsInitialization logs that metrics have been initialized
func (s *Server) LogMetricsInitialization() {
	if s.logger != nil {
		s.logger.Info("Prometheus metrics initialized and registered")
		s.logger.WithFields(map[string]interface{}{
			"http_requests_total":      "Counter for HTTP requests by method, endpoint, status",
			"http_request_duration":    "Histogram for HTTP request duration by method, endpoint",
			"gate_auth_failures_total": "Counter for session guard rejections by reason",
			"gate_rate_limited_total":  "Counter for throttled requests by route",
			"metrics_endpoint":         "/metrics",
		}).Debug("Available Prometheus metrics")
	}
}

func (s *Server) metricsHandler() http.Handler {
	return promhttp.Handler()
}

func (s *Server) metricsEndpoint(c echo.Context) error {
	s.metricsHandler().ServeHTTP(c.Response(), c.Request())
	return nil
}
