package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/nfaa/webapp/internal/infrastructure/httpserver/middleware"
)

func newTestMetrics() middleware.Metrics {
	return middleware.Metrics{
		RequestsTotal:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "t_requests_total"}, []string{"method", "endpoint", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "t_duration_seconds"}, []string{"method", "endpoint"}),
		AuthFailures:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "t_auth_failures_total"}, []string{"reason"}),
		RateLimited:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "t_rate_limited_total"}, []string{"path"}),
	}
}

func TestMetrics_CountsRequestsWithErrorStatus(t *testing.T) {
	m := newTestMetrics()
	mm := middleware.NewMetricsMiddleware(m)

	e := echo.New()
	e.Use(mm.CollectHTTPMetrics())
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/denied", func(c echo.Context) error { return echo.NewHTTPError(http.StatusForbidden) })

	for _, p := range []string{"/ok", "/ok", "/denied"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/ok", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/denied", "403")))
}

func TestMetrics_GatekeepingCounters(t *testing.T) {
	m := newTestMetrics()
	mm := middleware.NewMetricsMiddleware(m)

	mm.ObserveAuthFailure("no_cookie")
	mm.ObserveAuthFailure("no_cookie")

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/users/42", nil), httptest.NewRecorder())
	c.SetPath("/api/users/:id")
	mm.ObserveRateLimited(c)

	require.Equal(t, 2.0, testutil.ToFloat64(m.AuthFailures.WithLabelValues("no_cookie")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("/api/users/:id")))

	// nil receivers and collectors are no-ops
	var none *middleware.MetricsMiddleware
	none.ObserveAuthFailure("x")
	middleware.NewMetricsMiddleware(middleware.Metrics{}).ObserveRateLimited(c)
}

func TestMetrics_LabelsAreRouteTemplates(t *testing.T) {
	m := newTestMetrics()
	mm := middleware.NewMetricsMiddleware(m)

	e := echo.New()
	e.Use(mm.CollectHTTPMetrics())
	e.GET("/api/users/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, p := range []string{"/api/users/1", "/api/users/2", "/api/users/3"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	require.Equal(t, 3.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/users/:id", "200")))

	// a request that reached no route is counted under one label, not its raw path
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/nope/123", nil), httptest.NewRecorder())
	h := mm.CollectHTTPMetrics()(func(echo.Context) error { return echo.ErrNotFound })
	require.Error(t, h(c))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", middleware.UnmatchedRoute, "404")))
	require.Equal(t, 2, testutil.CollectAndCount(m.RequestsTotal))
}
