package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/nfaa/webapp/internal/application/services"
	"github.com/nfaa/webapp/internal/core/domain/auth"
	"github.com/nfaa/webapp/internal/core/ports"
	"github.com/nfaa/webapp/internal/infrastructure/httpserver/helpers"
	"github.com/nfaa/webapp/internal/infrastructure/httpserver/middleware"
	"github.com/nfaa/webapp/internal/infrastructure/repositories"
	"github.com/nfaa/webapp/test/mocks"
)

func TestRateLimit_ThrottlesAfterQuota(t *testing.T) {
	clock := clockwork.NewFakeClockAt(t0)
	limiter := services.NewRateLimiterService(repositories.NewRateLimitMemoryRepository(), &services.RateLimiterConfig{MaxRequests: 2, Window: 10 * time.Second}, nil)
	rl := middleware.NewRateLimitMiddleware(limiter, clock, nil, nil)

	calls := 0
	h := rl.Handler()(func(c echo.Context) error { calls++; return nil })

	do := func(xff string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/api/stocks", nil)
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		rec := httptest.NewRecorder()
		err := h(echo.New().NewContext(req, rec))
		return rec, err
	}

	for i := 0; i < 2; i++ {
		rec, err := do("203.0.113.9")
		require.NoError(t, err)
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, strconv.Itoa(1-i), rec.Header().Get("X-RateLimit-Remaining"))
	}

	clock.Advance(3 * time.Second)
	rec, err := do("203.0.113.9, 10.0.0.1")
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	require.Equal(t, http.StatusTooManyRequests, he.Code)
	require.Equal(t, middleware.RateLimitMessage, he.Message)
	require.ErrorIs(t, err, auth.ErrThrottled)
	require.Equal(t, "7", rec.Header().Get("Retry-After"))
	require.Equal(t, strconv.FormatInt(t0.Add(10*time.Second).Unix(), 10), rec.Header().Get("X-RateLimit-Reset"))
	require.Equal(t, 2, calls)

	// a different client has its own bucket
	_, err = do("")
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRateLimit_BucketsByClientAndPath(t *testing.T) {
	var gotClient, gotPath string
	limiter := &mocks.RateLimiterServiceMock{
		CheckFn: func(clientID, path string, now time.Time) ports.RateDecision {
			gotClient, gotPath = clientID, path
			return ports.RateDecision{Allowed: true, Limit: 60, Remaining: 59, ResetAt: now.Add(10 * time.Second)}
		},
	}
	rl := middleware.NewRateLimitMiddleware(limiter, clockwork.NewFakeClockAt(t0), nil, nil)

	var stored string
	h := rl.Handler()(func(c echo.Context) error {
		stored, _ = helpers.GetClientIDRaw(c)
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users/42?x=1", nil)
	require.NoError(t, h(echo.New().NewContext(req, httptest.NewRecorder())))
	require.Equal(t, "anon", gotClient)
	require.Equal(t, "/api/users/42", gotPath)
	require.Equal(t, "anon", stored)
}
