package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/nfaa/webapp/internal/application/services"
	"github.com/nfaa/webapp/internal/core/domain/user"
	"github.com/nfaa/webapp/internal/infrastructure/memcache"
	"github.com/nfaa/webapp/internal/infrastructure/repositories"
	"github.com/nfaa/webapp/internal/infrastructure/sessionstore"
)

func TestJanitor_RunOnceSweepsEveryStore(t *testing.T) {
	clock := clockwork.NewFakeClockAt(t0)
	sessions := sessionstore.NewMemoryStore(clock, nil)
	cache := memcache.New[string](clock, memcache.Options{Name: "strings"})
	buckets := repositories.NewRateLimitMemoryRepository()

	_, err := sessions.Create(context.Background(), uuid.New(), user.RoleViewer, time.Minute)
	require.NoError(t, err)
	cache.Set("a", "x", time.Minute)
	cache.Set("b", "y", time.Hour)
	buckets.IncrementWindow("k", t0, 10*time.Second)

	j, err := services.NewJanitor("@every 1m", clock, nil, sessions, cache, buckets)
	require.NoError(t, err)

	require.Equal(t, 0, j.RunOnce())

	clock.Advance(time.Minute)
	require.Equal(t, 3, j.RunOnce())
	require.Equal(t, 0, sessions.Len())
	require.Equal(t, 1, cache.Len())
	require.Equal(t, 0, buckets.Len())
}

func TestJanitor_RejectsBadSchedule(t *testing.T) {
	_, err := services.NewJanitor("every now and then", clockwork.NewFakeClockAt(t0), nil)
	require.Error(t, err)
}

func TestJanitor_StartStop(t *testing.T) {
	j, err := services.NewJanitor("@every 1h", clockwork.NewFakeClockAt(t0), nil)
	require.NoError(t, err)
	j.Start()
	j.Stop()
}
