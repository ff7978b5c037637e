package repositories_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nfaa/webapp/internal/infrastructure/repositories"
)

func TestRateLimitMemoryRepository_FixedWindow(t *testing.T) {
	repo := repositories.NewRateLimitMemoryRepository()
	window := 10 * time.Second

	count, start := repo.IncrementWindow("k", t0, window)
	require.Equal(t, 1, count)
	require.Equal(t, t0, start)

	count, start = repo.IncrementWindow("k", t0.Add(9*time.Second), window)
	require.Equal(t, 2, count)
	require.Equal(t, t0, start)

	// the window boundary starts a fresh bucket
	count, start = repo.IncrementWindow("k", t0.Add(window), window)
	require.Equal(t, 1, count)
	require.Equal(t, t0.Add(window), start)
}

func TestRateLimitMemoryRepository_KeysAreIndependent(t *testing.T) {
	repo := repositories.NewRateLimitMemoryRepository()
	for i := 0; i < 5; i++ {
		repo.IncrementWindow("a", t0, time.Minute)
	}
	count, _ := repo.IncrementWindow("b", t0, time.Minute)
	require.Equal(t, 1, count)
	require.Equal(t, 2, repo.Len())
}

func TestRateLimitMemoryRepository_ConcurrentIncrementsAreAtomic(t *testing.T) {
	repo := repositories.NewRateLimitMemoryRepository()
	const goroutines, perG = 20, 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				repo.IncrementWindow("hot", t0, time.Minute)
			}
		}()
	}
	wg.Wait()

	count, _ := repo.IncrementWindow("hot", t0, time.Minute)
	require.Equal(t, goroutines*perG+1, count)
}

func TestRateLimitMemoryRepository_Sweep(t *testing.T) {
	repo := repositories.NewRateLimitMemoryRepository()
	require.Equal(t, "rate_buckets", repo.Name())

	repo.IncrementWindow("old", t0, 10*time.Second)
	repo.IncrementWindow("new", t0.Add(5*time.Second), 10*time.Second)

	require.Equal(t, 1, repo.Sweep(t0.Add(10*time.Second)))
	require.Equal(t, 1, repo.Len())
}
