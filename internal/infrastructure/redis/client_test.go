package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	config "github.com/nfaa/webapp/configs"
	"github.com/nfaa/webapp/internal/infrastructure/redis"
)

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := redis.NewRedisClient(context.Background(), &config.RedisConfig{Host: mr.Host(), Port: mr.Port(), PoolSize: 2, DialTimeout: time.Second})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	v, err := mr.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = redis.NewRedisClient(ctx, &config.RedisConfig{Host: host, Port: port, DialTimeout: 200 * time.Millisecond})
	require.Error(t, err)
	require.Contains(t, err.Error(), host)
}
