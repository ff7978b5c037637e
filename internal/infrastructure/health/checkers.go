package health

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/nfaa/webapp/internal/core/ports"
	infraDB "github.com/nfaa/webapp/internal/infrastructure/db"
)

// probe adapts a ping function to ports.HealthChecker.
type probe struct {
	name string
	ping func(ctx context.Context) error
}

func (p probe) Name() string                    { return p.name }
func (p probe) Check(ctx context.Context) error { return p.ping(ctx) }

// NewDBHealthChecker reports the user database as unhealthy when it stops answering pings.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker {
	return probe{name: "database", ping: db.DB.PingContext}
}

// NewRedisHealthChecker probes the session persistence backend.
func NewRedisHealthChecker(client redis.Cmdable) ports.HealthChecker {
	return probe{name: "redis", ping: func(ctx context.Context) error { return client.Ping(ctx).Err() }}
}
