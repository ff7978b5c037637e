package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nfaa/webapp/internal/core/domain/user"
	"github.com/nfaa/webapp/internal/core/ports"
)

// onceCache is satisfied by caches that can collapse concurrent misses.
type onceCache[V any] interface {
	ports.Cache[V]
	WrapOnce(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (V, error)) (V, error)
}

// CachingUserRepository decorates a UserRepository with cache-aside memoization.
type CachingUserRepository struct {
	inner ports.UserRepository
	cache ports.Cache[*user.User]
	ttl   time.Duration
}

func NewCachingUserRepository(inner ports.UserRepository, cache ports.Cache[*user.User], ttl time.Duration) *CachingUserRepository {
	return &CachingUserRepository{inner: inner, cache: cache, ttl: ttl}
}

var _ ports.UserRepository = (*CachingUserRepository)(nil)

func (c *CachingUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return c.wrap(ctx, "user:id:"+id.String(), func(ctx context.Context) (*user.User, error) {
		return c.inner.GetByID(ctx, id)
	})
}

func (c *CachingUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return c.wrap(ctx, "user:email:"+strings.ToLower(email), func(ctx context.Context) (*user.User, error) {
		return c.inner.GetByEmail(ctx, email)
	})
}

// Invalidate drops both cache entries of u, for writers that change a user row.
func (c *CachingUserRepository) Invalidate(u *user.User) {
	c.cache.Delete("user:id:" + u.ID.String())
	c.cache.Delete("user:email:" + strings.ToLower(u.Email))
}

func (c *CachingUserRepository) wrap(ctx context.Context, key string, load func(ctx context.Context) (*user.User, error)) (*user.User, error) {
	var (
		u   *user.User
		err error
	)
	if oc, ok := c.cache.(onceCache[*user.User]); ok {
		u, err = oc.WrapOnce(ctx, key, c.ttl, load)
	} else {
		u, err = c.cache.Wrap(ctx, key, c.ttl, load)
	}
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	// hand out a copy so callers cannot mutate the cached record
	cp := *u
	return &cp, nil
}
