package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/nfaa/webapp/internal/core/domain/auth"
	"github.com/nfaa/webapp/internal/core/ports"
)

const (
	sessionPrefix = "nfaa_sessions"
)

// SessionRedisRepository persists sessions in Redis so they survive a restart.
type SessionRedisRepository struct {
	client redis.Cmdable
	clock  ports.Clock
	logger *logrus.Logger
}

// NewSessionRedisRepository creates a new Redis session repository
func NewSessionRedisRepository(client redis.Cmdable, clock ports.Clock, logger *logrus.Logger) *SessionRedisRepository {
	return &SessionRedisRepository{client: client, clock: clock, logger: logger}
}

var _ ports.SessionPersistence = (*SessionRedisRepository)(nil)

func sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", sessionPrefix, id)
}

// Save stores the session with a Redis TTL equal to its remaining lifetime.
func (r *SessionRedisRepository) Save(ctx context.Context, sess *auth.Session) error {
	ttl := sess.ExpiresAt.Sub(r.clock.Now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"subject_id": sess.SubjectID, "ttl": ttl.String()}).Debug("redis: session stored")
	}
	return nil
}

// Load retrieves a session; (nil, nil) when the key is missing.
func (r *SessionRedisRepository) Load(ctx context.Context, sessionID string) (*auth.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}
	var sess auth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Delete removes the session key; a missing key is not an error.
func (r *SessionRedisRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	return nil
}
