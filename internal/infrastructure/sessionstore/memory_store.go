// Package sessionstore holds the process-local session table.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nfaa/webapp/internal/core/domain/auth"
	"github.com/nfaa/webapp/internal/core/domain/user"
	"github.com/nfaa/webapp/internal/core/ports"
)

const (
	// maxIDAttempts bounds regeneration when a fresh id collides with a live one.
	maxIDAttempts = 3
	// maxPersistDeleteAttempts bounds retries of a failed persisted delete.
	maxPersistDeleteAttempts = 3
)

// pendingLoad tracks fallback loads in flight for one id. deleted is set when a
// Delete for that id runs while a load is outstanding.
type pendingLoad struct {
	waiters int
	deleted bool
}

// MemoryStore implements ports.SessionStore over a mutex-guarded map.
// When a ports.SessionPersistence is attached, writes go through to it and
// local misses fall back to it.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
	// loads and deleting keep a fallback load from resurrecting a session that
	// was deleted while the load was reading persistence.
	loads    map[string]*pendingLoad
	deleting map[string]int
	clock    ports.Clock
	persist  ports.SessionPersistence
	entropy  io.Reader
	logger   *logrus.Logger
}

// Option customizes a MemoryStore.
type Option func(*MemoryStore)

// WithPersistence attaches a durable backing store.
func WithPersistence(p ports.SessionPersistence) Option {
	return func(s *MemoryStore) { s.persist = p }
}

// WithEntropy replaces crypto/rand as the id source.
func WithEntropy(r io.Reader) Option {
	return func(s *MemoryStore) { s.entropy = r }
}

// NewMemoryStore creates an empty session table.
func NewMemoryStore(clock ports.Clock, logger *logrus.Logger, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*auth.Session),
		loads:    make(map[string]*pendingLoad),
		deleting: make(map[string]int),
		clock:    clock,
		entropy:  defaultEntropy,
		logger:   logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ ports.SessionStore = (*MemoryStore)(nil)

func (s *MemoryStore) Name() string { return "sessions" }

// Create implements SessionStore.Create.
func (s *MemoryStore) Create(ctx context.Context, subjectID uuid.UUID, role user.Role, ttl time.Duration) (*auth.Session, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("session: invalid role %q", role)
	}
	if ttl <= 0 {
		return nil, errors.New("session: ttl must be positive")
	}

	sess, err := s.insert(subjectID, role, ttl)
	if err != nil {
		return nil, err
	}

	if s.persist != nil {
		if err := s.persist.Save(ctx, copySession(sess)); err != nil && s.logger != nil {
			s.logger.WithFields(logrus.Fields{"subject_id": subjectID}).WithError(err).Warn("session: failed to persist session")
		}
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"subject_id": subjectID, "role": role, "expires_at": sess.ExpiresAt}).Debug("session created")
	}
	return copySession(sess), nil
}

func (s *MemoryStore) insert(subjectID uuid.UUID, role user.Role, ttl time.Duration) (*auth.Session, error) {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := generateID(s.entropy)
		if err != nil {
			return nil, err
		}
		if cur, taken := s.sessions[id]; taken && !cur.IsExpired(now) {
			continue
		}
		sess := &auth.Session{
			ID:        id,
			SubjectID: subjectID,
			Role:      role,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		}
		s.sessions[id] = sess
		return sess, nil
	}
	return nil, fmt.Errorf("%w: could not produce a unique id", auth.ErrEntropy)
}

// Get implements SessionStore.Get. Expired sessions are removed and reported absent.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*auth.Session, bool) {
	if sessionID == "" {
		return nil, false
	}
	now := s.clock.Now()

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok && sess.IsExpired(now) {
		delete(s.sessions, sessionID)
		sess, ok = nil, false
	}
	s.mu.Unlock()
	if ok {
		return copySession(sess), true
	}

	if s.persist == nil {
		return nil, false
	}
	return s.loadPersisted(ctx, sessionID, now)
}

func (s *MemoryStore) loadPersisted(ctx context.Context, sessionID string, now time.Time) (*auth.Session, bool) {
	s.mu.Lock()
	if s.deleting[sessionID] > 0 {
		s.mu.Unlock()
		return nil, false
	}
	pl := s.loads[sessionID]
	if pl == nil {
		pl = &pendingLoad{}
		s.loads[sessionID] = pl
	}
	pl.waiters++
	s.mu.Unlock()

	stored, ok := s.readPersisted(ctx, sessionID, now)

	s.mu.Lock()
	defer s.mu.Unlock()
	pl.waiters--
	if pl.waiters == 0 {
		delete(s.loads, sessionID)
	}
	if !ok || pl.deleted {
		return nil, false
	}
	if cur, found := s.sessions[sessionID]; found {
		// a concurrent lookup got there first
		stored = cur
	} else {
		s.sessions[sessionID] = stored
	}
	return copySession(stored), true
}

func (s *MemoryStore) readPersisted(ctx context.Context, sessionID string, now time.Time) (*auth.Session, bool) {
	stored, err := s.persist.Load(ctx, sessionID)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("session: failed to load persisted session")
		}
		return nil, false
	}
	if stored == nil || stored.ID != sessionID || !stored.Role.IsValid() {
		return nil, false
	}
	if stored.IsExpired(now) {
		_ = s.persist.Delete(ctx, sessionID)
		return nil, false
	}
	return stored, true
}

// Delete implements SessionStore.Delete. It is idempotent.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	withPersist := s.persist != nil && sessionID != ""

	s.mu.Lock()
	delete(s.sessions, sessionID)
	if pl := s.loads[sessionID]; pl != nil {
		pl.deleted = true
	}
	if withPersist {
		s.deleting[sessionID]++
	}
	s.mu.Unlock()

	if !withPersist {
		return nil
	}
	defer func() {
		s.mu.Lock()
		if s.deleting[sessionID]--; s.deleting[sessionID] <= 0 {
			delete(s.deleting, sessionID)
		}
		s.mu.Unlock()
	}()

	var err error
	for attempt := 1; attempt <= maxPersistDeleteAttempts; attempt++ {
		if err = s.persist.Delete(ctx, sessionID); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	if s.logger != nil {
		s.logger.WithError(err).Error("session: failed to delete persisted session; it may reappear after a restart")
	}
	return nil
}

// Sweep removes expired sessions from the local table.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.IsExpired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of sessions held locally, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func copySession(s *auth.Session) *auth.Session {
	c := *s
	return &c
}
