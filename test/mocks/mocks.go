package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nfaa/webapp/internal/core/domain/auth"
	"github.com/nfaa/webapp/internal/core/domain/user"
	"github.com/nfaa/webapp/internal/core/ports"
)

// UserRepositoryMock is a lightweight mock for UserRepository that counts lookups
type UserRepositoryMock struct {
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*user.User, error)

	mu    sync.Mutex
	calls int
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	m.count()
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	m.count()
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, user.ErrNotFound
}

// Calls reports how many lookups reached the mock.
func (m *UserRepositoryMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *UserRepositoryMock) count() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

var _ ports.UserRepository = (*UserRepositoryMock)(nil)

// SessionStoreMock is a lightweight mock for SessionStore
type SessionStoreMock struct {
	CreateFn func(ctx context.Context, subjectID uuid.UUID, role user.Role, ttl time.Duration) (*auth.Session, error)
	GetFn    func(ctx context.Context, sessionID string) (*auth.Session, bool)
	DeleteFn func(ctx context.Context, sessionID string) error
}

func (m *SessionStoreMock) Create(ctx context.Context, subjectID uuid.UUID, role user.Role, ttl time.Duration) (*auth.Session, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, subjectID, role, ttl)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *SessionStoreMock) Get(ctx context.Context, sessionID string) (*auth.Session, bool) {
	if m.GetFn != nil {
		return m.GetFn(ctx, sessionID)
	}
	return nil, false
}
func (m *SessionStoreMock) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, sessionID)
	}
	return nil
}

var _ ports.SessionStore = (*SessionStoreMock)(nil)

// SessionPersistenceMock is a lightweight mock for SessionPersistence
type SessionPersistenceMock struct {
	SaveFn   func(ctx context.Context, sess *auth.Session) error
	LoadFn   func(ctx context.Context, sessionID string) (*auth.Session, error)
	DeleteFn func(ctx context.Context, sessionID string) error
}

func (m *SessionPersistenceMock) Save(ctx context.Context, sess *auth.Session) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, sess)
	}
	return nil
}
func (m *SessionPersistenceMock) Load(ctx context.Context, sessionID string) (*auth.Session, error) {
	if m.LoadFn != nil {
		return m.LoadFn(ctx, sessionID)
	}
	return nil, nil
}
func (m *SessionPersistenceMock) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, sessionID)
	}
	return nil
}

var _ ports.SessionPersistence = (*SessionPersistenceMock)(nil)

// CredentialVerifierMock accepts the password Accept for every hash unless VerifyFn is set
type CredentialVerifierMock struct {
	Accept   string
	Decoy    string
	VerifyFn func(plaintext, hash string) bool
}

func (m *CredentialVerifierMock) DecoyHash() string {
	return m.Decoy
}

func (m *CredentialVerifierMock) Verify(plaintext, hash string) bool {
	if m.VerifyFn != nil {
		return m.VerifyFn(plaintext, hash)
	}
	return plaintext == m.Accept
}

var _ ports.CredentialVerifier = (*CredentialVerifierMock)(nil)

// RateLimiterServiceMock is a lightweight mock for RateLimiterService
type RateLimiterServiceMock struct {
	CheckFn func(clientID, path string, now time.Time) ports.RateDecision
}

func (m *RateLimiterServiceMock) Check(clientID, path string, now time.Time) ports.RateDecision {
	if m.CheckFn != nil {
		return m.CheckFn(clientID, path, now)
	}
	return ports.RateDecision{Allowed: true, Limit: 60, Remaining: 59, ResetAt: now.Add(10 * time.Second)}
}

var _ ports.RateLimiterService = (*RateLimiterServiceMock)(nil)
