package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nfaa/webapp/internal/core/domain/auth"
	"github.com/nfaa/webapp/internal/core/domain/user"
)

// AuthService defines the login/logout flow driven by the auth handlers.
type AuthService interface {
	// Login verifies credentials and opens a session for the user.
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.Session, *user.User, error)
	// Logout destroys the session; unknown ids are not an error.
	Logout(ctx context.Context, sessionID string) error
	// CurrentUser loads the user record behind a resolved session.
	CurrentUser(ctx context.Context, sess *auth.Session) (*user.User, error)
	// SessionTTL is the lifetime given to new sessions.
	SessionTTL() time.Duration
}

// SessionStore maps opaque session ids to sessions.
// Implementations MUST be safe for concurrent use.
type SessionStore interface {
	// Create issues a fresh unguessable id and stores the session.
	Create(ctx context.Context, subjectID uuid.UUID, role user.Role, ttl time.Duration) (*auth.Session, error)
	// Get returns the session when present and not expired.
	Get(ctx context.Context, sessionID string) (*auth.Session, bool)
	// Delete removes the session; removing an unknown id is not an error.
	Delete(ctx context.Context, sessionID string) error
}

// SessionPersistence is the optional durable backing for a SessionStore,
// letting sessions survive a process restart.
type SessionPersistence interface {
	Save(ctx context.Context, sess *auth.Session) error
	// Load returns (nil, nil) when the session is unknown.
	Load(ctx context.Context, sessionID string) (*auth.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// CredentialVerifier checks a plaintext password against a stored hash.
type CredentialVerifier interface {
	Verify(plaintext, hash string) bool
}
