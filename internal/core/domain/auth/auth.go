package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nfaa/webapp/internal/core/domain/user"
)

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a server-held record binding an opaque token to an identity.
type Session struct {
	ID        string    `json:"id"`
	SubjectID uuid.UUID `json:"subject_id"`
	Role      user.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session is no longer valid at now.
func (s *Session) IsExpired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !now.Before(s.ExpiresAt)
}

// HasRole reports whether the session role is a member of allowed.
// An empty allowed set admits every role.
func (s *Session) HasRole(allowed ...user.Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if s.Role == r {
			return true
		}
	}
	return false
}

var (
	// ErrUnauthenticated is returned when there is no session or it expired.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when a valid session lacks a permitted role.
	ErrForbidden = errors.New("forbidden")
	// ErrThrottled matches any *ThrottledError via errors.Is.
	ErrThrottled = errors.New("rate limit exceeded")
	// ErrInvalidCredentials is returned by login for unknown users or bad passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEntropy means the random source failed; no session id was issued.
	ErrEntropy = errors.New("session id entropy source failed")
)

// ThrottledError carries the advisory retry delay of a rate-limit rejection.
type ThrottledError struct {
	RetryAfter int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %ds", e.RetryAfter)
}

func (e *ThrottledError) Is(target error) bool { return target == ErrThrottled }

// unexported, collision-proof context key
type sessionContextKey struct{}

// ContextWithSession returns a copy of ctx carrying the resolved session.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext extracts the session attached by the session guard.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}
