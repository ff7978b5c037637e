package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nfaa/webapp/internal/core/domain/auth"
	"github.com/nfaa/webapp/internal/core/domain/user"
	"github.com/nfaa/webapp/internal/core/ports"
)

type AuthService struct {
	userRepo   ports.UserRepository
	sessions   ports.SessionStore
	verifier   ports.CredentialVerifier
	sessionTTL time.Duration
	decoyHash  string
	logger     *logrus.Logger
}

// decoyHasher is implemented by verifiers that supply a hash to compare against
// when no account matches the login email.
type decoyHasher interface {
	DecoyHash() string
}

func NewAuthService(userRepo ports.UserRepository, sessions ports.SessionStore, verifier ports.CredentialVerifier, sessionTTL time.Duration, logger *logrus.Logger) *AuthService {
	s := &AuthService{
		userRepo:   userRepo,
		sessions:   sessions,
		verifier:   verifier,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
	if d, ok := verifier.(decoyHasher); ok {
		s.decoyHash = d.DecoyHash()
	}
	return s
}

var _ ports.AuthService = (*AuthService)(nil)

func (s *AuthService) SessionTTL() time.Duration { return s.sessionTTL }

func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.Session, *user.User, error) {
	foundUser, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"email": req.Email}).WithError(err).Debug("login: user lookup failed")
		}
		if s.decoyHash != "" {
			s.verifier.Verify(req.Password, s.decoyHash)
		}
		return nil, nil, auth.ErrInvalidCredentials
	}

	if !s.verifier.Verify(req.Password, foundUser.PasswordHash) {
		return nil, nil, auth.ErrInvalidCredentials
	}

	if !foundUser.IsActive {
		return nil, nil, auth.ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, foundUser.ID, foundUser.Role, s.sessionTTL)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": foundUser.ID}).WithError(err).Error("login: failed to create session")
		}
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": foundUser.ID, "role": foundUser.Role}).Info("user logged in")
	}
	return sess, foundUser, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

func (s *AuthService) CurrentUser(ctx context.Context, sess *auth.Session) (*user.User, error) {
	if sess == nil {
		return nil, auth.ErrUnauthenticated
	}
	u, err := s.userRepo.GetByID(ctx, sess.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if !u.IsActive {
		return nil, errors.Join(auth.ErrUnauthenticated, fmt.Errorf("user %s is disabled", u.ID))
	}
	return u, nil
}
