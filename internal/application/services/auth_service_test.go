package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/nfaa/webapp/internal/application/services"
	"github.com/nfaa/webapp/internal/core/domain/auth"
	"github.com/nfaa/webapp/internal/core/domain/user"
	"github.com/nfaa/webapp/internal/infrastructure/sessionstore"
	"github.com/nfaa/webapp/internal/utils"
	"github.com/nfaa/webapp/test/mocks"
)

func newAuthFixture(t *testing.T, u *user.User) (*services.AuthService, *sessionstore.MemoryStore) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(t0)
	repo := &mocks.UserRepositoryMock{
		GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
			if u != nil && email == u.Email {
				cp := *u
				return &cp, nil
			}
			return nil, user.ErrNotFound
		},
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
			if u != nil && id == u.ID {
				cp := *u
				return &cp, nil
			}
			return nil, user.ErrNotFound
		},
	}
	store := sessionstore.NewMemoryStore(clock, nil)
	svc := services.NewAuthService(repo, store, utils.BcryptVerifier{}, 30*24*time.Hour, nil)
	return svc, store
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := utils.HashPassword(pw)
	require.NoError(t, err)
	return h
}

func TestAuthService_LoginCreatesSession(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "ana@nfaa.io", PasswordHash: hashed(t, "s3cret"), Role: user.RoleAnalyst, IsActive: true}
	svc, store := newAuthFixture(t, u)
	ctx := context.Background()

	sess, got, err := svc.Login(ctx, &auth.LoginRequest{Email: u.Email, Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, u.ID, sess.SubjectID)
	require.Equal(t, user.RoleAnalyst, sess.Role)
	require.Equal(t, t0.Add(30*24*time.Hour), sess.ExpiresAt)
	require.Equal(t, 30*24*time.Hour, svc.SessionTTL())

	stored, ok := store.Get(ctx, sess.ID)
	require.True(t, ok)

	current, err := svc.CurrentUser(ctx, stored)
	require.NoError(t, err)
	require.Equal(t, u.Email, current.Email)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "ana@nfaa.io", PasswordHash: hashed(t, "s3cret"), Role: user.RoleViewer, IsActive: true}
	svc, store := newAuthFixture(t, u)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, &auth.LoginRequest{Email: u.Email, Password: "wrong"})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, &auth.LoginRequest{Email: "nobody@nfaa.io", Password: "s3cret"})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.Equal(t, 0, store.Len())
}

func TestAuthService_UnknownEmailStillComparesAHash(t *testing.T) {
	var compared []string
	verifier := &mocks.CredentialVerifierMock{
		Decoy: "decoy-hash",
		VerifyFn: func(plaintext, hash string) bool {
			compared = append(compared, hash)
			return true
		},
	}
	repo := &mocks.UserRepositoryMock{
		GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) { return nil, user.ErrNotFound },
	}
	store := sessionstore.NewMemoryStore(clockwork.NewFakeClockAt(t0), nil)
	svc := services.NewAuthService(repo, store, verifier, time.Hour, nil)

	_, _, err := svc.Login(context.Background(), &auth.LoginRequest{Email: "nobody@nfaa.io", Password: "pw"})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	require.Equal(t, []string{"decoy-hash"}, compared)
	require.Equal(t, 0, store.Len())
}

func TestAuthService_LoginRejectsInactiveUser(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "old@nfaa.io", PasswordHash: hashed(t, "pw"), Role: user.RoleViewer, IsActive: false}
	svc, _ := newAuthFixture(t, u)

	_, _, err := svc.Login(context.Background(), &auth.LoginRequest{Email: u.Email, Password: "pw"})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_LoginSurfacesEntropyFailure(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "ana@nfaa.io", Role: user.RoleViewer, IsActive: true}
	repo := &mocks.UserRepositoryMock{
		GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) { return u, nil },
	}
	sessions := &mocks.SessionStoreMock{
		CreateFn: func(ctx context.Context, subjectID uuid.UUID, role user.Role, ttl time.Duration) (*auth.Session, error) {
			return nil, auth.ErrEntropy
		},
	}
	svc := services.NewAuthService(repo, sessions, &mocks.CredentialVerifierMock{Accept: "pw"}, time.Hour, nil)

	_, _, err := svc.Login(context.Background(), &auth.LoginRequest{Email: u.Email, Password: "pw"})
	require.ErrorIs(t, err, auth.ErrEntropy)
	require.False(t, errors.Is(err, auth.ErrInvalidCredentials))
}

func TestAuthService_LogoutIsIdempotent(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "ana@nfaa.io", PasswordHash: hashed(t, "pw"), Role: user.RoleAdmin, IsActive: true}
	svc, store := newAuthFixture(t, u)
	ctx := context.Background()

	sess, _, err := svc.Login(ctx, &auth.LoginRequest{Email: u.Email, Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.ID))
	_, ok := store.Get(ctx, sess.ID)
	require.False(t, ok)

	require.NoError(t, svc.Logout(ctx, sess.ID))
	require.NoError(t, svc.Logout(ctx, ""))
}

func TestAuthService_CurrentUser(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "ana@nfaa.io", Role: user.RoleViewer, IsActive: false}
	svc, _ := newAuthFixture(t, u)
	ctx := context.Background()

	_, err := svc.CurrentUser(ctx, nil)
	require.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = svc.CurrentUser(ctx, &auth.Session{SubjectID: u.ID, Role: user.RoleViewer})
	require.ErrorIs(t, err, auth.ErrUnauthenticated, "disabled users lose access")

	_, err = svc.CurrentUser(ctx, &auth.Session{SubjectID: uuid.New(), Role: user.RoleViewer})
	require.ErrorIs(t, err, user.ErrNotFound)
}
