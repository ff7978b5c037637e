package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nfaa/webapp/internal/core/domain/user"
	"github.com/nfaa/webapp/internal/core/ports"
	"github.com/nfaa/webapp/internal/infrastructure/db"
)

// ErrUserNotFound is returned when no user row matches the lookup.
var ErrUserNotFound = user.ErrNotFound

const userColumns = `id, email, password_hash, display_name, role, is_active, created_at, updated_at`

// UserRepository implements the user repository interface
type UserRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(database *db.Database, logger *logrus.Logger) ports.UserRepository {
	return &UserRepository{
		db:     database,
		logger: logger,
	}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var u user.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	if err := r.db.DB.GetContext(ctx, &u, query, id); err != nil {
		return nil, r.lookupError(err, logrus.Fields{"user_id": id})
	}
	return r.checked(&u)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	if err := r.db.DB.GetContext(ctx, &u, query, email); err != nil {
		return nil, r.lookupError(err, logrus.Fields{"email": email})
	}
	return r.checked(&u)
}

func (r *UserRepository) lookupError(err error, fields logrus.Fields) error {
	if errors.Is(err, sql.ErrNoRows) {
		if r.logger != nil {
			r.logger.WithFields(fields).Debug("db: user not found")
		}
		return ErrUserNotFound
	}
	if r.logger != nil {
		r.logger.WithFields(fields).WithError(err).Error("db: failed to get user")
	}
	return fmt.Errorf("failed to get user: %w", err)
}

// checked rejects rows whose role is outside the closed role set.
func (r *UserRepository) checked(u *user.User) (*user.User, error) {
	if _, err := user.ParseRole(string(u.Role)); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Error("db: user has unknown role")
		}
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}
	return u, nil
}
