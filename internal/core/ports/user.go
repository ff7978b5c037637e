package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/nfaa/webapp/internal/core/domain/user"
)

// UserRepository defines the user-record lookups the gatekeeping layer needs
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}
