package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is the record the login flow needs from the relational store.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	Role         Role      `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ErrNotFound is returned by repositories when no user matches a lookup.
var ErrNotFound = errors.New("user not found")

// Role is the closed set of roles a session can carry.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleAnalyst Role = "analyst"
	RoleAdmin   Role = "admin"
)

// AllRoles lists every valid role.
var AllRoles = []Role{RoleViewer, RoleAnalyst, RoleAdmin}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleViewer, RoleAnalyst, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts a stored role string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// PublicProfile is the identity shape returned to clients.
type PublicProfile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
}

func (u *User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Role: u.Role}
}
