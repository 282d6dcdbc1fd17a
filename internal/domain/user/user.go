package user

import (
	"context"
	"time"

	"github.com/gigbook/service-booking/internal/domain"
)

const maxUsernameLength = 100

// User is a registered account that may own bands.
type User struct {
	id           int64
	username     string
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser creates a user from a username and an already-hashed password.
func NewUser(username, passwordHash string) (*User, error) {
	if username == "" {
		return nil, domain.NewValidationError("username is required")
	}
	if len(username) > maxUsernameLength {
		return nil, domain.NewValidationError("username must be at most 100 characters")
	}
	if passwordHash == "" {
		return nil, domain.NewValidationError("password is required")
	}
	now := time.Now().UTC()
	return &User{
		username:     username,
		passwordHash: passwordHash,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a User from persistence data (no validation).
func Reconstruct(id int64, username, passwordHash string, createdAt, updatedAt time.Time) *User {
	return &User{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (u *User) ID() int64            { return u.id }
func (u *User) Username() string     { return u.username }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// AssignID records the identifier generated by the store on insert.
func (u *User) AssignID(id int64) { u.id = id }

// UserRepository defines the persistence contract for users.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)

	// Save persists a new user. A taken username is reported as a conflict.
	Save(ctx context.Context, user *User) error
}
