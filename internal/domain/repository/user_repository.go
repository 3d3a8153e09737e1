// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"chatline/internal/domain/entity"
)

// Sentinel errors for user persistence. The mongo implementation maps
// driver-level failures (missing documents, unique index violations) onto
// these so the application layer never sees driver types.
var (
	// ErrUserNotFound is returned when no user matches the lookup key.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when a create collides with the unique
	// username index.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is returned when a create collides with the unique
	// email index.
	ErrEmailTaken = errors.New("email already taken")
)

// UserRepository defines the standard operations for user persistence.
// The application layer depends on this interface, not the concrete
// implementation. Every mutation is a single atomic document update.
type UserRepository interface {
	// Create persists a new user. Uniqueness of username and email is
	// enforced by the store's unique indexes, closing the
	// check-then-create race atomically.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a single user by their document id.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// FindByUsername retrieves a single user by their unique username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByEmail retrieves a single user by their unique email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// SetVerified marks the user's email as verified.
	SetVerified(ctx context.Context, id string) error

	// SetOTPHash writes the hash of a freshly issued OTP, overwriting any
	// previously pending one.
	SetOTPHash(ctx context.Context, id string, otpHash string) error

	// ResetPassword overwrites the password hash and clears the pending
	// OTP hash in one atomic update.
	ResetPassword(ctx context.Context, id string, passwordHash string) error
}
