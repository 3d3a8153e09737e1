// Package usecase defines the application's use case interfaces and their
// input/output DTOs. Handlers depend on these interfaces, not on the
// implementations in impl.
package usecase

import (
	"context"

	"chatline/internal/domain/entity"
)

// RegisterInput carries the registration request fields.
type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginInput carries the login request fields.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginOutput carries the issued session token and the authenticated user.
type LoginOutput struct {
	Token string
	User  *entity.User
}

// AccountUsecase orchestrates the account lifecycle: registration, email
// verification, login, and the OTP-based password reset flow.
type AccountUsecase interface {
	// Register creates an unverified account and dispatches the
	// verification email as a background best-effort task.
	Register(ctx context.Context, input *RegisterInput) (*entity.User, error)

	// VerifyEmail validates a verification token and flips the account to
	// verified. A second call for an already verified account is rejected.
	VerifyEmail(ctx context.Context, token string) error

	// Login checks credentials and issues a session token. Unverified
	// accounts are unconditionally blocked.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// RequestOTP issues a fresh 6-digit passcode, persists only its hash,
	// and emails the plaintext code.
	RequestOTP(ctx context.Context, email string) error

	// VerifyOTP compares a submitted code against the pending OTP hash.
	// The OTP is not consumed on success; only ResetPassword clears it.
	VerifyOTP(ctx context.Context, email string, code string) error

	// ResetPassword overwrites the password and clears any pending OTP.
	ResetPassword(ctx context.Context, email string, newPassword string) error

	// GetProfile loads the user identified by a session token's subject.
	GetProfile(ctx context.Context, userID string) (*entity.User, error)
}
