package service

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the custom claims embedded in a session token, issued on
// successful login.
type SessionClaims struct {
	UserID     string `json:"userId"`
	Username   string `json:"username"`
	IsVerified bool   `json:"isVerified"`
	jwt.RegisteredClaims
}

// VerificationClaims are the custom claims embedded in an email-verification
// token, carried by the link mailed at registration.
type VerificationClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and validating the two
// signed, time-limited bearer tokens the account service uses. The two
// purposes are signed with separate secrets so a verification token can
// never pass as a session.
type TokenService interface {
	// GenerateSessionToken creates a session token proving a successful login.
	GenerateSessionToken(userID, username string, isVerified bool) (string, error)

	// ValidateSessionToken checks signature and expiry of a session token.
	ValidateSessionToken(tokenString string) (*SessionClaims, error)

	// GenerateVerificationToken creates a short-lived token embedded in the
	// verification email link.
	GenerateVerificationToken(username, email string) (string, error)

	// ValidateVerificationToken checks signature and expiry of a
	// verification token.
	ValidateVerificationToken(tokenString string) (*VerificationClaims, error)
}
