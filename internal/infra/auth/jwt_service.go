package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"chatline/config"
	"chatline/internal/domain/service"
)

// jwtService is a concrete implementation of the TokenService interface using
// the JWT standard. Session and verification tokens are signed with distinct
// secrets so one can never be replayed as the other.
type jwtService struct {
	sessionSecret   string
	emailSecret     string
	sessionTTL      time.Duration // Time-to-live for session tokens.
	verificationTTL time.Duration // Time-to-live for email verification tokens.
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Session == "" || cfg.SecretKey.Email == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	sessionTTL := 72 * time.Hour
	verificationTTL := 3 * time.Minute
	if cfg.Auth != nil {
		if cfg.Auth.SessionTokenTTL > 0 {
			sessionTTL = cfg.Auth.SessionTokenTTL
		}
		if cfg.Auth.VerificationTokenTTL > 0 {
			verificationTTL = cfg.Auth.VerificationTokenTTL
		}
	}

	return &jwtService{
		sessionSecret:   cfg.SecretKey.Session,
		emailSecret:     cfg.SecretKey.Email,
		sessionTTL:      sessionTTL,
		verificationTTL: verificationTTL,
	}, nil
}

// GenerateSessionToken creates a signed session token embedding the user id,
// username and verification flag.
func (s *jwtService) GenerateSessionToken(userID, username string, isVerified bool) (string, error) {
	now := time.Now()
	claims := &service.SessionClaims{
		UserID:     userID,
		Username:   username,
		IsVerified: isVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(s.sessionSecret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}

	return signed, nil
}

// ValidateSessionToken checks the signature and expiry of a session token.
func (s *jwtService) ValidateSessionToken(tokenString string) (*service.SessionClaims, error) {
	claims := &service.SessionClaims{}
	if err := s.parse(tokenString, claims, s.sessionSecret); err != nil {
		return nil, errors.Wrap(err, "invalid session token")
	}

	return claims, nil
}

// GenerateVerificationToken creates a short-lived signed token embedding the
// username and email, carried by the verification link.
func (s *jwtService) GenerateVerificationToken(username, email string) (string, error) {
	now := time.Now()
	claims := &service.VerificationClaims{
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.verificationTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(s.emailSecret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign verification token")
	}

	return signed, nil
}

// ValidateVerificationToken checks the signature and expiry of a verification token.
func (s *jwtService) ValidateVerificationToken(tokenString string) (*service.VerificationClaims, error) {
	claims := &service.VerificationClaims{}
	if err := s.parse(tokenString, claims, s.emailSecret); err != nil {
		return nil, errors.Wrap(err, "invalid verification token")
	}

	return claims, nil
}

// parse is a private helper that validates a token against a secret and
// decodes its claims.
func (s *jwtService) parse(tokenString string, claims jwt.Claims, secret string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenUnverifiable
	}

	return nil
}
