package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatline/config"
	"chatline/internal/domain/service"
)

func newTestJWTService(t *testing.T, sessionTTL, verificationTTL time.Duration) service.TokenService {
	t.Helper()

	cfg := &config.Config{
		Auth: &config.AuthConfig{
			SessionTokenTTL:      sessionTTL,
			VerificationTokenTTL: verificationTTL,
		},
	}
	cfg.SecretKey.Session = "session-secret"
	cfg.SecretKey.Email = "email-secret"

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	return svc
}

func TestNewJWTService_RequiresSecrets(t *testing.T) {
	_, err := NewJWTService(&config.Config{})
	require.Error(t, err)
}

func TestJWTService_SessionToken_RoundTrip(t *testing.T) {
	svc := newTestJWTService(t, time.Hour, time.Minute)

	token, err := svc.GenerateSessionToken("user-1", "alice", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsVerified)
}

func TestJWTService_VerificationToken_RoundTrip(t *testing.T) {
	svc := newTestJWTService(t, time.Hour, time.Minute)

	token, err := svc.GenerateVerificationToken("alice", "alice@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateVerificationToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestJWTService_TokensAreNotInterchangeable(t *testing.T) {
	svc := newTestJWTService(t, time.Hour, time.Minute)

	verificationToken, err := svc.GenerateVerificationToken("alice", "alice@example.com")
	require.NoError(t, err)

	// A verification token must never pass as a session token, and the
	// other way around; they are signed with different secrets.
	_, err = svc.ValidateSessionToken(verificationToken)
	assert.Error(t, err)

	sessionToken, err := svc.GenerateSessionToken("user-1", "alice", true)
	require.NoError(t, err)

	_, err = svc.ValidateVerificationToken(sessionToken)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := newTestJWTService(t, time.Hour, -time.Minute)

	token, err := svc.GenerateVerificationToken("alice", "alice@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateVerificationToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsTamperedToken(t *testing.T) {
	svc := newTestJWTService(t, time.Hour, time.Minute)

	token, err := svc.GenerateSessionToken("user-1", "alice", true)
	require.NoError(t, err)

	_, err = svc.ValidateSessionToken(token + "x")
	assert.Error(t, err)
}
