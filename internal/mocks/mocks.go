// Package mocks provides hand-written test doubles for the domain
// interfaces. Each mock exposes function fields so tests can script
// behavior per call and record what they received.
package mocks

import (
	"context"
	"sync"

	"chatline/internal/domain/entity"
	"chatline/internal/domain/repository"
	"chatline/internal/domain/service"
)

// UserRepository is a scriptable repository.UserRepository.
type UserRepository struct {
	CreateFunc         func(ctx context.Context, user *entity.User) error
	FindByIDFunc       func(ctx context.Context, id string) (*entity.User, error)
	FindByUsernameFunc func(ctx context.Context, username string) (*entity.User, error)
	FindByEmailFunc    func(ctx context.Context, email string) (*entity.User, error)
	SetVerifiedFunc    func(ctx context.Context, id string) error
	SetOTPHashFunc     func(ctx context.Context, id string, otpHash string) error
	ResetPasswordFunc  func(ctx context.Context, id string, passwordHash string) error
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.CreateFunc(ctx, user)
}

func (m *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return m.FindByUsernameFunc(ctx, username)
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return m.FindByEmailFunc(ctx, email)
}

func (m *UserRepository) SetVerified(ctx context.Context, id string) error {
	return m.SetVerifiedFunc(ctx, id)
}

func (m *UserRepository) SetOTPHash(ctx context.Context, id string, otpHash string) error {
	return m.SetOTPHashFunc(ctx, id, otpHash)
}

func (m *UserRepository) ResetPassword(ctx context.Context, id string, passwordHash string) error {
	return m.ResetPasswordFunc(ctx, id, passwordHash)
}

// PasswordHasher is a scriptable service.PasswordHasher. The zero value
// hashes by prefixing and checks by comparing against that prefix, which is
// enough for flow tests without paying for bcrypt.
type PasswordHasher struct {
	HashFunc  func(plaintext string) (string, error)
	CheckFunc func(plaintext, hash string) bool
}

var _ service.PasswordHasher = (*PasswordHasher)(nil)

func (m *PasswordHasher) Hash(plaintext string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(plaintext)
	}

	return "hashed:" + plaintext, nil
}

func (m *PasswordHasher) Check(plaintext, hash string) bool {
	if m.CheckFunc != nil {
		return m.CheckFunc(plaintext, hash)
	}

	return hash == "hashed:"+plaintext
}

// TokenService is a scriptable service.TokenService.
type TokenService struct {
	GenerateSessionTokenFunc      func(userID, username string, isVerified bool) (string, error)
	ValidateSessionTokenFunc      func(tokenString string) (*service.SessionClaims, error)
	GenerateVerificationTokenFunc func(username, email string) (string, error)
	ValidateVerificationTokenFunc func(tokenString string) (*service.VerificationClaims, error)
}

var _ service.TokenService = (*TokenService)(nil)

func (m *TokenService) GenerateSessionToken(userID, username string, isVerified bool) (string, error) {
	return m.GenerateSessionTokenFunc(userID, username, isVerified)
}

func (m *TokenService) ValidateSessionToken(tokenString string) (*service.SessionClaims, error) {
	return m.ValidateSessionTokenFunc(tokenString)
}

func (m *TokenService) GenerateVerificationToken(username, email string) (string, error) {
	return m.GenerateVerificationTokenFunc(username, email)
}

func (m *TokenService) ValidateVerificationToken(tokenString string) (*service.VerificationClaims, error) {
	return m.ValidateVerificationTokenFunc(tokenString)
}

// SentMail records one delivery attempt made through the Mailer mock.
type SentMail struct {
	To   string
	Link string
	Code string
}

// Mailer is a recording service.Mailer. Sends succeed unless the
// corresponding error is set. Recorded sends are safe to read concurrently
// with Sent, which matters for the background verification dispatch.
type Mailer struct {
	VerificationErr error
	OTPErr          error

	mu   sync.Mutex
	sent []SentMail
}

var _ service.Mailer = (*Mailer)(nil)

func (m *Mailer) SendVerification(ctx context.Context, to string, link string) error {
	if m.VerificationErr != nil {
		return m.VerificationErr
	}

	m.record(SentMail{To: to, Link: link})

	return nil
}

func (m *Mailer) SendOTP(ctx context.Context, to string, code string) error {
	if m.OTPErr != nil {
		return m.OTPErr
	}

	m.record(SentMail{To: to, Code: code})

	return nil
}

func (m *Mailer) record(mail SentMail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
}

// Sent returns a copy of all recorded deliveries.
func (m *Mailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)

	return out
}
