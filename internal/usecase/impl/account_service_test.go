package impl

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatline/config"
	"chatline/internal/domain/entity"
	domainerrors "chatline/internal/domain/errors"
	"chatline/internal/domain/repository"
	"chatline/internal/domain/service"
	"chatline/internal/mocks"
	"chatline/internal/usecase"
)

type accountServiceFixture struct {
	service  usecase.AccountUsecase
	userRepo *mocks.UserRepository
	hasher   *mocks.PasswordHasher
	tokenSvc *mocks.TokenService
	mailer   *mocks.Mailer
}

func createTestAccountService(t *testing.T) *accountServiceFixture {
	t.Helper()

	fx := &accountServiceFixture{
		userRepo: &mocks.UserRepository{},
		hasher:   &mocks.PasswordHasher{},
		tokenSvc: &mocks.TokenService{},
		mailer:   &mocks.Mailer{},
	}

	cfg := &config.Config{
		App: &config.AppConfig{
			BaseURL:          "http://localhost:5005",
			DefaultAvatarURL: "http://cdn.example.com/default.png",
		},
	}

	fx.service = NewAccountService(AccountServiceParams{
		UserRepo: fx.userRepo,
		Hasher:   fx.hasher,
		TokenSvc: fx.tokenSvc,
		Mailer:   fx.mailer,
		Config:   cfg,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return fx
}

func notFoundByUsername(ctx context.Context, username string) (*entity.User, error) {
	return nil, repository.ErrUserNotFound
}

func notFoundByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, repository.ErrUserNotFound
}

func TestAccountService_Register_Success(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByUsernameFunc = notFoundByUsername
	fx.userRepo.FindByEmailFunc = notFoundByEmail

	var created *entity.User
	fx.userRepo.CreateFunc = func(ctx context.Context, user *entity.User) error {
		user.ID = "user-1"
		created = user

		return nil
	}

	fx.tokenSvc.GenerateVerificationTokenFunc = func(username, email string) (string, error) {
		return "verify-token", nil
	}

	user, err := fx.service.Register(ctx, &usecase.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "hashed:secret123", created.PasswordHash)
	assert.False(t, created.IsVerified)
	assert.Equal(t, entity.PresenceOffline, created.Status)
	assert.Equal(t, "http://cdn.example.com/default.png", created.Avatar)
	assert.Empty(t, created.OTPHash)

	// The verification email goes out on a background goroutine.
	require.Eventually(t, func() bool {
		return len(fx.mailer.Sent()) == 1
	}, time.Second, 10*time.Millisecond)

	sent := fx.mailer.Sent()[0]
	assert.Equal(t, "alice@example.com", sent.To)
	assert.Equal(t, "http://localhost:5005/verify?token=verify-token", sent.Link)
}

func TestAccountService_Register_UsernameTaken(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByUsernameFunc = func(ctx context.Context, username string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Username: username}, nil
	}

	_, err := fx.service.Register(ctx, &usecase.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUsernameTaken)
}

func TestAccountService_Register_EmailTaken(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByUsernameFunc = notFoundByUsername
	fx.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
		return &entity.User{ID: "user-2", Email: email}, nil
	}

	_, err := fx.service.Register(ctx, &usecase.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEmailTaken)
}

func TestAccountService_Register_LosesCreateRace(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	// Both pre-checks pass, but a concurrent registration wins the insert
	// and the unique index rejects ours.
	fx.userRepo.FindByUsernameFunc = notFoundByUsername
	fx.userRepo.FindByEmailFunc = notFoundByEmail
	fx.userRepo.CreateFunc = func(ctx context.Context, user *entity.User) error {
		return repository.ErrEmailTaken
	}

	_, err := fx.service.Register(ctx, &usecase.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEmailTaken)
}

func TestAccountService_Register_MailFailureDoesNotFailRegistration(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByUsernameFunc = notFoundByUsername
	fx.userRepo.FindByEmailFunc = notFoundByEmail
	fx.userRepo.CreateFunc = func(ctx context.Context, user *entity.User) error {
		user.ID = "user-1"

		return nil
	}
	fx.tokenSvc.GenerateVerificationTokenFunc = func(username, email string) (string, error) {
		return "verify-token", nil
	}
	fx.mailer.VerificationErr = errors.New("smtp down")

	user, err := fx.service.Register(ctx, &usecase.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
}

func TestAccountService_VerifyEmail_Success(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.tokenSvc.ValidateVerificationTokenFunc = func(tokenString string) (*service.VerificationClaims, error) {
		return &service.VerificationClaims{Username: "alice", Email: "alice@example.com"}, nil
	}
	fx.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Email: email, IsVerified: false}, nil
	}

	var verifiedID string
	fx.userRepo.SetVerifiedFunc = func(ctx context.Context, id string) error {
		verifiedID = id

		return nil
	}

	err := fx.service.VerifyEmail(ctx, "verify-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", verifiedID)
}

func TestAccountService_VerifyEmail_BadToken(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.tokenSvc.ValidateVerificationTokenFunc = func(tokenString string) (*service.VerificationClaims, error) {
		return nil, errors.New("token is expired")
	}

	err := fx.service.VerifyEmail(ctx, "stale-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestAccountService_VerifyEmail_UnknownAccount(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.tokenSvc.ValidateVerificationTokenFunc = func(tokenString string) (*service.VerificationClaims, error) {
		return &service.VerificationClaims{Username: "ghost", Email: "ghost@example.com"}, nil
	}
	fx.userRepo.FindByEmailFunc = notFoundByEmail

	err := fx.service.VerifyEmail(ctx, "verify-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestAccountService_VerifyEmail_AlreadyVerified(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.tokenSvc.ValidateVerificationTokenFunc = func(tokenString string) (*service.VerificationClaims, error) {
		return &service.VerificationClaims{Username: "alice", Email: "alice@example.com"}, nil
	}
	fx.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Email: email, IsVerified: true}, nil
	}

	err := fx.service.VerifyEmail(ctx, "verify-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyVerified)
}

func TestAccountService_Login_Success(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByUsernameFunc = func(ctx context.Context, username string) (*entity.User, error) {
		return &entity.User{
			ID:           "user-1",
			Username:     username,
			PasswordHash: "hashed:secret123",
			IsVerified:   true,
		}, nil
	}
	fx.tokenSvc.GenerateSessionTokenFunc = func(userID, username string, isVerified bool) (string, error) {
		assert.Equal(t, "user-1", userID)
		assert.True(t, isVerified)

		return "session-token", nil
	}

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "session-token", output.Token)
	assert.Equal(t, "user-1", output.User.ID)
}

func TestAccountService_Login_UserNotFound(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByUsernameFunc = notFoundByUsername

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestAccountService_Login_NotVerified(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	// Verification is checked before the password, so an unverified
	// account never leaks whether the password was right.
	fx.userRepo.FindByUsernameFunc = func(ctx context.Context, username string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Username: username, PasswordHash: "hashed:secret123"}, nil
	}

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Username: "alice", Password: "secret123"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotVerified)
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByUsernameFunc = func(ctx context.Context, username string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Username: username, PasswordHash: "hashed:secret123", IsVerified: true}, nil
	}

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Username: "alice", Password: "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrWrongPassword)
}

func TestAccountService_RequestOTP_Success(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Email: email, IsVerified: true}, nil
	}

	var storedHash string
	fx.userRepo.SetOTPHashFunc = func(ctx context.Context, id string, otpHash string) error {
		storedHash = otpHash

		return nil
	}

	err := fx.service.RequestOTP(ctx, "alice@example.com")
	require.NoError(t, err)

	sent := fx.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "alice@example.com", sent[0].To)
	require.Len(t, sent[0].Code, 6)

	code, convErr := strconv.Atoi(sent[0].Code)
	require.NoError(t, convErr)
	assert.GreaterOrEqual(t, code, 100000)
	assert.LessOrEqual(t, code, 999999)

	// Only the hash of the mailed code is at rest.
	assert.Equal(t, "hashed:"+sent[0].Code, storedHash)
}

func TestAccountService_RequestOTP_UnknownEmail(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByEmailFunc = notFoundByEmail

	err := fx.service.RequestOTP(ctx, "ghost@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestAccountService_RequestOTP_MailFailure(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Email: email}, nil
	}

	var hashPersisted bool
	fx.userRepo.SetOTPHashFunc = func(ctx context.Context, id string, otpHash string) error {
		hashPersisted = true

		return nil
	}
	fx.mailer.OTPErr = errors.New("smtp down")

	err := fx.service.RequestOTP(ctx, "alice@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrMailDelivery)

	// The hash was written before the send failed; a retry overwrites it.
	assert.True(t, hashPersisted)
}

func TestAccountService_VerifyOTP_Success(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Email: email, OTPHash: "hashed:123456"}, nil
	}

	err := fx.service.VerifyOTP(ctx, "alice@example.com", "123456")
	require.NoError(t, err)
}

func TestAccountService_VerifyOTP_Mismatch(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Email: email, OTPHash: "hashed:123456"}, nil
	}

	err := fx.service.VerifyOTP(ctx, "alice@example.com", "654321")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrOTPInvalid)
}

func TestAccountService_VerifyOTP_NothingPending(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Email: email}, nil
	}

	err := fx.service.VerifyOTP(ctx, "alice@example.com", "123456")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrOTPInvalid)
}

func TestAccountService_ResetPassword_Success(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*entity.User, error) {
		return &entity.User{ID: "user-1", Email: email, OTPHash: "hashed:123456"}, nil
	}

	var resetID, resetHash string
	fx.userRepo.ResetPasswordFunc = func(ctx context.Context, id string, passwordHash string) error {
		resetID = id
		resetHash = passwordHash

		return nil
	}

	err := fx.service.ResetPassword(ctx, "alice@example.com", "newsecret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", resetID)
	assert.Equal(t, "hashed:newsecret", resetHash)
}

func TestAccountService_ResetPassword_UnknownEmail(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByEmailFunc = notFoundByEmail

	err := fx.service.ResetPassword(ctx, "ghost@example.com", "newsecret")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestAccountService_GetProfile(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	fx.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*entity.User, error) {
		if id != "user-1" {
			return nil, repository.ErrUserNotFound
		}

		return &entity.User{ID: id, Username: "alice"}, nil
	}

	user, err := fx.service.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = fx.service.GetProfile(ctx, "user-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestGenerateOTPCode_Range(t *testing.T) {
	for range 50 {
		code, err := generateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}
