// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"chatline/config"
	deliverycontext "chatline/internal/delivery/context"
	"chatline/internal/domain/entity"
	domainerrors "chatline/internal/domain/errors"
	"chatline/internal/domain/repository"
	"chatline/internal/domain/service"
	"chatline/internal/usecase"
)

// mailDispatchTimeout bounds the background verification email send, which
// outlives the originating request.
const mailDispatchTimeout = 30 * time.Second

// accountService implements the AccountUsecase interface by composing the
// credential store, hasher, token issuer and mailer leaves.
type accountService struct {
	userRepo repository.UserRepository
	hasher   service.PasswordHasher
	tokenSvc service.TokenService
	mailer   service.Mailer
	baseURL  string
	avatar   string
	logger   *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	Hasher   service.PasswordHasher
	TokenSvc service.TokenService
	Mailer   service.Mailer
	Config   *config.Config
	Logger   *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all
// dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	var baseURL, avatar string
	if params.Config.App != nil {
		baseURL = params.Config.App.BaseURL
		avatar = params.Config.App.DefaultAvatarURL
	}

	return &accountService{
		userRepo: params.UserRepo,
		hasher:   params.Hasher,
		tokenSvc: params.TokenSvc,
		mailer:   params.Mailer,
		baseURL:  baseURL,
		avatar:   avatar,
		logger:   params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to
// the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates an unverified account and dispatches the verification
// email in the background.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.User, error) {
	srv.log(ctx).Info("Starting registration", slog.String("username", input.Username), slog.String("email", input.Email))

	// Pre-checks keep the error ordering stable (username before email);
	// the unique indexes close the remaining race on create.
	if _, err := srv.userRepo.FindByUsername(ctx, input.Username); err == nil {
		return nil, errors.Wrap(domainerrors.ErrUsernameTaken, "registration rejected")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to check username")
	}

	if _, err := srv.userRepo.FindByEmail(ctx, input.Email); err == nil {
		return nil, errors.Wrap(domainerrors.ErrEmailTaken, "registration rejected")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to check email")
	}

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	newUser := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		IsVerified:   false,
		Avatar:       srv.avatar,
		Status:       entity.PresenceOffline,
		LastSeen:     time.Now().UTC(),
	}

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			return nil, errors.Wrap(domainerrors.ErrUsernameTaken, "registration lost create race")
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, errors.Wrap(domainerrors.ErrEmailTaken, "registration lost create race")
		default:
			return nil, errors.Wrap(err, "failed to create user")
		}
	}

	srv.dispatchVerificationEmail(ctx, newUser)

	srv.log(ctx).Debug("Registration completed", slog.String("userID", newUser.ID))

	return newUser, nil
}

// dispatchVerificationEmail issues the verification token and sends the link
// on a background goroutine. Delivery is best-effort: a failure is logged on
// its own channel and never rolls the account back, so a successful
// registration response does not guarantee the email arrived.
func (srv *accountService) dispatchVerificationEmail(ctx context.Context, user *entity.User) {
	token, err := srv.tokenSvc.GenerateVerificationToken(user.Username, user.Email)
	if err != nil {
		srv.log(ctx).Error("Failed to issue verification token", slog.String("userID", user.ID), slog.Any("error", err))

		return
	}

	link := srv.baseURL + "/verify?token=" + token

	logger := srv.log(ctx)
	email := user.Email

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), mailDispatchTimeout)
		defer cancel()

		if err := srv.mailer.SendVerification(sendCtx, email, link); err != nil {
			logger.Error("Failed to send verification email", slog.String("email", email), slog.Any("error", err))

			return
		}

		logger.Debug("Verification email sent", slog.String("email", email))
	}()
}

// VerifyEmail validates a verification token and marks the account verified.
func (srv *accountService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := srv.tokenSvc.ValidateVerificationToken(token)
	if err != nil {
		srv.log(ctx).Warn("Verification token rejected", slog.Any("error", err))

		return errors.Wrap(domainerrors.ErrTokenInvalid, "verification failed")
	}

	user, err := srv.userRepo.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// A valid signature for an account that no longer exists is
			// indistinguishable from a bad token to the caller.
			return errors.Wrap(domainerrors.ErrTokenInvalid, "token subject not found")
		}

		return errors.Wrap(err, "failed to load user for verification")
	}

	if user.IsVerified {
		return errors.Wrap(domainerrors.ErrAlreadyVerified, "verification replayed")
	}

	if err := srv.userRepo.SetVerified(ctx, user.ID); err != nil {
		return errors.Wrap(err, "failed to persist verification")
	}

	srv.log(ctx).Info("Email verified", slog.String("userID", user.ID))

	return nil
}

// Login checks credentials and issues a session token.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("username", input.Username))

	user, err := srv.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "login failed")
		}

		return nil, errors.Wrap(err, "failed to load user for login")
	}

	if !user.IsVerified {
		srv.log(ctx).Warn("Login blocked before verification", slog.String("username", input.Username))

		return nil, errors.Wrap(domainerrors.ErrNotVerified, "login failed")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("username", input.Username))

		return nil, errors.Wrap(domainerrors.ErrWrongPassword, "login failed")
	}

	token, err := srv.tokenSvc.GenerateSessionToken(user.ID, user.Username, user.IsVerified)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue session token")
	}

	srv.log(ctx).Debug("User logged in", slog.String("userID", user.ID))

	return &usecase.LoginOutput{Token: token, User: user}, nil
}

// RequestOTP issues a fresh passcode, persists only its hash and emails the
// plaintext code. Any previously pending OTP is overwritten.
func (srv *accountService) RequestOTP(ctx context.Context, email string) error {
	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrUserNotFound, "otp request failed")
		}

		return errors.Wrap(err, "failed to load user for otp request")
	}

	code, err := generateOTPCode()
	if err != nil {
		return errors.Wrap(err, "failed to generate otp code")
	}

	otpHash, err := srv.hasher.Hash(code)
	if err != nil {
		return errors.Wrap(err, "failed to hash otp code")
	}

	if err := srv.userRepo.SetOTPHash(ctx, user.ID, otpHash); err != nil {
		return errors.Wrap(err, "failed to persist otp hash")
	}

	// Unlike registration, the OTP send is awaited: the caller needs to know
	// whether the code is on its way. The hash is already persisted, so a
	// failed send leaves a pending OTP nobody received; a retry overwrites it.
	if err := srv.mailer.SendOTP(ctx, email, code); err != nil {
		srv.log(ctx).Error("Failed to send otp email", slog.String("email", email), slog.Any("error", err))

		return errors.Wrap(domainerrors.ErrMailDelivery, "otp delivery failed")
	}

	srv.log(ctx).Info("OTP issued", slog.String("userID", user.ID))

	return nil
}

// VerifyOTP compares a submitted code against the pending OTP hash. On match
// the OTP is intentionally NOT consumed: the flow the product shipped leaves
// clearing to ResetPassword.
func (srv *accountService) VerifyOTP(ctx context.Context, email string, code string) error {
	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrUserNotFound, "otp check failed")
		}

		return errors.Wrap(err, "failed to load user for otp check")
	}

	if !user.HasPendingOTP() || !srv.hasher.Check(code, user.OTPHash) {
		return errors.Wrap(domainerrors.ErrOTPInvalid, "otp mismatch")
	}

	srv.log(ctx).Debug("OTP verified; code stays pending until password reset", slog.String("userID", user.ID))

	return nil
}

// ResetPassword overwrites the password and clears any pending OTP in one
// atomic store update.
func (srv *accountService) ResetPassword(ctx context.Context, email string, newPassword string) error {
	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrUserNotFound, "password reset failed")
		}

		return errors.Wrap(err, "failed to load user for password reset")
	}

	passwordHash, err := srv.hasher.Hash(newPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash new password")
	}

	if err := srv.userRepo.ResetPassword(ctx, user.ID, passwordHash); err != nil {
		return errors.Wrap(err, "failed to persist password reset")
	}

	srv.log(ctx).Info("Password reset", slog.String("userID", user.ID))

	return nil
}

// GetProfile loads the user identified by a session token's subject.
func (srv *accountService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "profile lookup failed")
		}

		return nil, errors.Wrap(err, "failed to load profile")
	}

	return user, nil
}

// generateOTPCode draws a uniformly random 6-digit code in [100000, 999999].
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
