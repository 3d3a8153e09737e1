// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"chatline/internal/delivery/http/middleware"
	"chatline/internal/delivery/http/response"
	"chatline/internal/domain/entity"
	domainerrors "chatline/internal/domain/errors"
	"chatline/internal/usecase"
)

// UserView is the client-facing projection of a user. Password and OTP
// hashes never leave the service.
type UserView struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	IsVerified     bool      `json:"isVerified"`
	Avatar         string    `json:"avatar"`
	Status         string    `json:"status"`
	LastSeen       time.Time `json:"lastSeen"`
	Friends        []string  `json:"friends"`
	FriendRequests []string  `json:"friendRequests"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewUserView maps a user entity to its client-facing projection.
func NewUserView(user *entity.User) *UserView {
	return &UserView{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		IsVerified:     user.IsVerified,
		Avatar:         user.Avatar,
		Status:         string(user.Status),
		LastSeen:       user.LastSeen,
		Friends:        user.Friends,
		FriendRequests: user.FriendRequests,
		CreatedAt:      user.CreatedAt,
	}
}

// SendOTPRequest carries the password reset initiation fields.
type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest carries the passcode check fields.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// ResetPasswordRequest carries the final password reset fields.
type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	uc     usecase.AccountUsecase
	logger *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(uc usecase.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		logger: logger,
	}
}

// Register handles the account registration request.
func (h *AccountHandler) Register(c echo.Context) error {
	var input *usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}

	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.uc.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, NewUserView(user), "User registered successfully")
}

// VerifyEmail handles the verification link a registered user receives.
func (h *AccountHandler) VerifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		base := domainerrors.ErrTokenInvalid

		return response.BadRequest(c, base.ErrorCode(), "Verification token is missing")
	}

	if err := h.uc.VerifyEmail(c.Request().Context(), token); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Email verified successfully")
}

// Login handles the login request.
func (h *AccountHandler) Login(c echo.Context) error {
	var input *usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}

	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Login(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"token": output.Token,
		"user":  NewUserView(output.User),
	}, "Login successful")
}

// SendOTP handles the password reset initiation request.
func (h *AccountHandler) SendOTP(c echo.Context) error {
	var input *SendOTPRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid otp request input")
	}

	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.RequestOTP(c.Request().Context(), input.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "OTP sent successfully")
}

// VerifyOTP handles the passcode check request.
func (h *AccountHandler) VerifyOTP(c echo.Context) error {
	var input *VerifyOTPRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid otp input")
	}

	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.VerifyOTP(c.Request().Context(), input.Email, input.OTP); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "OTP verified successfully")
}

// ResetPassword handles the final password reset request.
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var input *ResetPasswordRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password reset input")
	}

	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.ResetPassword(c.Request().Context(), input.Email, input.Password); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password reset successfully")
}

// GetProfile returns the account behind the presented session token.
func (h *AccountHandler) GetProfile(c echo.Context) error {
	userID, ok := c.Get(middleware.ContextKeyUserID).(string)
	if !ok || userID == "" {
		base := domainerrors.ErrSessionInvalid

		return response.Unauthorized(c, base.ErrorCode(), base.Message())
	}

	user, err := h.uc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, NewUserView(user), "Profile retrieved successfully")
}

// Root is a simple handler to check if the service is up.
func Root(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
