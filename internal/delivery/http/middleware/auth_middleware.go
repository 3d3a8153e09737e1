package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"chatline/internal/delivery/http/response"
	domainerrors "chatline/internal/domain/errors"
	"chatline/internal/domain/service"
)

// Echo context keys populated by Authenticate for downstream handlers.
const (
	ContextKeyUserID   = "userID"
	ContextKeyUsername = "username"
)

// AuthMiddleware validates session tokens on protected routes.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the Bearer session token and stores the claims on
// the echo context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		base := domainerrors.ErrSessionInvalid

		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, base.ErrorCode(), "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return response.Unauthorized(c, base.ErrorCode(), "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateSessionToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, base.ErrorCode(), base.Message())
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUsername, claims.Username)

		return next(c)
	}
}
