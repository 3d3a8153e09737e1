// Package middleware provides the HTTP middleware for authentication,
// request tracing and error translation.
package middleware

import (
	"log/slog"
	"net/http"

	playground "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"chatline/internal/delivery/http/response"
	domainerrors "chatline/internal/domain/errors"
)

// ErrorMiddleware translates errors bubbling out of handlers into the
// unified response envelope.
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware.
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Application errors carry their own status and business code.
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		_ = response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())

		return
	}

	// Struct-tag validation failures from the request validator.
	var validationErrs playground.ValidationErrors
	if errors.As(err, &validationErrs) {
		base := domainerrors.ErrValidationFailed
		_ = response.Error(c, base.HTTPCode(), base.ErrorCode(), base.Message(), validationErrs.Error())

		return
	}

	// Errors Echo raised itself (404 route miss, 405, body too large).
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}

		_ = response.Error(c, httpErr.Code, "HTTP_ERROR", message, "")

		return
	}

	// Everything else is an internal error. Log the cause, hide it from
	// the client.
	m.logger.Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	base := domainerrors.ErrInternalError
	_ = response.Error(c, base.HTTPCode(), base.ErrorCode(), base.Message(), "")
}
