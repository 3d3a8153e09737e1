// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"chatline/internal/delivery/http/middleware"
	"chatline/internal/delivery/http/router/handler"
)

type RouterParams struct {
	fx.In

	AccountHandler *handler.AccountHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler *handler.AccountHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler: params.AccountHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application. The flat
// route shape is part of the public contract and is kept as the mobile
// clients expect it.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)

	// Account lifecycle
	e.POST("/register", r.accountHandler.Register)
	e.GET("/verify", r.accountHandler.VerifyEmail)
	e.POST("/login", r.accountHandler.Login)

	// Password reset flow
	e.POST("/sendOtp", r.accountHandler.SendOTP)
	e.POST("/verifyOtp", r.accountHandler.VerifyOTP)
	e.POST("/resetPassword", r.accountHandler.ResetPassword)

	// Routes that require a valid session token
	meGroup := e.Group("/me")
	meGroup.Use(r.authMiddleware.Authenticate)
	{
		meGroup.GET("", r.accountHandler.GetProfile)
	}
}
