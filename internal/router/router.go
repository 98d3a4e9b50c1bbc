package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineverse-auth/internal/handler"
	"github.com/iliyamo/cineverse-auth/internal/middleware"
	"github.com/iliyamo/cineverse-auth/internal/model"
)

// RegisterRoutes registers the unauthenticated probe endpoints.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
	e.GET("/readyz", h.Ready)
}

// RegisterAuth registers the session endpoints under /v1/auth.  Endpoints
// that accept a password or a one-time code sit behind the rate limiter.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, acc *handler.AccountHandler, limiter *middleware.RateLimiter) {
	limited := limiter.Middleware()

	g := e.Group("/v1/auth")
	g.POST("/register", acc.Register, limited)
	g.POST("/login", a.Login, limited)
	g.POST("/verify-otp", a.VerifyOTP, limited)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.POST("/forgot-password", a.ForgotPassword, limited)
	g.POST("/reset-password", a.ResetPassword, limited)
}

// RegisterAccount registers the endpoints that need a valid access token.
func RegisterAccount(e *echo.Echo, a *handler.AuthHandler, acc *handler.AccountHandler, jwtSecret string) {
	me := e.Group("/v1/me", middleware.JWTAuth(jwtSecret))
	me.GET("", acc.Me)
	me.PATCH("", acc.UpdateMe)
	me.DELETE("", acc.DeleteMe)
	me.POST("/logout-all", a.LogoutAll)

	admin := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(string(model.RoleAdmin)),
	)
	admin.POST("/theatre-operators", acc.CreateTheatreOperator)
}
