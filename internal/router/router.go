// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kalviumcommunity/rentels-api/internal/auth"
	"github.com/kalviumcommunity/rentels-api/internal/handler"
	"github.com/kalviumcommunity/rentels-api/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session lifecycle endpoints under /api/auth
// and the protected API surface. throttle limits the credential endpoints;
// pass nil to go without one. The verifier backs the per-route
// authentication gate; the edge interceptor covering the same paths is
// registered separately in main.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, users *handler.UsersHandler, verifier auth.TokenVerifier, throttle echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	if throttle != nil {
		g.Use(throttle)
	}
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.RequireAuth(verifier))

	// Protected API groups. The edge interceptor also guards these paths;
	// the per-route gate stays as the second layer of the same checks.
	api := e.Group("/api", middleware.RequireAuth(verifier))
	api.GET("/admin", handler.Admin)
	api.GET("/users", users.List)
}
