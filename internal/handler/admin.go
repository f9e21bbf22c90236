package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kalviumcommunity/rentels-api/internal/httpx"
	"github.com/kalviumcommunity/rentels-api/internal/middleware"
	"github.com/kalviumcommunity/rentels-api/internal/rbac"
)

// Admin serves the admin landing endpoint. The edge interceptor already
// checks admin/read for /api/admin paths; the per-route gate here is the
// second enforcement layer, calling the same policy table.
func Admin(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return httpx.Error(c, http.StatusUnauthorized, "Token missing", httpx.CodeUnauthorized)
	}
	if !rbac.RequirePermission(c, p.Role, rbac.ResourceAdmin, rbac.ActionRead) {
		return nil
	}
	return httpx.Success(c, http.StatusOK, "Admin access granted", echo.Map{
		"message": "Welcome Admin! You have full access.",
	})
}
