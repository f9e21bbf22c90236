package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kalviumcommunity/rentels-api/internal/httpx"
	"github.com/kalviumcommunity/rentels-api/internal/middleware"
	"github.com/kalviumcommunity/rentels-api/internal/rbac"
	"github.com/kalviumcommunity/rentels-api/internal/repository"
)

// UsersHandler serves the read-only users listing guarded by the
// users/read permission.
type UsersHandler struct {
	Users *repository.UserRepo
}

func NewUsersHandler(u *repository.UserRepo) *UsersHandler { return &UsersHandler{Users: u} }

func (h *UsersHandler) List(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return httpx.Error(c, http.StatusUnauthorized, "Token missing", httpx.CodeUnauthorized)
	}
	if !rbac.RequirePermission(c, p.Role, rbac.ResourceUsers, rbac.ActionRead) {
		return nil
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, limit)
	if err != nil {
		return httpx.Error(c, http.StatusInternalServerError, "Something went wrong", httpx.CodeInternal)
	}

	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, publicUser(u))
	}
	return httpx.Success(c, http.StatusOK, "Users fetched", out)
}
