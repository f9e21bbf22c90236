package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kalviumcommunity/rentels-api/internal/auth"
	"github.com/kalviumcommunity/rentels-api/internal/config"
	"github.com/kalviumcommunity/rentels-api/internal/httpx"
	"github.com/kalviumcommunity/rentels-api/internal/middleware"
	"github.com/kalviumcommunity/rentels-api/internal/queue"
	"github.com/kalviumcommunity/rentels-api/internal/repository"
	queue_publisher "github.com/kalviumcommunity/rentels-api/internal/service"
	"github.com/kalviumcommunity/rentels-api/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints. It drives the
// session lifecycle: login issues a token pair and a ledger row, refresh
// rotates them one-time-use, logout revokes and clears.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *repository.SessionRepo
	Codec    *auth.Codec
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *repository.SessionRepo, codec *auth.Codec) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Codec: codec}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type userPart struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func publicUser(u repository.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Signup creates a user account. Tokens are not issued here; the client
// logs in afterwards. A welcome-email event is published best-effort.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return httpx.Error(c, http.StatusBadRequest, "Invalid JSON body", httpx.CodeValidation)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || !strings.Contains(req.Email, "@") || len(req.Password) < 8 {
		return httpx.Error(c, http.StatusBadRequest, "Validation Error", httpx.CodeValidation)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return httpx.Error(c, http.StatusConflict, "User already exists", httpx.CodeConflict)
		}
		return httpx.Error(c, http.StatusInternalServerError, "Something went wrong", httpx.CodeInternal)
	}

	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pcancel()
		_ = queue_publisher.PublishEmailEvent(pctx, queue.EmailEvent{
			Kind:       "welcome",
			UserID:     uid,
			Email:      req.Email,
			Name:       req.Name,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return httpx.Success(c, http.StatusCreated, "Signup successful",
		userPart{ID: uid, Name: req.Name, Email: req.Email, Role: "CUSTOMER"})
}

// Login validates credentials and starts a refresh session: one access
// token, one refresh token with a fresh jti, one ledger row, both tokens
// set as HTTP-only cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return httpx.Error(c, http.StatusBadRequest, "Invalid JSON body", httpx.CodeValidation)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return httpx.Error(c, http.StatusBadRequest, "Validation Error", httpx.CodeValidation)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httpx.Error(c, http.StatusUnauthorized, "Invalid credentials", httpx.CodeUnauthorized)
		}
		return httpx.Error(c, http.StatusInternalServerError, "Something went wrong", httpx.CodeInternal)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return httpx.Error(c, http.StatusUnauthorized, "Invalid credentials", httpx.CodeUnauthorized)
	}

	principal := auth.Principal{ID: u.ID, Email: u.Email, Role: u.Role}
	access, refresh, err := h.issueSession(ctx, principal)
	if err != nil {
		return httpx.Error(c, http.StatusInternalServerError, "Something went wrong", httpx.CodeInternal)
	}

	h.setAuthCookies(c, access, refresh)
	return httpx.Success(c, http.StatusOK, "Login successful", echo.Map{
		"user":                  publicUser(u),
		"accessTokenExpiresIn":  fmt.Sprintf("%dm", h.Cfg.AccessTTLMin),
		"refreshTokenExpiresIn": fmt.Sprintf("%dd", h.Cfg.RefreshTTLDays),
	})
}

// Refresh rotates the session. The flow is: same-origin check, cookie
// extraction, cryptographic verify, ledger lookup by jti, revoked/expired
// checks, hash comparison against the stored digest, then a conditional
// revoke that must win before the new pair is minted. Every denial is a
// generic 401 so callers cannot distinguish a wrong token from a stolen
// one.
func (h *AuthHandler) Refresh(c echo.Context) error {
	if !sameOrigin(c) {
		return httpx.Error(c, http.StatusForbidden, "Forbidden", httpx.CodeForbidden)
	}

	ck, err := c.Cookie(auth.RefreshTokenCookie)
	if err != nil || ck.Value == "" {
		return httpx.Error(c, http.StatusUnauthorized, "Refresh token missing", httpx.CodeUnauthorized)
	}
	presented := ck.Value

	claims, err := h.Codec.VerifyRefresh(presented)
	if err != nil {
		return httpx.Error(c, http.StatusUnauthorized, "Invalid or expired refresh token", httpx.CodeUnauthorized)
	}
	jti := claims.ID
	if jti == "" {
		return httpx.Error(c, http.StatusUnauthorized, "Invalid refresh token", httpx.CodeUnauthorized)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stored, err := h.Sessions.FindByJTI(ctx, jti)
	if err != nil || stored.RevokedAt != nil {
		return httpx.Error(c, http.StatusUnauthorized, "Refresh token revoked", httpx.CodeUnauthorized)
	}
	if !stored.ExpiresAt.After(time.Now().UTC()) {
		return httpx.Error(c, http.StatusUnauthorized, "Refresh token expired", httpx.CodeUnauthorized)
	}
	if !auth.HashEqual(stored.TokenHash, auth.HashToken(presented)) {
		// Hash mismatch means a token signed for this jti that we never
		// issued in this form: treat as replay and kill the session.
		_, _ = h.Sessions.Revoke(ctx, stored.ID)
		return httpx.Error(c, http.StatusUnauthorized, "Refresh token mismatch", httpx.CodeUnauthorized)
	}

	// One-time use: only the caller that wins the conditional revoke may
	// rotate. A concurrent replay of the same token loses here.
	won, err := h.Sessions.Revoke(ctx, stored.ID)
	if err != nil {
		return httpx.Error(c, http.StatusInternalServerError, "Something went wrong", httpx.CodeInternal)
	}
	if !won {
		return httpx.Error(c, http.StatusUnauthorized, "Refresh token revoked", httpx.CodeUnauthorized)
	}

	access, refresh, err := h.issueSession(ctx, claims.Principal())
	if err != nil {
		return httpx.Error(c, http.StatusInternalServerError, "Something went wrong", httpx.CodeInternal)
	}

	h.setAuthCookies(c, access, refresh)
	return httpx.Success(c, http.StatusOK, "Token refreshed", echo.Map{
		"accessTokenExpiresIn": fmt.Sprintf("%dm", h.Cfg.AccessTTLMin),
	})
}

// Logout revokes the presented refresh session best-effort and always
// clears the auth cookies. An unverifiable or missing refresh token is
// tolerated; the cookies are cleared regardless.
func (h *AuthHandler) Logout(c echo.Context) error {
	if !sameOrigin(c) {
		return httpx.Error(c, http.StatusForbidden, "Forbidden", httpx.CodeForbidden)
	}

	if ck, err := c.Cookie(auth.RefreshTokenCookie); err == nil && ck.Value != "" {
		if claims, err := h.Codec.VerifyRefresh(ck.Value); err == nil && claims.ID != "" {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			_ = h.Sessions.RevokeByJTI(ctx, claims.ID)
		}
	}

	h.clearAuthCookies(c)
	return httpx.Success(c, http.StatusOK, "Logged out", echo.Map{})
}

// Me returns the authenticated principal. Runs behind RequireAuth.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return httpx.Error(c, http.StatusUnauthorized, "Token missing", httpx.CodeUnauthorized)
	}
	return httpx.Success(c, http.StatusOK, "Session active", echo.Map{
		"id":    p.ID,
		"email": p.Email,
		"role":  p.Role,
	})
}

// issueSession mints an access/refresh pair with a fresh jti and persists
// the refresh side in the ledger.
func (h *AuthHandler) issueSession(ctx context.Context, p auth.Principal) (access, refresh string, err error) {
	access, err = h.Codec.SignAccess(p)
	if err != nil {
		return "", "", err
	}
	jti := uuid.NewString()
	refresh, err = h.Codec.SignRefresh(p, jti)
	if err != nil {
		return "", "", err
	}
	expiresAt := time.Now().UTC().Add(h.Codec.RefreshTTL())
	if _, err = h.Sessions.Create(ctx, p.ID, jti, auth.HashToken(refresh), expiresAt); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// setAuthCookies sets the token pair and clears the legacy cookie. The
// access cookie is Lax so top-level navigation still sends it; the refresh
// cookie is Strict because only same-site fetches ever need it.
func (h *AuthHandler) setAuthCookies(c echo.Context, access, refresh string) {
	secure := h.Cfg.IsProd()
	c.SetCookie(&http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    access,
		Path:     "/",
		MaxAge:   int(h.Codec.AccessTTL() / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     auth.RefreshTokenCookie,
		Value:    refresh,
		Path:     "/",
		MaxAge:   int(h.Codec.RefreshTTL() / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	// Old demo cookie: always cleared, never written.
	c.SetCookie(&http.Cookie{
		Name:     auth.LegacyTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	secure := h.Cfg.IsProd()
	expire := func(name string, httpOnly bool, sameSite http.SameSite) {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: httpOnly,
			Secure:   secure,
			SameSite: sameSite,
		})
	}
	expire(auth.AccessTokenCookie, true, http.SameSiteLaxMode)
	expire(auth.RefreshTokenCookie, true, http.SameSiteStrictMode)
	expire(auth.LegacyTokenCookie, false, http.SameSiteLaxMode)
}

// sameOrigin rejects requests whose declared Origin host differs from the
// Host header. Requests without an Origin (curl, same-origin GETs) pass.
func sameOrigin(c echo.Context) bool {
	origin := c.Request().Header.Get("Origin")
	host := c.Request().Host
	if origin == "" || host == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == host
}
