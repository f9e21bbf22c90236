// Package middleware provides the request-processing layers shared by all
// protected routes: the authentication gate, the edge interceptor and the
// credential-endpoint throttle.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kalviumcommunity/rentels-api/internal/auth"
	"github.com/kalviumcommunity/rentels-api/internal/httpx"
)

// principalKey is the context key under which the gate stores the verified
// principal for downstream handlers.
const principalKey = "principal"

// ExtractToken pulls a bearer credential from the request, trying the
// Authorization header first, then the accessToken cookie, then the legacy
// token cookie. Returns "" when none is present.
func ExtractToken(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1]
		}
	}
	return CookieToken(c)
}

// CookieToken reads the access token from cookies only, honoring the
// legacy cookie name for back-compat. Page routes use this directly since
// browser navigation carries no Authorization header.
func CookieToken(c echo.Context) string {
	if ck, err := c.Cookie(auth.AccessTokenCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if ck, err := c.Cookie(auth.LegacyTokenCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	return ""
}

// RequireAuth is the authentication gate. It extracts and verifies an
// access token and stores the resulting principal in the context. Missing
// or unverifiable credentials end the request with a 401 envelope; the
// response never distinguishes malformed from expired from wrong-kind.
func RequireAuth(v auth.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c)
			if token == "" {
				return httpx.Error(c, http.StatusUnauthorized, "Token missing", httpx.CodeUnauthorized)
			}
			claims, err := v.VerifyAccess(token)
			if err != nil {
				return httpx.Error(c, http.StatusUnauthorized, "Invalid or expired token", httpx.CodeUnauthorized)
			}
			c.Set(principalKey, claims.Principal())
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by RequireAuth or the edge
// interceptor for the current request.
func PrincipalFrom(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(principalKey).(auth.Principal)
	return p, ok
}
