package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalviumcommunity/rentels-api/internal/auth"
)

func edgeHandler(t *testing.T, v auth.TokenVerifier, prod bool) echo.HandlerFunc {
	t.Helper()
	return Edge(v, DefaultEdgeConfig(prod))(func(c echo.Context) error {
		return c.String(http.StatusOK, "passed")
	})
}

func runEdge(t *testing.T, v auth.TokenVerifier, prod bool, req *http.Request) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, edgeHandler(t, v, prod)(c))
	return rec, c
}

func TestEdge_PageRedirectsWithoutToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec, _ := runEdge(t, newCodec(), false, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestEdge_PageRedirectsOnBadToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users/5", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: "garbage"})
	rec, _ := runEdge(t, newCodec(), false, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestEdge_PagePassesWithValidCookie(t *testing.T) {
	codec := newCodec()
	token := signAccess(t, codec, auth.Principal{ID: 1, Email: "u@r.l", Role: "CUSTOMER"})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})
	rec, _ := runEdge(t, codec, false, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "passed", rec.Body.String())
}

func TestEdge_APIMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec, _ := runEdge(t, newCodec(), false, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Token missing", body["message"])
}

func TestEdge_APIInvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer bogus")
	rec, _ := runEdge(t, newCodec(), false, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid or expired token", body["message"])
}

func TestEdge_AdminPathRequiresAdminRead(t *testing.T) {
	codec := newCodec()
	owner := signAccess(t, codec, auth.Principal{ID: 2, Email: "o@r.l", Role: "OWNER"})

	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+owner)
	rec, _ := runEdge(t, codec, false, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := signAccess(t, codec, auth.Principal{ID: 1, Email: "a@r.l", Role: "ADMIN"})
	req = httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+admin)
	rec, _ = runEdge(t, codec, false, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEdge_ForwardsIdentity(t *testing.T) {
	codec := newCodec()
	token := signAccess(t, codec, auth.Principal{ID: 3, Email: "c@r.l", Role: "CUSTOMER"})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec, c := runEdge(t, codec, false, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c@r.l", c.Request().Header.Get("X-User-Email"))
	assert.Equal(t, "CUSTOMER", c.Request().Header.Get("X-User-Role"))

	p, ok := PrincipalFrom(c)
	require.True(t, ok)
	assert.Equal(t, int64(3), p.ID)
}

func TestEdge_SecurityHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec, _ := runEdge(t, newCodec(), false, req)

	h := rec.Header()
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.NotEmpty(t, h.Get("Permissions-Policy"))
	assert.Empty(t, h.Get("Strict-Transport-Security"), "HSTS only in prod")
	assert.Empty(t, h.Get("Content-Security-Policy"))
}

func TestEdge_SecurityHeaders_Prod(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec, _ := runEdge(t, newCodec(), true, req)

	h := rec.Header()
	assert.NotEmpty(t, h.Get("Strict-Transport-Security"))
	assert.NotEmpty(t, h.Get("Content-Security-Policy"))
}

func TestEdge_UnprotectedPathPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec, _ := runEdge(t, newCodec(), false, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "passed", rec.Body.String())
}

func TestEdge_DemoVerifierSentinel(t *testing.T) {
	demo := auth.DemoVerifier{Next: newCodec()}

	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer mock.jwt.token")
	rec, _ := runEdge(t, demo, false, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The bare codec, as wired in production, denies the sentinel.
	req = httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer mock.jwt.token")
	rec, _ = runEdge(t, newCodec(), true, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
