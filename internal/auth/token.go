// Package auth implements the credential codec: issuing and verifying the
// two self-contained token kinds (access, refresh) used by the session
// protocol. Tokens are HS256 JWTs carrying the principal's identity, a
// tokenType discriminator and, for refresh tokens, the jti that keys the
// session ledger. Access and refresh tokens are signed with separate
// secrets so a leaked secret only compromises one kind.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every verification failure: bad
// signature, expired token, malformed payload or a tokenType that does not
// match the expected kind. Callers must not distinguish further; the
// distinctions never cross the API boundary.
var ErrInvalidToken = errors.New("invalid token")

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Principal is the authenticated identity derived from a verified token.
// It is reconstructed per request and never persisted.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Claims is the signed JWT payload. The jti of refresh tokens lives in
// RegisteredClaims.ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"tokenType"`
}

// Principal rebuilds the request principal from verified claims.
func (c Claims) Principal() Principal {
	return Principal{ID: c.UserID, Email: c.Email, Role: c.Role}
}

// Codec signs and verifies both token kinds. It owns no state beyond the
// secrets and TTLs loaded at startup.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewCodec builds a Codec from the per-kind secrets (callers pass the
// shared secret when no override is configured) and the configured TTLs.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// AccessTTL returns the configured access-token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// SignAccess issues a short-lived access token for the principal.
func (c *Codec) SignAccess(p Principal) (string, error) {
	return c.sign(p, TypeAccess, "", c.accessTTL, c.accessSecret)
}

// SignRefresh issues a long-lived refresh token embedding the caller
// supplied jti. The jti is the ledger's lookup key; the codec itself does
// not persist anything.
func (c *Codec) SignRefresh(p Principal, jti string) (string, error) {
	return c.sign(p, TypeRefresh, jti, c.refreshTTL, c.refreshSecret)
}

func (c *Codec) sign(p Principal, tokenType, jti string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    p.ID,
		Email:     p.Email,
		Role:      p.Role,
		TokenType: tokenType,
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// VerifyAccess validates an access token and returns its claims. Any
// failure, including a refresh token presented as an access token, yields
// ErrInvalidToken.
func (c *Codec) VerifyAccess(token string) (Claims, error) {
	return verify(token, TypeAccess, c.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (c *Codec) VerifyRefresh(token string) (Claims, error) {
	return verify(token, TypeRefresh, c.refreshSecret)
}

func verify(token, wantType string, secret []byte) (Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return Claims{}, ErrInvalidToken
	}
	return *claims, nil
}

// HashToken returns the SHA-256 hex digest of a token string. The ledger
// stores only this digest, so stolen rows cannot be replayed as tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// HashEqual compares two token digests in constant time.
func HashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
