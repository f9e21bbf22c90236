package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec() *Codec {
	return NewCodec("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestCodec_AccessRoundTrip(t *testing.T) {
	c := testCodec()
	p := Principal{ID: 42, Email: "owner@rentels.local", Role: "OWNER"}

	token, err := c.SignAccess(p)
	require.NoError(t, err)

	claims, err := c.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, p, claims.Principal())
	assert.Equal(t, TypeAccess, claims.TokenType)
	assert.Empty(t, claims.ID, "access tokens carry no jti")
}

func TestCodec_RefreshRoundTrip(t *testing.T) {
	c := testCodec()
	p := Principal{ID: 7, Email: "user@rentels.local", Role: "CUSTOMER"}

	token, err := c.SignRefresh(p, "jti-123")
	require.NoError(t, err)

	claims, err := c.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, p, claims.Principal())
	assert.Equal(t, TypeRefresh, claims.TokenType)
	assert.Equal(t, "jti-123", claims.ID)
}

func TestCodec_CrossKindRejection(t *testing.T) {
	c := testCodec()
	p := Principal{ID: 1, Email: "a@b.c", Role: "ADMIN"}

	access, err := c.SignAccess(p)
	require.NoError(t, err)
	refresh, err := c.SignRefresh(p, "jti")
	require.NoError(t, err)

	_, err = c.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = c.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_SameSecret_CrossKindStillRejected(t *testing.T) {
	// With the shared-secret fallback both kinds verify under one key, so
	// the tokenType claim is the only thing preventing kind confusion.
	c := NewCodec("shared", "shared", time.Minute, time.Hour)
	access, err := c.SignAccess(Principal{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	_, err = c.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_TamperedSignature(t *testing.T) {
	c := testCodec()
	token, err := c.SignAccess(Principal{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	_, err = c.VerifyAccess(string(tampered))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_WrongSecret(t *testing.T) {
	c := testCodec()
	other := NewCodec("different", "different", time.Minute, time.Hour)

	token, err := c.SignAccess(Principal{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	_, err = other.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_Expired(t *testing.T) {
	c := NewCodec("s", "s", -time.Minute, -time.Minute)
	token, err := c.SignAccess(Principal{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	_, err = c.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("some-token")
	h2 := HashToken("some-token")
	h3 := HashToken("other-token")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64) // sha256 hex
	assert.True(t, HashEqual(h1, h2))
	assert.False(t, HashEqual(h1, h3))
}

func TestDemoVerifier(t *testing.T) {
	c := testCodec()
	demo := DemoVerifier{Next: c}

	claims, err := demo.VerifyAccess("mock.jwt.token")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, TypeAccess, claims.TokenType)

	// Real tokens still flow through the wrapped verifier.
	token, err := c.SignAccess(Principal{ID: 5, Email: "x@y.z", Role: "CUSTOMER"})
	require.NoError(t, err)
	claims, err = demo.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)

	// The bare codec, as wired in production, rejects the sentinel.
	_, err = c.VerifyAccess("mock.jwt.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
