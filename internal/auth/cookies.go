package auth

// Cookie names used by the session protocol. AccessTokenCookie is the
// canonical name; LegacyTokenCookie is only ever read as a last-resort
// fallback and cleared on login/logout, never written.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
	LegacyTokenCookie  = "token"
)
