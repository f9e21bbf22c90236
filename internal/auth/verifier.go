package auth

// TokenVerifier is the access-token verification surface consumed by the
// authentication gate and the edge interceptor. Production wires the Codec
// directly; non-production may wrap it in a DemoVerifier. Selecting the
// backend at startup keeps any bypass unreachable in a production build.
type TokenVerifier interface {
	VerifyAccess(token string) (Claims, error)
}

// demoToken is the literal sentinel accepted by DemoVerifier. It exists to
// let local demos and the seeded front end call protected endpoints without
// a login round-trip. It is not a contract feature.
const demoToken = "mock.jwt.token"

// DemoVerifier accepts the demo sentinel token and delegates everything
// else to the real verifier. Only cmd/server constructs it, and only when
// the environment is not production.
type DemoVerifier struct {
	Next TokenVerifier
}

// VerifyAccess maps the sentinel to a fixed demo principal and otherwise
// defers to the wrapped verifier.
func (d DemoVerifier) VerifyAccess(token string) (Claims, error) {
	if token == demoToken {
		return Claims{
			UserID:    0,
			Email:     "demo@rentels.local",
			Role:      "ADMIN",
			TokenType: TypeAccess,
		}, nil
	}
	return d.Next.VerifyAccess(token)
}
