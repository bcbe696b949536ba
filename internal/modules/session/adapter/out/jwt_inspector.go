package out

import (
	"github.com/golang-jwt/jwt/v5"

	"airpulse/internal/modules/session/domain"
	sessionout "airpulse/internal/modules/session/port/out"
)

// JWTInspector reads claims without checking the signature. The client has
// no key; the server remains the authority on validity.
type JWTInspector struct {
	parser *jwt.Parser
}

func NewJWTInspector() sessionout.TokenInspector {
	return &JWTInspector{parser: jwt.NewParser()}
}

func (i *JWTInspector) Inspect(token string) (domain.Claims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return domain.Claims{}, false
	}
	out := domain.Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time.UTC()
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time.UTC()
	}
	return out, true
}
