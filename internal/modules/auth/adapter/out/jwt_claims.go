package out

import (
	"github.com/golang-jwt/jwt/v5"

	"mindboost/internal/modules/auth/domain"
	authout "mindboost/internal/modules/auth/port/out"
)

// JWTClaimsDecoder reads claims without verifying the signature; the client
// has no key and only shows them.
type JWTClaimsDecoder struct {
	parser *jwt.Parser
}

func NewJWTClaimsDecoder() authout.ClaimsDecoder {
	return &JWTClaimsDecoder{parser: jwt.NewParser()}
}

func (d *JWTClaimsDecoder) Decode(token string) (domain.Claims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return domain.Claims{}, false
	}
	out := domain.Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time.UTC()
	}
	return out, true
}
