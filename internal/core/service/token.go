package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nutridata/portal/internal/core/domain"
)

// TokenInspector looks inside bearer tokens issued by the practice API.
// With a secret it verifies the HS256 signature and the role claim; without
// one it only reads the expiry, and opaque (non-JWT) tokens pass through.
type TokenInspector struct {
	secret []byte
	now    func() time.Time
}

func NewTokenInspector(secret string) *TokenInspector {
	return &TokenInspector{secret: []byte(secret), now: time.Now}
}

// SessionTTL returns how long a session holding token may live, capped at max.
func (t *TokenInspector) SessionTTL(token string, role domain.Role, max time.Duration) (time.Duration, error) {
	claims := jwt.MapClaims{}

	if len(t.secret) > 0 {
		tkn, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return t.secret, nil
		}, jwt.WithTimeFunc(t.now))
		if err != nil || !tkn.Valid {
			return 0, fmt.Errorf("%w: %v", domain.ErrTokenRejected, err)
		}
		claimed, _ := claims["role"].(string)
		if domain.Role(claimed) != role {
			return 0, fmt.Errorf("%w: role claim %q does not match %q", domain.ErrTokenRejected, claimed, role)
		}
	} else if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return max, nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return max, nil
	}

	remaining := exp.Sub(t.now())
	if remaining <= 0 {
		return 0, fmt.Errorf("%w: token expired", domain.ErrTokenRejected)
	}
	if max > 0 && max < remaining {
		return max, nil
	}
	return remaining, nil
}
