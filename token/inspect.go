package token

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is what the client can read out of an access token without the
// server's key. Nothing here is verified; it is display information only.
type Claims struct {
	Sub       string    `json:"sub,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"` // Zero when the token has no exp claim
	IssuedAt  time.Time `json:"iat,omitempty"`
	JWT       bool      `json:"-"` // False for opaque tokens
}

// Expired reports whether the token's exp claim is in the past. Opaque tokens
// and tokens without exp are never reported as expired.
func (c Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && NowTimeFunc().After(c.ExpiresAt)
}

// Inspect decodes rawToken's claims without verifying its signature.
// Opaque (non-JWT) tokens return empty claims and no error.
func Inspect(rawToken string) (Claims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return Claims{}, errors.New("empty token")
	}
	if strings.Count(rawToken, ".") != 2 {
		return Claims{}, nil
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return Claims{}, err
	}
	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return Claims{}, errors.New("error extracting claims")
	}

	claims := Claims{JWT: true}
	claims.Sub, _ = mapClaims.GetSubject()
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}
