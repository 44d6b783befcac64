package apifake

import (
	"fmt"
	"strconv"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshTokenPrefix = "rt_"

// mintAccessToken signs an HS256 access token for user id. Callers hold s.mu.
func (s *Server) mintAccessToken(userID int64) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"sub": strconv.FormatInt(userID, 10), // The user the token acts for
		"iat": now.Unix(),                    // Issued At
		"exp": now.Add(s.accessTokenTTL).Unix(),
		"jti": uuid.New().String(),
		"gen": s.generation, // Tokens of older generations are expired by ExpireAccessTokens
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("[apifake.mintAccessToken] %w", err)
	}
	return signed, nil
}

// mintRefreshToken issues an opaque refresh token for user id. Callers hold s.mu.
func (s *Server) mintRefreshToken(userID int64) string {
	token := refreshTokenPrefix + strings.ReplaceAll(uuid.New().String(), "-", "")
	s.refreshTokens[token] = userID
	return token
}

// verifyAccessToken returns the user id an access token was minted for.
// Callers hold s.mu.
func (s *Server) verifyAccessToken(raw string) (int64, error) {
	if s.rejectAllAccess {
		return 0, fmt.Errorf("access tokens are rejected")
	}

	parsed, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return 0, err
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return 0, fmt.Errorf("unexpected claims type %T", parsed.Claims)
	}
	gen, _ := claims["gen"].(float64)
	if int64(gen) < s.generation {
		return 0, fmt.Errorf("token has been expired")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q", sub)
	}
	if _, ok := s.accountByID(userID); !ok {
		return 0, fmt.Errorf("unknown subject %q", sub)
	}
	return userID, nil
}

// accountByID looks up an account. Callers hold s.mu.
func (s *Server) accountByID(id int64) (*account, bool) {
	for _, a := range s.accounts {
		if a.id == id {
			return a, true
		}
	}
	return nil, false
}
