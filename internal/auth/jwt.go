package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims identify an API caller by chat handle. Role is informational; the
// users table is re-checked on every request.
type Claims struct {
	Handle string `json:"handle"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ErrEmptySecret is returned when tokens are issued or checked without a
// signing secret. An empty HMAC key would accept tokens anyone can forge.
var ErrEmptySecret = errors.New("jwt secret is empty")

func NewToken(secret, issuer string, ttl time.Duration, handle, role string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now().UTC()
	claims := Claims{
		Handle: handle,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   handle,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func ParseToken(secret, issuer, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
