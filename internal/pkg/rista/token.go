package rista

import (
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/restoboard/restoboard/internal/pkg/upstream"
)

// signToken produces the per-request HS256 token. A fresh iat/jti pair is
// minted for every call; tokens are never reused.
func signToken(apiKey, secret string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss": apiKey,
		"iat": now.Unix(),
		"jti": uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", &upstream.AuthError{Err: err}
	}

	return signed, nil
}
