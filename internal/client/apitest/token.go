package apitest

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

// claims are the access token claims. Generation lets the server expire
// every token issued so far without waiting for exp.
type claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"uid"`
	Generation int64  `json:"gen"`
}

func generateToken(userID string, generation int64, secret []byte, validity time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        newID(),
		},
		UserID:     userID,
		Generation: generation,
	})
	return token.SignedString(secret)
}

func parseToken(tokenString string, secret []byte, now time.Time) (*claims, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errInvalidToken
	}
	return c, nil
}
