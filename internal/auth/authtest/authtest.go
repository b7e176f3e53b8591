// Package authtest mints tokens that auth.Verifier accepts, for tests.
package authtest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ProductCatalog/internal/auth"
)

func Token(t testing.TB, secret, userID, role string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	return Sign(t, secret, auth.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    auth.DefaultIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
}

func Sign(t testing.TB, secret string, c auth.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
