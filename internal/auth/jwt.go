// Package auth verifies caller identity for the catalog. Tokens are issued
// elsewhere; this package only checks them.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultIssuer = "product-catalog"

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidIssuer = errors.New("invalid issuer")
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: DefaultIssuer,
	}
}

// WithIssuer makes v accept only tokens from iss. An empty iss keeps the
// current issuer.
func (v *Verifier) WithIssuer(iss string) *Verifier {
	if iss != "" {
		v.issuer = iss
	}
	return v
}

// Enabled reports whether a secret is configured. Without one every token is
// rejected.
func (v *Verifier) Enabled() bool { return v != nil && len(v.secret) > 0 }

func (v *Verifier) Parse(tokenStr string) (Claims, error) {
	if !v.Enabled() {
		return Claims{}, ErrInvalidToken
	}

	var c Claims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	if c.Issuer != "" && c.Issuer != v.issuer {
		return Claims{}, ErrInvalidIssuer
	}
	if c.UserID == "" {
		c.UserID = c.Subject
	}
	if c.UserID == "" {
		return Claims{}, ErrInvalidToken
	}

	return c, nil
}
