package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier resolves a caller's bearer token to a user id. Tokens are
// HS256 JWTs issued by the dashboard's auth service; the subject claim
// carries the user id.
type TokenVerifier struct {
	signingSecret []byte
}

func NewTokenVerifier(signingSecret string) (*TokenVerifier, error) {
	if signingSecret == "" {
		return nil, fmt.Errorf("auth signing secret is required")
	}

	return &TokenVerifier{
		signingSecret: []byte(signingSecret),
	}, nil
}

func (v *TokenVerifier) VerifyToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return v.signingSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject claim")
	}

	return subject, nil
}
