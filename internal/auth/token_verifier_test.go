package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

func TestVerifyToken(t *testing.T) {
	verifier, err := NewTokenVerifier("test-secret")
	require.NoError(t, err)

	token := signToken(t, "test-secret", jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	userID, err := verifier.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerifyToken_Rejections(t *testing.T) {
	verifier, err := NewTokenVerifier("test-secret")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "wrong secret",
			token: signToken(t, "other-secret", jwt.MapClaims{"sub": "user-1"}),
		},
		{
			name: "expired",
			token: signToken(t, "test-secret", jwt.MapClaims{
				"sub": "user-1",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name:  "missing subject",
			token: signToken(t, "test-secret", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
		},
		{
			name:  "garbage",
			token: "not-a-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.VerifyToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestNewTokenVerifier_RequiresSecret(t *testing.T) {
	_, err := NewTokenVerifier("")
	assert.Error(t, err)
}
