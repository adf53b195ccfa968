package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_ValidateAccessToken(t *testing.T) {
	const secret = "test-secret"
	validator := NewTokenService(secret)
	userID := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		token, err := SignAccessToken(secret, userID, "ana@example.com", time.Hour)
		require.NoError(t, err)

		claims, err := validator.ValidateAccessToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "ana@example.com", claims.Email)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := SignAccessToken("other", userID, "ana@example.com", time.Hour)
		require.NoError(t, err)

		_, err = validator.ValidateAccessToken(context.Background(), token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := SignAccessToken(secret, userID, "ana@example.com", -time.Minute)
		require.NoError(t, err)

		_, err = validator.ValidateAccessToken(context.Background(), token)
		assert.Error(t, err)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		claims := CustomClaims{
			UserID:    userID.String(),
			TokenType: "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = validator.ValidateAccessToken(context.Background(), token)
		assert.ErrorContains(t, err, "expected access token")
	})
}
