package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-at-least-32-chars!!"

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, 24*time.Hour)

	access, err := tm.GenerateAccessToken("u1", "user@test.com")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "user@test.com", claims.Email)
	assert.Equal(t, TokenTypeAccess, claims.Type)
}

func TestRefreshTokenType(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, 24*time.Hour)

	refresh, err := tm.GenerateRefreshToken("u1", "user@test.com")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
}

func TestExpiredToken(t *testing.T) {
	tm := NewTokenManager(testSecret, -time.Minute, 24*time.Hour)

	access, err := tm.GenerateAccessToken("u1", "user@test.com")
	require.NoError(t, err)

	_, err = tm.ValidateToken(access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestWrongSecretRejected(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, 24*time.Hour)
	other := NewTokenManager("another-secret-that-is-also-32-chars", time.Hour, 24*time.Hour)

	access, err := tm.GenerateAccessToken("u1", "user@test.com")
	require.NoError(t, err)

	_, err = other.ValidateToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, 24*time.Hour)

	_, err := tm.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenAuthenticator(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour, 24*time.Hour)
	auth := NewTokenAuthenticator(tm)

	t.Run("AccessTokenAccepted", func(t *testing.T) {
		access, err := tm.GenerateAccessToken("u1", "user@test.com")
		require.NoError(t, err)

		identity, err := auth.Authenticate(context.Background(), access)
		require.NoError(t, err)
		assert.Equal(t, "u1", identity.UserID)
	})

	t.Run("RefreshTokenRejected", func(t *testing.T) {
		refresh, err := tm.GenerateRefreshToken("u1", "user@test.com")
		require.NoError(t, err)

		_, err = auth.Authenticate(context.Background(), refresh)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})
}
