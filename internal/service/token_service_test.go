package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MitulSonagara/blog-backend/internal/domain"
	"github.com/MitulSonagara/blog-backend/pkg/config"
)

func newTestTokenService() *TokenService {
	return NewTokenService(config.JWTConfig{
		AccessSecret:    "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	})
}

func testUser() *domain.User {
	return &domain.User{
		ID:    "user-123",
		Email: "test@example.com",
		Name:  "Test User",
		Role:  domain.RoleUser,
	}
}

func TestTokenService_IssuePair(t *testing.T) {
	svc := newTestTokenService()

	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, int64(900), pair.ExpiresIn)
}

func TestTokenService_Verify(t *testing.T) {
	svc := newTestTokenService()
	user := testUser()

	pair, err := svc.IssuePair(user)
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		claims, err := svc.Verify(pair.AccessToken, domain.TokenKindAccess)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
		assert.Equal(t, domain.RoleUser, claims.Role)
		assert.Equal(t, domain.TokenKindAccess, claims.Kind)
	})

	t.Run("valid refresh token", func(t *testing.T) {
		claims, err := svc.Verify(pair.RefreshToken, domain.TokenKindRefresh)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, domain.TokenKindRefresh, claims.Kind)
	})

	t.Run("access token rejected as refresh", func(t *testing.T) {
		_, err := svc.Verify(pair.AccessToken, domain.TokenKindRefresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh token rejected as access", func(t *testing.T) {
		_, err := svc.Verify(pair.RefreshToken, domain.TokenKindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Verify("not.a.token", domain.TokenKindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with wrong secret", func(t *testing.T) {
		other := NewTokenService(config.JWTConfig{
			AccessSecret:    "other-access-secret",
			RefreshSecret:   "other-refresh-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
		})
		otherPair, err := other.IssuePair(user)
		require.NoError(t, err)

		_, err = svc.Verify(otherPair.AccessToken, domain.TokenKindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenService_VerifyExpired(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{
		AccessSecret:    "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenTTL:  -time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	})

	pair, err := svc.IssuePair(testUser())
	require.NoError(t, err)

	_, err = svc.Verify(pair.AccessToken, domain.TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
