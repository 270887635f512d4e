package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken(Identity{UserID: 7, Email: "a@b.com", Name: "Ann", Role: "seller"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	t.Run("access token携带角色", func(t *testing.T) {
		claims, err := m.ParseToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, "seller", claims.Role)
	})

	t.Run("refresh token不能当access token用", func(t *testing.T) {
		_, err := m.ParseToken(pair.RefreshToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

		claims, err := m.ParseRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Empty(t, claims.Role)
	})

	t.Run("其他密钥签发的token无效", func(t *testing.T) {
		other := NewManager("other", time.Hour, time.Hour)
		_, err := other.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, time.Hour)

	pair, err := m.GenerateToken(Identity{UserID: 1, Role: "buyer"})
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}
