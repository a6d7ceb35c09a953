package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret-test-secret-test-secret")
	id := uuid.New()

	token, err := m.Issue(Claims{UserID: id, Role: "writer", Email: "w@example.com", Name: "Ира"}, time.Hour)
	require.NoError(t, err)

	claims, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "writer", claims.Role)
	assert.Equal(t, "w@example.com", claims.Email)
	assert.Equal(t, "Ира", claims.Name)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("test-secret-test-secret-test-secret")

	t.Run("чужой секрет", func(t *testing.T) {
		other := NewTokenManager("another-secret-another-secret-xx")
		token, err := other.Issue(Claims{UserID: uuid.New(), Role: "client"}, time.Hour)
		require.NoError(t, err)
		_, err = m.ParseAccess(token)
		assert.Error(t, err)
	})

	t.Run("истёкший", func(t *testing.T) {
		token, err := m.Issue(Claims{UserID: uuid.New(), Role: "client"}, -time.Minute)
		require.NoError(t, err)
		_, err = m.ParseAccess(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("без exp", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": uuid.NewString()}).
			SignedString([]byte("test-secret-test-secret-test-secret"))
		require.NoError(t, err)
		_, err = m.ParseAccess(token)
		assert.Error(t, err)
	})

	t.Run("sub не uuid", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user-42", "exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("test-secret-test-secret-test-secret"))
		require.NoError(t, err)
		_, err = m.ParseAccess(token)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidClaims)
	})

	t.Run("мусор", func(t *testing.T) {
		_, err := m.ParseAccess("not.a.token")
		assert.Error(t, err)
	})
}
