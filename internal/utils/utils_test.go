package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "HOST", 15)
	require.NoError(t, err)

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "HOST", claims["role"])
	assert.Equal(t, float64(tok.Exp.Unix()), claims["exp"])
}

func TestRefreshTokens(t *testing.T) {
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
}

func TestPasswords(t *testing.T) {
	assert.ErrorIs(t, CheckPassword("short"), ErrPasswordTooShort)
	assert.NoError(t, CheckPassword("long enough"))

	hash, err := HashPassword("long enough", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "long enough"))
	assert.False(t, VerifyPassword(hash, "wrong one"))
}
