package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuedAt(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "ann",
		"iat":      issued.Unix(),
	}).SignedString([]byte("whatever"))
	require.NoError(t, err)

	got, ok := TokenIssuedAt(signed)
	require.True(t, ok)
	assert.True(t, issued.Equal(got))
}

func TestTokenIssuedAt_Opaque(t *testing.T) {
	for _, token := range []string{"", "opaque-token", "a.b.c"} {
		_, ok := TokenIssuedAt(token)
		assert.False(t, ok, token)
	}

	noIat, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": "ann"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok := TokenIssuedAt(noIat)
	assert.False(t, ok)
}
