package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	tok, err := GenerateToken("s3cret", "rentexpress", "user-1", "landlord", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "landlord", claims.Role)
	assert.Equal(t, "rentexpress", claims.Issuer)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken("s3cret", "", "user-1", "tenant", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other", tok)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "user-1",
		Role:   "tenant",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past),
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
		},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = ParseToken("s3cret", tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseToken_MissingExpiry(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-1"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = ParseToken("s3cret", tok)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("s3cret", "not.a.jwt")
	assert.Error(t, err)
}
