package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	ph := NewPasswordHasher()

	hash, err := ph.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := ph.VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ph.VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHashesAreSalted(t *testing.T) {
	ph := NewPasswordHasher()

	h1, err := ph.HashPassword("same password")
	require.NoError(t, err)
	h2, err := ph.HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	ph := NewPasswordHasher()

	_, err := ph.VerifyPassword("anything", "not-a-hash")
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	h := NewJWTHandler("test-secret", time.Hour)
	userID := uuid.New()

	token, err := h.GenerateAccessToken(userID, "operator1", string(RoleOperator))
	require.NoError(t, err)

	claims, err := h.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "operator1", claims.Username)
	assert.Equal(t, string(RoleOperator), claims.Role)
	assert.Equal(t, "plctester", claims.Issuer)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	h := NewJWTHandler("secret-a", time.Hour)
	token, err := h.GenerateAccessToken(uuid.New(), "user", string(RoleAdmin))
	require.NoError(t, err)

	other := NewJWTHandler("secret-b", time.Hour)
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	h := NewJWTHandler("test-secret", -time.Minute)
	token, err := h.GenerateAccessToken(uuid.New(), "user", string(RoleOperator))
	require.NoError(t, err)

	_, err = h.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	h := NewJWTHandler("test-secret", time.Hour)
	_, err := h.ValidateAccessToken("garbage.token.here")
	assert.Error(t, err)
}

func TestRoleAllows(t *testing.T) {
	assert.True(t, roleAllows(RoleAdmin, RoleOperator))
	assert.True(t, roleAllows(RoleAdmin, RoleAdmin))
	assert.True(t, roleAllows(RoleOperator, RoleOperator))
	assert.False(t, roleAllows(RoleOperator, RoleAdmin))
}
