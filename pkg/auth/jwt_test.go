package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "fintrack", 3600, 7200)
	userID := uuid.New()

	pair, err := issuer.GenerateTokenPair(userID, "ada@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := issuer.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	pair, err := NewTokenIssuer("secret-a", "fintrack", 3600, 7200).GenerateTokenPair(uuid.New(), "a@b.c")
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", "fintrack", 3600, 7200).ValidateToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestTokenIssuer_RefreshTokenIsNotAnAccessToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "fintrack", 3600, 7200)
	pair, err := issuer.GenerateTokenPair(uuid.New(), "a@b.c")
	require.NoError(t, err)

	_, err = issuer.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestTokenIssuer_Refresh(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "fintrack", 3600, 7200)
	userID := uuid.New()
	pair, err := issuer.GenerateTokenPair(userID, "old@example.com")
	require.NoError(t, err)

	refreshed, err := issuer.Refresh(pair.RefreshToken, func(id uuid.UUID) (string, error) {
		assert.Equal(t, userID, id)
		return "new@example.com", nil
	})
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", claims.Email)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	ok, err := CheckPassword(hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}
