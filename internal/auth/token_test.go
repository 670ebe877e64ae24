package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	manager := NewTokenManager("test-secret", 30)

	token, expiresAt, err := manager.GenerateToken("alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, time.Minute)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Identity)
	assert.Equal(t, "alice@example.com", claims.Subject)
}

func TestGenerateTokenRequiresIdentity(t *testing.T) {
	manager := NewTokenManager("test-secret", 30)

	_, _, err := manager.GenerateToken("   ")
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 30)
	verifier := NewTokenManager("secret-b", 30)

	token, _, err := issuer.GenerateToken("alice@example.com")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret", 30)

	_, err := manager.ParseToken("not.a.token")
	assert.Error(t, err)
}
