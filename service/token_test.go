// ABOUTME: Tests for unverified JWT subject extraction
// ABOUTME: Covers valid tokens, missing subjects, and malformed input
package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSubject(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "user-42"})

	sub, err := Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", sub)
}

func TestSubjectIgnoresSignature(t *testing.T) {
	// The signature is never checked; a tampered one still parses.
	token := signedToken(t, jwt.MapClaims{"sub": "user-42"}) + "garbage"

	sub, err := Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", sub)
}

func TestSubjectMissingClaim(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"aud": "pip"})

	_, err := Subject(token)
	assert.ErrorContains(t, err, "no subject claim")
}

func TestSubjectMalformedToken(t *testing.T) {
	_, err := Subject("not-a-jwt")
	assert.ErrorContains(t, err, "failed to parse token")
}

func TestTokenSourceProvider(t *testing.T) {
	provider := NewTokenSourceProvider(nil)

	identity, err := provider.Identity(context.Background())
	require.NoError(t, err)
	assert.Empty(t, identity.JWT())

	require.NoError(t, provider.Update(context.Background(), "fresh", nil))

	identity, err = provider.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", identity.JWT())
}
