package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridroom/gridroom-backend/internal/apperror"
)

func TestAuthService_TokenRoundTrip(t *testing.T) {
	t.Run("Issued token resolves back to the participant", func(t *testing.T) {
		auth := NewAuthService("test-secret")

		token, err := auth.IssueToken("p1")
		require.NoError(t, err)

		subject, err := auth.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, "p1", subject)
	})

	t.Run("Token signed with another secret is rejected", func(t *testing.T) {
		issuer := NewAuthService("secret-a")
		verifier := NewAuthService("secret-b")

		token, err := issuer.IssueToken("p1")
		require.NoError(t, err)

		_, err = verifier.VerifyToken(token)
		assert.ErrorIs(t, err, apperror.ErrTokenInvalid)
	})

	t.Run("Garbage token is rejected", func(t *testing.T) {
		auth := NewAuthService("test-secret")

		_, err := auth.VerifyToken("not-a-token")
		assert.ErrorIs(t, err, apperror.ErrTokenInvalid)
	})
}
