package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "instructorhub/pkg/domain-errors"
)

var verifier = NewSessionVerifier("test-signing-key", "test-issuer", "instructorhub")

func TestVerify_ValidSession(t *testing.T) {
	token, err := verifier.Sign("subj-1", "jane@example.com", "Jane", time.Hour)
	require.NoError(t, err)

	session, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "subj-1", session.SubjectID)
	assert.Equal(t, "jane@example.com", session.Email)
	assert.Equal(t, "Jane", session.DisplayName)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)
}

func TestVerify_Rejections(t *testing.T) {
	expired, err := verifier.Sign("subj-1", "jane@example.com", "", -time.Hour)
	require.NoError(t, err)

	otherKey, err := NewSessionVerifier("other-key", "test-issuer", "instructorhub").Sign("subj-1", "a@b.com", "", time.Hour)
	require.NoError(t, err)

	wrongAudience, err := NewSessionVerifier("test-signing-key", "test-issuer", "elsewhere").Sign("subj-1", "a@b.com", "", time.Hour)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subj-1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not-a-jwt",
		"expired":        expired,
		"wrong key":      otherKey,
		"wrong audience": wrongAudience,
		"alg none":       noneAlg,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), token)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		})
	}
}
