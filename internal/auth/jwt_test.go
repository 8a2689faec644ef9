package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/flowboard/internal/auth"
)

func TestJWT_IssueAndValidateRoundTrip(t *testing.T) {
	t.Parallel()

	secret := "test-secret-key-very-long-and-secure"
	userID := uuid.New()

	tests := []struct {
		name      string
		admin     bool
		issuer    func(string, uuid.UUID, bool, time.Duration) (string, error)
		tokenType string
		access    bool
	}{
		{name: "access token", admin: true, issuer: auth.IssueAccessToken, tokenType: "access", access: true},
		{name: "refresh token", admin: false, issuer: auth.IssueRefreshToken, tokenType: "refresh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := tt.issuer(secret, userID, tt.admin, 10*time.Minute)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := auth.ValidateToken(secret, token)
			require.NoError(t, err)

			assert.Equal(t, userID.String(), claims.UserID)
			assert.Equal(t, tt.admin, claims.Admin)
			assert.Equal(t, tt.tokenType, claims.TokenType)
			assert.Equal(t, tt.access, claims.IsAccess())
			assert.Equal(t, "flowboard", claims.Issuer)
			assert.NotNil(t, claims.IssuedAt)
			assert.NotNil(t, claims.ExpiresAt)
		})
	}
}

func TestJWT_ExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAccessToken("test-secret-key", uuid.New(), false, -1*time.Second)
	require.NoError(t, err)

	claims, err := auth.ValidateToken("test-secret-key", token)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWT_InvalidSecretRejected(t *testing.T) {
	t.Parallel()

	token, err := auth.IssueAccessToken("correct-secret", uuid.New(), false, 5*time.Minute)
	require.NoError(t, err)

	claims, err := auth.ValidateToken("wrong-secret", token)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWT_MalformedTokenRejected(t *testing.T) {
	t.Parallel()

	claims, err := auth.ValidateToken("secret", "not.a.valid.jwt.token")
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
