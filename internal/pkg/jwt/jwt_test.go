package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verify(t *testing.T, svc Service, token string) (map[string]interface{}, error) {
	t.Helper()
	parsed, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	if err != nil {
		return nil, VerifyError(err)
	}
	return parsed.AsMap(context.Background())
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	svc := NewJWTService("secret", "1h")

	token, expiresAt, err := svc.GenerateAccessToken("user-1", true)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotZero(t, expiresAt)

	claims, err := verify(t, svc, token)
	require.NoError(t, err)
	userID, admin, err := ParseClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.True(t, admin)
}

func TestVerifyError(t *testing.T) {
	svc := NewJWTService("secret", "1h")

	_, err := verify(t, svc, "not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	other := NewJWTService("other-secret", "1h")
	token, _, err := other.GenerateAccessToken("user-1", false)
	require.NoError(t, err)
	_, err = verify(t, svc, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	expired := NewJWTService("secret", "-1h")
	token, _, err = expired.GenerateAccessToken("user-1", false)
	require.NoError(t, err)
	_, err = verify(t, svc, token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestParseClaims_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]interface{}
	}{
		{"missing type", map[string]interface{}{"user_id": "user-1"}},
		{"refresh type", map[string]interface{}{"type": "refresh", "user_id": "user-1"}},
		{"missing user", map[string]interface{}{"type": TokenTypeAccess}},
		{"empty user", map[string]interface{}{"type": TokenTypeAccess, "user_id": ""}},
		{"non-string user", map[string]interface{}{"type": TokenTypeAccess, "user_id": 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseClaims(tt.claims)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestParseClaims_AdminDefaultsFalse(t *testing.T) {
	userID, admin, err := ParseClaims(map[string]interface{}{"type": TokenTypeAccess, "user_id": "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.False(t, admin)
}

func TestGenerateAccessToken_Errors(t *testing.T) {
	_, _, err := NewJWTService("secret", "1h").GenerateAccessToken("", false)
	assert.ErrorIs(t, err, auth.ErrUserIDRequired)

	_, _, err = NewJWTService("secret", "soon").GenerateAccessToken("user-1", false)
	assert.Error(t, err)
}
