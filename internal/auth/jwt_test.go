package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, claims auth.SessionClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func defaultClaims(email string) auth.SessionClaims {
	return auth.SessionClaims{
		Email: email,
		Name:  "Test User",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "gateway",
			Audience:  jwt.ClaimStrings{"worksite-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func newValidator() *auth.SessionValidator {
	return auth.NewSessionValidator(&config.AuthConfig{
		JWTSecret: testSecret,
		Issuer:    "gateway",
		Audience:  "worksite-api",
	})
}

func TestValidateToken(t *testing.T) {
	v := newValidator()

	claims, err := v.ValidateToken(signToken(t, testSecret, defaultClaims("mester@example.com")))
	require.NoError(t, err)
	assert.Equal(t, "mester@example.com", claims.Email)
	assert.Equal(t, "Test User", claims.Name)
	assert.False(t, claims.IsSuperUser)
}

func TestValidateTokenNormalizesEmail(t *testing.T) {
	v := newValidator()

	claims, err := v.ValidateToken(signToken(t, testSecret, defaultClaims("  Mester@Example.COM ")))
	require.NoError(t, err)
	assert.Equal(t, "mester@example.com", claims.Email)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	v := newValidator()

	_, err := v.ValidateToken(signToken(t, "other-secret", defaultClaims("mester@example.com")))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	v := newValidator()

	claims := defaultClaims("mester@example.com")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	v := newValidator()

	claims := defaultClaims("mester@example.com")
	claims.Issuer = "someone-else"

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateTokenWrongAudience(t *testing.T) {
	v := newValidator()

	claims := defaultClaims("mester@example.com")
	claims.Audience = jwt.ClaimStrings{"other-api"}

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateTokenMissingEmail(t *testing.T) {
	v := newValidator()

	claims := defaultClaims("")
	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
