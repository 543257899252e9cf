package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidvault/internal/config"
	"vidvault/internal/domain/asset"
	"vidvault/internal/infrastructure/auth"
)

func newValidator() *auth.Validator {
	return auth.NewValidator(&config.Config{JWTSecret: "unit-test-secret"}, zerolog.Nop())
}

func sign(t *testing.T, secret string, claims auth.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseValidToken(t *testing.T) {
	tenant := "tenant-a"
	token := sign(t, "unit-test-secret", auth.Claims{
		Role:     "Editor",
		TenantID: &tenant,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	principal, err := newValidator().Parse(token)
	require.NoError(t, err)

	assert.Equal(t, "user-42", principal.UserID)
	assert.Equal(t, asset.RoleEditor, principal.Role)
	require.NotNil(t, principal.TenantID)
	assert.Equal(t, "tenant-a", *principal.TenantID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token := sign(t, "other-secret", auth.Claims{
		Role: "Editor",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := newValidator().Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token := sign(t, "unit-test-secret", auth.Claims{
		Role: "Editor",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	_, err := newValidator().Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsMissingSubject(t *testing.T) {
	token := sign(t, "unit-test-secret", auth.Claims{
		Role: "Editor",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := newValidator().Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	token := sign(t, "unit-test-secret", auth.Claims{
		Role: "Superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := newValidator().Parse(token)
	assert.Error(t, err)
}

func TestParseNormalizesBlankTenant(t *testing.T) {
	blank := "  "
	token := sign(t, "unit-test-secret", auth.Claims{
		Role:     "Admin",
		TenantID: &blank,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	principal, err := newValidator().Parse(token)
	require.NoError(t, err)
	assert.Nil(t, principal.TenantID)
}

func TestParseDefaultsMissingRoleToViewer(t *testing.T) {
	token := sign(t, "unit-test-secret", auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	principal, err := newValidator().Parse(token)
	require.NoError(t, err)
	assert.Equal(t, asset.RoleViewer, principal.Role)
	assert.False(t, principal.CanMutate())
}
