package utils

import (
	"testing"
	"time"

	"tradedesk/internal/config"
	"tradedesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}
}

func TestGenerateTokensRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	pair, err := GenerateTokens(cfg, &models.UserClaims{
		UserID:       7,
		Email:        "ada@example.com",
		Roles:        []string{models.RoleAdmin},
		Permissions:  []string{models.PermissionKYCReview},
		TokenVersion: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	_, access, err := ParseToken(cfg.Secret, pair.AccessToken, models.TokenPurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(7), access.UserID)
	assert.Equal(t, 3, access.TokenVersion)
	assert.True(t, access.HasPermission(models.PermissionKYCReview))

	_, refresh, err := ParseToken(cfg.RefreshSecret, pair.RefreshToken, models.TokenPurposeRefresh)
	require.NoError(t, err)
	assert.Empty(t, refresh.Permissions)
	assert.Equal(t, 3, refresh.TokenVersion)
}

func TestParseTokenRejectsWrongSecretAndPurpose(t *testing.T) {
	cfg := testJWTConfig()
	pair, err := GenerateTokens(cfg, &models.UserClaims{UserID: 1, TokenVersion: 1})
	require.NoError(t, err)

	_, _, err = ParseToken(cfg.Secret, pair.RefreshToken, models.TokenPurposeRefresh)
	assert.Error(t, err)

	_, _, err = ParseToken(cfg.Secret, pair.AccessToken, models.TokenPurposeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenPurpose)

	mfa, err := GenerateMFAToken(cfg, 1, 1)
	require.NoError(t, err)
	_, _, err = ParseToken(cfg.Secret, mfa, models.TokenPurposeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenPurpose)

	_, claims, err := ParseToken(cfg.Secret, mfa, models.TokenPurposeMFA)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
}

func TestGenerateTokensWithoutSecret(t *testing.T) {
	_, err := GenerateTokens(config.JWTConfig{}, &models.UserClaims{UserID: 1})
	assert.ErrorIs(t, err, ErrSecretNotConfigured)
}

func TestReferralCodeAndReference(t *testing.T) {
	code, err := GenerateReferralCode(8)
	require.NoError(t, err)
	assert.Len(t, code, 8)
	assert.NotContains(t, code, "0")
	assert.NotContains(t, code, "O")

	ref := NewReference("GCT")
	assert.Regexp(t, `^GCT-[0-9A-F]{16}$`, ref)
	assert.NotEqual(t, ref, NewReference("GCT"))
}
