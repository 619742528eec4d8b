package utils

import (
	"errors"
	"strconv"
	"time"

	"tradedesk/internal/config"
	"tradedesk/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer = "tradedesk-api"
	mfaTokenTTL = 5 * time.Minute
)

var (
	ErrSecretNotConfigured = errors.New("jwt secret not configured")
	ErrInvalidToken        = errors.New("invalid token claims")
	ErrWrongTokenPurpose   = errors.New("token used for the wrong purpose")
)

// TokenPair is handed out on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// GenerateTokens generates an access token and a refresh token for the given user claims.
// Refresh tokens are signed with their own secret and carry no permissions.
func GenerateTokens(cfg config.JWTConfig, claims *models.UserClaims) (*TokenPair, error) {
	if cfg.Secret == "" || cfg.RefreshSecret == "" {
		return nil, ErrSecretNotConfigured
	}

	now := time.Now()

	accessClaims := *claims
	accessClaims.RegisteredClaims = registered(claims.UserID, now, cfg.AccessTTL)
	accessClaims.Purpose = models.TokenPurposeAccess
	accessToken, err := sign(cfg.Secret, &accessClaims)
	if err != nil {
		return nil, err
	}

	refreshClaims := models.UserClaims{
		RegisteredClaims: registered(claims.UserID, now, cfg.RefreshTTL),
		UserID:           claims.UserID,
		Email:            claims.Email,
		TokenVersion:     claims.TokenVersion,
		Purpose:          models.TokenPurposeRefresh,
	}
	refreshToken, err := sign(cfg.RefreshSecret, &refreshClaims)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(cfg.AccessTTL.Seconds()),
	}, nil
}

// GenerateMFAToken issues the short-lived token exchanged for a session once the TOTP code checks out.
func GenerateMFAToken(cfg config.JWTConfig, userID uint, tokenVersion int) (string, error) {
	if cfg.Secret == "" {
		return "", ErrSecretNotConfigured
	}
	claims := models.UserClaims{
		RegisteredClaims: registered(userID, time.Now(), mfaTokenTTL),
		UserID:           userID,
		TokenVersion:     tokenVersion,
		Purpose:          models.TokenPurposeMFA,
	}
	return sign(cfg.Secret, &claims)
}

// ParseToken parses and validates a JWT token string and checks its purpose.
func ParseToken(secret, tokenStr, purpose string) (*jwt.Token, *models.UserClaims, error) {
	if secret == "" {
		return nil, nil, ErrSecretNotConfigured
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, nil, err
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, nil, ErrWrongTokenPurpose
	}

	return token, claims, nil
}

func registered(userID uint, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
	}
}

func sign(secret string, claims *models.UserClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
