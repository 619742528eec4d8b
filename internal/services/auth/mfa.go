package auth

import (
	"context"

	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
)

// SetupMFA stores a fresh TOTP secret. It only takes effect once EnableMFA
// confirms a code generated from it.
func (s *service) SetupMFA(ctx context.Context, userID uint) (*MFASetup, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{Issuer: totpIssuer, AccountName: user.Email})
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("totp_secret", key.Secret()).Error; err != nil {
		return nil, err
	}
	return &MFASetup{Secret: key.Secret(), URL: key.URL()}, nil
}

func (s *service) EnableMFA(ctx context.Context, userID uint, code string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TwoFactorEnabled {
		return ErrMFAAlreadyEnabled
	}
	if user.TOTPSecret == "" {
		return ErrMFANotSetup
	}
	if !validCode(code, user.TOTPSecret) {
		return ErrInvalidMFACode
	}
	if err := s.db.WithContext(ctx).Model(user).Update("two_factor_enabled", true).Error; err != nil {
		return err
	}
	s.logger.Info("two-factor enabled", zap.Uint("user_id", userID))
	return nil
}

func validCode(code, secret string) bool {
	return secret != "" && totp.Validate(code, secret)
}
