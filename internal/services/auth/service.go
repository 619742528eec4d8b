package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradedesk/internal/config"
	"tradedesk/internal/models"
	"tradedesk/internal/repositories"
	"tradedesk/internal/services/wallet"
	"tradedesk/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Session, error)
	Login(ctx context.Context, req LoginRequest, ip string) (*Session, error)
	VerifyMFA(ctx context.Context, req VerifyMFARequest, ip string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error
	SetupMFA(ctx context.Context, userID uint) (*MFASetup, error)
	EnableMFA(ctx context.Context, userID uint, code string) error
}

type service struct {
	db      *gorm.DB
	users   repositories.UserRepository
	wallets wallet.Service
	jwt     config.JWTConfig
	logger  *zap.Logger
}

func NewService(db *gorm.DB, users repositories.UserRepository, wallets wallet.Service, jwtConfig config.JWTConfig, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{db: db, users: users, wallets: wallets, jwt: jwtConfig, logger: logger}
}

// Register creates the user, their wallet and the user role in one
// transaction, linking the referrer when a referral code is given.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Password:  string(hashed),
		Status:    models.UserStatusActive,
		KYCStatus: models.KYCUnverified,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		if code := strings.TrimSpace(req.ReferralCode); code != "" {
			referrer, err := users.GetByReferralCode(ctx, code)
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrInvalidReferralCode
			}
			if err != nil {
				return err
			}
			user.ReferredByID = &referrer.ID
		}

		code, err := s.uniqueReferralCode(ctx, users)
		if err != nil {
			return err
		}
		user.ReferralCode = code

		if err := users.Create(ctx, user, models.RoleUser); err != nil {
			return err
		}
		_, err = s.wallets.CreateWallet(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	created, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.Uint("user_id", created.ID), zap.Bool("referred", created.ReferredByID != nil))
	return s.session(created)
}

func (s *service) uniqueReferralCode(ctx context.Context, users repositories.UserRepository) (string, error) {
	for i := 0; i < referralCodeTries; i++ {
		code, err := utils.GenerateReferralCode(referralCodeLength)
		if err != nil {
			return "", err
		}
		_, err = users.GetByReferralCode(ctx, code)
		if errors.Is(err, repositories.ErrUserNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("could not allocate a referral code")
}

func (s *service) Login(ctx context.Context, req LoginRequest, ip string) (*Session, error) {
	user, err := s.users.GetByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.logger.Info("login failed", zap.Uint("user_id", user.ID), zap.String("ip", ip))
		return nil, ErrInvalidCredentials
	}
	if user.IsBlocked() {
		return nil, ErrAccountBlocked
	}

	if user.TwoFactorEnabled {
		token, err := utils.GenerateMFAToken(s.jwt, user.ID, user.TokenVersion)
		if err != nil {
			return nil, err
		}
		return &Session{MFARequired: true, MFAToken: token}, nil
	}
	return s.complete(ctx, user, ip)
}

func (s *service) VerifyMFA(ctx context.Context, req VerifyMFARequest, ip string) (*Session, error) {
	_, claims, err := utils.ParseToken(s.jwt.Secret, req.MFAToken, models.TokenPurposeMFA)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenRevoked
	}
	if user.IsBlocked() {
		return nil, ErrAccountBlocked
	}
	if !validCode(req.Code, user.TOTPSecret) {
		return nil, ErrInvalidMFACode
	}
	return s.complete(ctx, user, ip)
}

func (s *service) complete(ctx context.Context, user *models.User, ip string) (*Session, error) {
	now := time.Now()
	user.LastLoginAt = &now
	user.LastLoginIP = ip
	if err := s.db.WithContext(ctx).Model(user).
		Updates(map[string]interface{}{"last_login_at": now, "last_login_ip": ip}).Error; err != nil {
		s.logger.Warn("failed to record login", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	s.logger.Info("user logged in", zap.Uint("user_id", user.ID), zap.String("ip", ip))
	return s.session(user)
}

func (s *service) session(user *models.User) (*Session, error) {
	tokens, err := utils.GenerateTokens(s.jwt, claimsFor(user))
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Tokens: tokens}, nil
}

// Refresh issues a new pair when the refresh token's version is still current.
// Role changes since the last login are picked up here.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	_, claims, err := utils.ParseToken(s.jwt.RefreshSecret, refreshToken, models.TokenPurposeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenRevoked
	}
	if user.IsBlocked() {
		return nil, ErrAccountBlocked
	}
	return utils.GenerateTokens(s.jwt, claimsFor(user))
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.users.IncrementTokenVersion(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}
	if req.CurrentPassword == req.NewPassword {
		return ErrSamePassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.Uint("user_id", userID))
	return nil
}

func claimsFor(user *models.User) *models.UserClaims {
	return &models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Roles:        user.RoleNames(),
		Permissions:  user.Permissions(),
		IsAdmin:      user.IsAdmin,
		TokenVersion: user.TokenVersion,
	}
}

// dummyHash is compared against on unknown logins so they cost as much as known ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("tradedesk-unknown-login"), bcrypt.DefaultCost)
