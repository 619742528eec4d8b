// Package user is the back-office view of customers and staff: listings,
// profiles, blocking, admin accounts and role assignment.
package user

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"tradedesk/internal/models"
	"tradedesk/internal/repositories"
	"tradedesk/internal/services/wallet"
	"tradedesk/internal/utils"
	"tradedesk/internal/utils/pagination"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrSelfAction     = errors.New("you cannot change your own account this way")
	ErrRolesRequired  = errors.New("at least one role is required")
	ErrAlreadyBlocked = errors.New("user is already blocked")
	ErrNotBlocked     = errors.New("user is not blocked")
)

const referralCodeLength = 8

type CreateAdminRequest struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Email    string   `json:"email" validate:"required,email,max=255"`
	Phone    string   `json:"phone" validate:"required,numeric,min=10,max=15"`
	Password string   `json:"password" validate:"required,strong_password"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,required"`
}

type AssignRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,required"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// Profile is a user with the wallet and latest verification shown alongside.
type Profile struct {
	User      *models.User            `json:"user"`
	Wallet    *models.Wallet          `json:"wallet,omitempty"`
	LatestKYC *models.KYCVerification `json:"latest_kyc,omitempty"`
}

type Service interface {
	Profile(ctx context.Context, userID uint) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*models.User, error)
	List(ctx context.Context, q pagination.Query) ([]models.User, int64, error)
	Block(ctx context.Context, actorID, userID uint) error
	Unblock(ctx context.Context, actorID, userID uint) error
	CreateAdmin(ctx context.Context, req CreateAdminRequest) (*models.User, error)
	AssignRoles(ctx context.Context, actorID, userID uint, roles []string) (*models.User, error)
}

type service struct {
	db      *gorm.DB
	users   repositories.UserRepository
	wallets wallet.Service
	logger  *zap.Logger
}

func NewService(db *gorm.DB, users repositories.UserRepository, wallets wallet.Service, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{db: db, users: users, wallets: wallets, logger: logger}
}

func (s *service) Profile(ctx context.Context, userID uint) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := &Profile{User: user}

	w, err := s.wallets.GetWallet(ctx, userID)
	switch {
	case err == nil:
		profile.Wallet = w
	case !errors.Is(err, wallet.ErrWalletNotFound):
		return nil, err
	}

	var kyc models.KYCVerification
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").First(&kyc).Error
	switch {
	case err == nil:
		profile.LatestKYC = &kyc
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return profile, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(req.Name)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) List(ctx context.Context, q pagination.Query) ([]models.User, int64, error) {
	return s.users.List(ctx, q)
}

// Block signs the user out everywhere: the status change bumps the token version.
func (s *service) Block(ctx context.Context, actorID, userID uint) error {
	return s.setStatus(ctx, actorID, userID, models.UserStatusBlocked)
}

func (s *service) Unblock(ctx context.Context, actorID, userID uint) error {
	return s.setStatus(ctx, actorID, userID, models.UserStatusActive)
}

func (s *service) setStatus(ctx context.Context, actorID, userID uint, status string) error {
	if actorID == userID {
		return ErrSelfAction
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	switch {
	case status == models.UserStatusBlocked && user.IsBlocked():
		return ErrAlreadyBlocked
	case status == models.UserStatusActive && !user.IsBlocked():
		return ErrNotBlocked
	}
	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		return err
	}
	s.logger.Info("user status changed", zap.Uint("user_id", userID), zap.String("status", status), zap.Uint("actor_id", actorID))
	return nil
}

func (s *service) CreateAdmin(ctx context.Context, req CreateAdminRequest) (*models.User, error) {
	if len(req.Roles) == 0 {
		return nil, ErrRolesRequired
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	code, err := utils.GenerateReferralCode(referralCodeLength)
	if err != nil {
		return nil, err
	}

	admin := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		Password:     string(hashed),
		Status:       models.UserStatusActive,
		KYCStatus:    models.KYCUnverified,
		IsAdmin:      true,
		ReferralCode: code,
	}
	if err := s.users.Create(ctx, admin, req.Roles...); err != nil {
		return nil, err
	}
	s.logger.Info("admin created", zap.Uint("user_id", admin.ID), zap.Strings("roles", req.Roles))
	return s.users.GetByID(ctx, admin.ID)
}

// AssignRoles replaces the user's roles. Holding any role besides the
// customer role makes the account an admin.
func (s *service) AssignRoles(ctx context.Context, actorID, userID uint, roles []string) (*models.User, error) {
	if actorID == userID {
		return nil, ErrSelfAction
	}
	if len(roles) == 0 {
		return nil, ErrRolesRequired
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	isAdmin := slices.ContainsFunc(roles, func(r string) bool { return r != models.RoleUser })
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("is_admin", isAdmin).Error; err != nil {
		return nil, err
	}
	// SetRoles bumps the token version, so it goes last
	if err := s.users.SetRoles(ctx, userID, roles); err != nil {
		return nil, err
	}
	s.logger.Info("roles assigned", zap.Uint("user_id", userID), zap.Strings("roles", roles), zap.Uint("actor_id", actorID))
	return s.users.GetByID(ctx, userID)
}
