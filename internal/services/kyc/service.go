// Package kyc handles identity verification submissions and their review.
package kyc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradedesk/internal/models"
	"tradedesk/internal/services/notification"
	"tradedesk/internal/utils/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyVerified      = errors.New("user is already verified")
	ErrSubmissionPending    = errors.New("a verification is already pending review")
	ErrVerificationNotFound = errors.New("verification not found")
	ErrInvalidTransition    = errors.New("verification has already been reviewed")
	ErrInvalidStatus        = errors.New("status must be verified or rejected")
	ErrReasonRequired       = errors.New("a reason is required when rejecting")
)

type SubmitRequest struct {
	DocumentType   string `json:"document_type" validate:"required,oneof=bvn nin passport drivers_license"`
	DocumentNumber string `json:"document_number" validate:"required,alphanum,min=5,max=30"`
	DocumentURL    string `json:"document_url" validate:"omitempty,url"`
	SelfieURL      string `json:"selfie_url" validate:"omitempty,url"`
}

type ReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=verified rejected"`
	Reason string `json:"reason" validate:"max=500"`
}

// StatusView is the user's verification state and their latest submission.
type StatusView struct {
	Status string                  `json:"status"`
	Latest *models.KYCVerification `json:"latest,omitempty"`
}

type Service interface {
	Submit(ctx context.Context, userID uint, req SubmitRequest) (*models.KYCVerification, error)
	Review(ctx context.Context, adminID, id uint, req ReviewRequest) (*models.KYCVerification, error)
	Status(ctx context.Context, userID uint) (*StatusView, error)
	Get(ctx context.Context, id uint) (*models.KYCVerification, error)
	List(ctx context.Context, q pagination.Query) ([]models.KYCVerification, int64, error)
}

type service struct {
	db       *gorm.DB
	notifier notification.Notifier
	logger   *zap.Logger
}

func NewService(db *gorm.DB, notifier notification.Notifier, logger *zap.Logger) Service {
	if notifier == nil {
		notifier = notification.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{db: db, notifier: notifier, logger: logger}
}

func (s *service) Submit(ctx context.Context, userID uint, req SubmitRequest) (*models.KYCVerification, error) {
	var kyc *models.KYCVerification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id", "kyc_status").First(&user, userID).Error; err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		switch user.KYCStatus {
		case models.KYCVerified:
			return ErrAlreadyVerified
		case models.KYCPending:
			return ErrSubmissionPending
		}

		kyc = &models.KYCVerification{
			UserID:         userID,
			DocumentType:   req.DocumentType,
			DocumentNumber: strings.TrimSpace(req.DocumentNumber),
			DocumentURL:    req.DocumentURL,
			SelfieURL:      req.SelfieURL,
			Status:         models.KYCPending,
		}
		if err := tx.Create(kyc).Error; err != nil {
			return fmt.Errorf("create verification: %w", err)
		}
		return tx.Model(&user).Update("kyc_status", models.KYCPending).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("kyc submitted", zap.Uint("user_id", userID), zap.String("document_type", req.DocumentType))
	return kyc, nil
}

func (s *service) Review(ctx context.Context, adminID, id uint, req ReviewRequest) (*models.KYCVerification, error) {
	if req.Status != models.KYCVerified && req.Status != models.KYCRejected {
		return nil, ErrInvalidStatus
	}
	reason := strings.TrimSpace(req.Reason)
	if req.Status == models.KYCRejected && reason == "" {
		return nil, ErrReasonRequired
	}

	var kyc models.KYCVerification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&kyc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVerificationNotFound
			}
			return err
		}
		if kyc.Status != models.KYCPending {
			return fmt.Errorf("%w: %s", ErrInvalidTransition, kyc.Status)
		}

		now := time.Now()
		kyc.Status = req.Status
		kyc.Reason = reason
		kyc.ReviewedBy = &adminID
		kyc.ReviewedAt = &now
		if err := tx.Model(&kyc).Select("status", "reason", "reviewed_by", "reviewed_at").Updates(&kyc).Error; err != nil {
			return fmt.Errorf("update verification: %w", err)
		}
		return tx.Model(&models.User{}).Where("id = ?", kyc.UserID).Update("kyc_status", req.Status).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("kyc reviewed", zap.Uint("kyc_id", id), zap.String("status", kyc.Status), zap.Uint("admin_id", adminID))
	if kyc.Status == models.KYCVerified {
		s.notifier.Notify(ctx, kyc.UserID, models.NotificationKYC, "Verification approved",
			"Your identity has been verified. Withdrawals are now enabled.")
	} else {
		s.notifier.Notify(ctx, kyc.UserID, models.NotificationKYC, "Verification rejected",
			"Your verification was rejected: "+kyc.Reason)
	}
	return &kyc, nil
}

func (s *service) Status(ctx context.Context, userID uint) (*StatusView, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "kyc_status").First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	view := &StatusView{Status: user.KYCStatus}

	var latest models.KYCVerification
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").First(&latest).Error
	switch {
	case err == nil:
		view.Latest = &latest
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return view, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.KYCVerification, error) {
	var kyc models.KYCVerification
	if err := s.db.WithContext(ctx).Preload("User").First(&kyc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}
	return &kyc, nil
}

func (s *service) List(ctx context.Context, q pagination.Query) ([]models.KYCVerification, int64, error) {
	db := q.Filter(s.db.WithContext(ctx).Model(&models.KYCVerification{}))

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.KYCVerification
	if err := q.Page(db).Preload("User").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
