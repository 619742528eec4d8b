package wallet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradedesk/internal/models"
	"tradedesk/internal/utils/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *service) AddBankAccount(ctx context.Context, userID uint, req BankAccountRequest) (*models.BankAccount, error) {
	account := &models.BankAccount{
		UserID:        userID,
		BankName:      strings.TrimSpace(req.BankName),
		BankCode:      strings.TrimSpace(req.BankCode),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		AccountName:   strings.TrimSpace(req.AccountName),
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to add bank account: %w", err)
	}
	return account, nil
}

func (s *service) ListBankAccounts(ctx context.Context, userID uint) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	return accounts, nil
}

func (s *service) DeleteBankAccount(ctx context.Context, userID, id uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.BankAccount{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete bank account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBankAccountNotFound
	}
	return nil
}

// RequestWithdrawal holds the funds immediately; a decline refunds them.
func (s *service) RequestWithdrawal(ctx context.Context, userID uint, req WithdrawalRequest) (*models.Withdrawal, error) {
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if amount.LessThan(s.config.MinWithdrawal) {
		return nil, fmt.Errorf("%w of %s", ErrBelowMinimum, s.config.MinWithdrawal.StringFixed(2))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.KYCStatus != models.KYCVerified {
		return nil, ErrKYCRequired
	}

	var account models.BankAccount
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", req.BankAccountID, userID).First(&account).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrBankAccountNotFound
		}
		return nil, err
	}

	withdrawal := &models.Withdrawal{
		Reference:     WithdrawalPrefix + "-" + uuid.NewString(),
		UserID:        userID,
		BankAccountID: account.ID,
		Amount:        amount,
		Status:        models.WithdrawalPending,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(withdrawal).Error; err != nil {
			return fmt.Errorf("failed to create withdrawal: %w", err)
		}
		withdrawal.Reference = fmt.Sprintf("%s-%d", WithdrawalPrefix, withdrawal.ID)
		if err := tx.Model(withdrawal).Update("reference", withdrawal.Reference).Error; err != nil {
			return err
		}
		_, err := s.Debit(ctx, tx, Operation{
			UserID:    userID,
			Amount:    amount,
			Reference: withdrawal.Reference,
			Source:    models.SourceWithdrawal,
			Narration: "Withdrawal to " + account.BankName + " " + maskAccount(account.AccountNumber),
			Metadata:  map[string]interface{}{"withdrawal_id": withdrawal.ID},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Invalidate(ctx, userID)

	withdrawal.BankAccount = &account
	s.logger.Info("withdrawal requested",
		zap.Uint("user_id", userID),
		zap.String("reference", withdrawal.Reference),
		zap.String("amount", amount.StringFixed(2)))
	return withdrawal, nil
}

func (s *service) ListWithdrawals(ctx context.Context, q pagination.Query) ([]models.Withdrawal, int64, error) {
	db := q.Filter(s.db.WithContext(ctx).Model(&models.Withdrawal{}))

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count withdrawals: %w", err)
	}
	var items []models.Withdrawal
	if err := q.Page(db).Preload("BankAccount").Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return items, total, nil
}

func (s *service) ReviewWithdrawal(ctx context.Context, adminID, id uint, req ReviewWithdrawalRequest) (*models.Withdrawal, error) {
	if req.Status != models.WithdrawalTransferred && req.Status != models.WithdrawalDeclined {
		return nil, ErrInvalidTransition
	}
	if req.Status == models.WithdrawalDeclined && strings.TrimSpace(req.Note) == "" {
		return nil, ErrNoteRequired
	}

	var withdrawal models.Withdrawal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&withdrawal, id).Error; err != nil {
			if isNotFound(err) {
				return ErrWithdrawalNotFound
			}
			return err
		}
		if withdrawal.Status != models.WithdrawalPending {
			return fmt.Errorf("%w: withdrawal is %s", ErrInvalidTransition, withdrawal.Status)
		}

		now := time.Now()
		withdrawal.Status = req.Status
		withdrawal.Note = strings.TrimSpace(req.Note)
		withdrawal.ReviewedBy = &adminID
		withdrawal.ReviewedAt = &now
		if err := tx.Model(&withdrawal).Select("status", "note", "reviewed_by", "reviewed_at").Updates(&withdrawal).Error; err != nil {
			return fmt.Errorf("failed to update withdrawal: %w", err)
		}

		if req.Status == models.WithdrawalDeclined {
			_, err := s.Credit(ctx, tx, Operation{
				UserID:      withdrawal.UserID,
				Amount:      withdrawal.Amount,
				Reference:   withdrawal.Reference + RefundSuffix,
				Source:      models.SourceWithdrawal,
				Narration:   "Withdrawal declined: " + withdrawal.Note,
				Metadata:    map[string]interface{}{"withdrawal_id": withdrawal.ID},
				AllowLocked: true,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Invalidate(ctx, withdrawal.UserID)

	title := "Withdrawal sent"
	body := fmt.Sprintf("Your withdrawal %s of %s %s has been transferred.", withdrawal.Reference, withdrawal.Amount.StringFixed(2), s.config.Currency)
	if withdrawal.Status == models.WithdrawalDeclined {
		title = "Withdrawal declined"
		body = fmt.Sprintf("Your withdrawal %s was declined and refunded: %s", withdrawal.Reference, withdrawal.Note)
	}
	s.notifier.Notify(ctx, withdrawal.UserID, models.NotificationWithdrawal, title, body)
	return &withdrawal, nil
}

func maskAccount(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
