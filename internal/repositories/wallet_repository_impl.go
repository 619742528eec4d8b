package repositories

import (
	"context"
	"errors"
	"fmt"

	"tradedesk/internal/models"
	"tradedesk/internal/utils/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) WithTx(tx *gorm.DB) WalletRepository {
	return &walletRepository{db: tx}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Wallet{}).Where("user_id = ?", wallet.UserID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check wallet: %w", err)
	}
	if count > 0 {
		return ErrDuplicateWallet
	}
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateWallet
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetForUpdate(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) UpdateBalance(ctx context.Context, walletID uint, balance decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.Wallet{}).Where("id = ?", walletID).Update("balance", balance)
	if result.Error != nil {
		return fmt.Errorf("failed to update balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *walletRepository) UpdateStatus(ctx context.Context, userID uint, status, reason string) error {
	result := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"status": status, "status_reason": reason})
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *walletRepository) List(ctx context.Context, q pagination.Query) ([]models.Wallet, int64, error) {
	db := q.Filter(r.db.WithContext(ctx).Model(&models.Wallet{}))

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wallets: %w", err)
	}
	var wallets []models.Wallet
	if err := q.Page(db).Find(&wallets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, total, nil
}

func (r *walletRepository) CreateEntry(ctx context.Context, entry *models.WalletTransaction) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

func (r *walletRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WalletTransaction{}).
		Where("reference = ?", reference).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check reference: %w", err)
	}
	return count > 0, nil
}

func (r *walletRepository) History(ctx context.Context, userID uint, q pagination.Query) ([]models.WalletTransaction, int64, error) {
	db := q.Filter(r.db.WithContext(ctx).Model(&models.WalletTransaction{}).Where("user_id = ?", userID))

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	var entries []models.WalletTransaction
	if err := q.Page(db).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return entries, total, nil
}

func (r *walletRepository) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Select("COALESCE(SUM(balance), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get total balance: %w", err)
	}
	return row.Total, nil
}

func (r *walletRepository) ExecuteInTransaction(ctx context.Context, fn func(tx *gorm.DB, repo WalletRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, &walletRepository{db: tx})
	})
}
