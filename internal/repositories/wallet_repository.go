package repositories

import (
	"context"
	"errors"

	"tradedesk/internal/models"
	"tradedesk/internal/utils/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrDuplicateWallet    = errors.New("wallet already exists")
	ErrDuplicateReference = errors.New("ledger reference already used")
)

// WalletRepository defines the interface for wallet-related database operations
type WalletRepository interface {
	// Core wallet operations
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	// GetForUpdate locks the wallet row until the surrounding transaction ends
	GetForUpdate(ctx context.Context, userID uint) (*models.Wallet, error)
	UpdateBalance(ctx context.Context, walletID uint, balance decimal.Decimal) error
	UpdateStatus(ctx context.Context, userID uint, status, reason string) error
	List(ctx context.Context, q pagination.Query) ([]models.Wallet, int64, error)

	// Ledger operations
	CreateEntry(ctx context.Context, entry *models.WalletTransaction) error
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	History(ctx context.Context, userID uint, q pagination.Query) ([]models.WalletTransaction, int64, error)

	// Analytics and reporting
	TotalBalance(ctx context.Context) (decimal.Decimal, error)

	// Batch operations
	ExecuteInTransaction(ctx context.Context, fn func(tx *gorm.DB, repo WalletRepository) error) error
	WithTx(tx *gorm.DB) WalletRepository
}
