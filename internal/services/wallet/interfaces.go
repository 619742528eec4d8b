package wallet

import (
	"context"

	"tradedesk/internal/models"
	"tradedesk/internal/utils/pagination"

	"github.com/stripe/stripe-go/v72"
	"gorm.io/gorm"
)

// Service defines the main wallet service interface
type Service interface {
	// Core wallet operations
	CreateWallet(ctx context.Context, tx *gorm.DB, userID uint) (*models.Wallet, error)
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	History(ctx context.Context, userID uint, q pagination.Query) ([]models.WalletTransaction, int64, error)

	// Ledger postings. A non-nil tx joins the caller's transaction.
	Post(ctx context.Context, tx *gorm.DB, op Operation) (*models.WalletTransaction, error)
	Credit(ctx context.Context, tx *gorm.DB, op Operation) (*models.WalletTransaction, error)
	Debit(ctx context.Context, tx *gorm.DB, op Operation) (*models.WalletTransaction, error)
	// Invalidate drops the cached wallet once the caller's transaction has committed
	Invalidate(ctx context.Context, userID uint)

	// Back office
	ListWallets(ctx context.Context, q pagination.Query) ([]models.Wallet, int64, error)
	AdminAdjust(ctx context.Context, adminID, userID uint, req AdjustRequest) (*models.WalletTransaction, error)
	Lock(ctx context.Context, userID uint, reason string) error
	Unlock(ctx context.Context, userID uint) error

	// Bank accounts
	AddBankAccount(ctx context.Context, userID uint, req BankAccountRequest) (*models.BankAccount, error)
	ListBankAccounts(ctx context.Context, userID uint) ([]models.BankAccount, error)
	DeleteBankAccount(ctx context.Context, userID, id uint) error

	// Withdrawals
	RequestWithdrawal(ctx context.Context, userID uint, req WithdrawalRequest) (*models.Withdrawal, error)
	ListWithdrawals(ctx context.Context, q pagination.Query) ([]models.Withdrawal, int64, error)
	ReviewWithdrawal(ctx context.Context, adminID, id uint, req ReviewWithdrawalRequest) (*models.Withdrawal, error)

	// Card funding
	StartFunding(ctx context.Context, userID uint, amount FundingRequest) (*FundingSession, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	HandleEvent(ctx context.Context, event stripe.Event) error
}

// PaymentIntents is the slice of the Stripe client used for funding.
type PaymentIntents interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}
