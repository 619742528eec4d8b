package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet statuses
const (
	WalletStatusActive = "active"
	WalletStatusLocked = "locked"
)

// Ledger entry types
const (
	EntryCredit = "credit"
	EntryDebit  = "debit"
)

// Ledger sources
const (
	SourceGiftcardTrade = "giftcard_trade"
	SourceAssetTrade    = "asset_trade"
	SourceReferral      = "referral"
	SourceWithdrawal    = "withdrawal"
	SourceFunding       = "funding"
	SourceAdjustment    = "adjustment"
)

// Withdrawal statuses
const (
	WithdrawalPending     = "pending"
	WithdrawalTransferred = "transferred"
	WithdrawalDeclined    = "declined"
)

// Funding statuses
const (
	FundingPending   = "pending"
	FundingSucceeded = "succeeded"
	FundingFailed    = "failed"
)

type Wallet struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	UserID       uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	Currency     string          `gorm:"default:'NGN'" json:"currency"`
	Status       string          `gorm:"default:'active'" json:"status"`
	StatusReason string          `gorm:"default:''" json:"status_reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Balances only move through the ledger
	w.Balance = decimal.Zero
	return nil
}

// WalletTransaction is one ledger row. Every balance change writes exactly one.
type WalletTransaction struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	WalletID      uint            `gorm:"index;not null" json:"wallet_id"`
	UserID        uint            `gorm:"index;not null" json:"user_id"`
	Type          string          `gorm:"not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"balance_after"`
	Reference     string          `gorm:"uniqueIndex;not null" json:"reference"`
	Source        string          `gorm:"index" json:"source"`
	Narration     string          `json:"narration"`
	Metadata      JSON            `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type BankAccount struct {
	gorm.Model
	UserID        uint   `gorm:"index;not null" json:"user_id"`
	BankName      string `gorm:"not null" json:"bank_name"`
	BankCode      string `gorm:"not null" json:"bank_code"`
	AccountNumber string `gorm:"not null" json:"account_number"`
	AccountName   string `gorm:"not null" json:"account_name"`
}

type Withdrawal struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Reference     string          `gorm:"uniqueIndex;not null" json:"reference"`
	UserID        uint            `gorm:"index;not null" json:"user_id"`
	BankAccountID uint            `gorm:"not null" json:"bank_account_id"`
	BankAccount   *BankAccount    `json:"bank_account,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Status        string          `gorm:"index;not null;default:'pending'" json:"status"`
	Note          string          `json:"note,omitempty"`
	ReviewedBy    *uint           `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type FundingIntent struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"index;not null" json:"user_id"`
	Provider  string          `gorm:"not null" json:"provider"`
	IntentID  string          `gorm:"uniqueIndex;not null" json:"intent_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency  string          `gorm:"not null" json:"currency"`
	Status    string          `gorm:"index;not null;default:'pending'" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
