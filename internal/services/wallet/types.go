package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation is one ledger posting.
type Operation struct {
	UserID    uint
	Type      string
	Amount    decimal.Decimal
	Reference string
	Source    string
	Narration string
	Metadata  map[string]interface{}
	// AllowLocked lets refunds and back-office adjustments through a locked wallet
	AllowLocked bool
}

// Config holds configuration for wallet operations
type Config struct {
	Currency            string
	MinWithdrawal       decimal.Decimal
	StripeWebhookSecret string
}

type AdjustRequest struct {
	Type      string          `json:"type" validate:"required,oneof=credit debit"`
	Amount    decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	Narration string          `json:"narration" validate:"required,max=255"`
}

type LockRequest struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

type BankAccountRequest struct {
	BankName      string `json:"bank_name" validate:"required,max=100"`
	BankCode      string `json:"bank_code" validate:"required,max=20"`
	AccountNumber string `json:"account_number" validate:"required,numeric,min=6,max=20"`
	AccountName   string `json:"account_name" validate:"required,max=100"`
}

type WithdrawalRequest struct {
	BankAccountID uint            `json:"bank_account_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"decimal_gt0"`
}

type ReviewWithdrawalRequest struct {
	Status string `json:"status" validate:"required,oneof=transferred declined"`
	Note   string `json:"note" validate:"max=500"`
}

type FundingRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"decimal_gt0"`
}

// FundingSession is returned to the client to confirm the card payment.
type FundingSession struct {
	IntentID     string          `json:"intent_id"`
	ClientSecret string          `json:"client_secret"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	RecordOperation(entryType, source, result string, amount decimal.Decimal, duration time.Duration)
}
