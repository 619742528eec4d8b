package wallet

import (
	"errors"

	"tradedesk/internal/repositories"
)

// Service errors
var (
	ErrWalletNotFound      = repositories.ErrWalletNotFound
	ErrDuplicateReference  = repositories.ErrDuplicateReference
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrMissingReference    = errors.New("ledger reference is required")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWalletLocked        = errors.New("wallet is locked")

	ErrBankAccountNotFound = errors.New("bank account not found")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrBelowMinimum        = errors.New("amount is below the minimum withdrawal")
	ErrKYCRequired         = errors.New("verified KYC is required")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrNoteRequired        = errors.New("a note is required when declining")

	ErrFundingUnavailable = errors.New("card funding is not configured")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrIntentNotFound     = errors.New("funding intent not found")
)
