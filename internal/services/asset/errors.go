package asset

import "errors"

var (
	ErrAssetNotFound         = errors.New("asset not found")
	ErrAssetExists           = errors.New("asset code already exists")
	ErrAssetInactive         = errors.New("asset is not available for trading")
	ErrInvalidSide           = errors.New("side must be buy or sell")
	ErrAmountOutOfRange      = errors.New("amount is outside the allowed range")
	ErrInvalidLimits         = errors.New("max amount must not be below min amount")
	ErrInvalidCharge         = errors.New("charge percent must be at least 0 and below 100")
	ErrAddressRequired       = errors.New("a receiving wallet address is required")
	ErrProofRequired         = errors.New("a transaction hash or proof of transfer is required")
	ErrTxHashRequired        = errors.New("the outgoing transaction hash is required")
	ErrTradeNotFound         = errors.New("asset trade not found")
	ErrInvalidStatus         = errors.New("invalid trade status")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrNoteRequired          = errors.New("a note is required when declining")
	ErrInvalidReviewedAmount = errors.New("reviewed amount must be greater than zero and below the submitted amount")
)
