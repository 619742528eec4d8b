package giftcard

import "errors"

var (
	ErrCategoryNotFound      = errors.New("giftcard category not found")
	ErrCategoryExists        = errors.New("giftcard category already exists")
	ErrCategoryInUse         = errors.New("giftcard category still has giftcards")
	ErrGiftcardNotFound      = errors.New("giftcard not found")
	ErrGiftcardInactive      = errors.New("giftcard is not available for trading")
	ErrAmountOutOfRange      = errors.New("amount is outside the allowed range")
	ErrInvalidLimits         = errors.New("max amount must not be below min amount")
	ErrInvalidCharge         = errors.New("charge percent must be at least 0 and below 100")
	ErrCardsRequired         = errors.New("at least one card code or image is required")
	ErrTradeNotFound         = errors.New("giftcard trade not found")
	ErrInvalidStatus         = errors.New("invalid trade status")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrNoteRequired          = errors.New("a note is required when declining")
	ErrInvalidReviewedAmount = errors.New("reviewed amount must be greater than zero and below the submitted amount")
)
