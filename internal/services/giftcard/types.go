package giftcard

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReferencePrefix = "GCT"
	PayoutSuffix    = "-PAYOUT"
	catalogTTL      = 10 * time.Minute
	product         = "giftcard"
)

type CategoryRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	IconURL string `json:"icon_url" validate:"omitempty,url"`
	Active  *bool  `json:"active"`
}

type GiftcardRequest struct {
	CategoryID    uint            `json:"category_id" validate:"required"`
	Name          string          `json:"name" validate:"required,max=100"`
	Country       string          `json:"country" validate:"max=60"`
	Currency      string          `json:"currency" validate:"required,len=3"`
	CardType      string          `json:"card_type" validate:"required,oneof=physical ecode"`
	Rate          decimal.Decimal `json:"rate" validate:"decimal_gt0"`
	ChargePercent decimal.Decimal `json:"charge_percent" validate:"percent"`
	ChargeCap     decimal.Decimal `json:"charge_cap" validate:"decimal_gte0"`
	MinAmount     decimal.Decimal `json:"min_amount" validate:"decimal_gte0"`
	MaxAmount     decimal.Decimal `json:"max_amount" validate:"decimal_gte0"`
	Active        *bool           `json:"active"`
}

type RateRequest struct {
	Rate decimal.Decimal `json:"rate" validate:"decimal_gt0"`
}

type QuoteRequest struct {
	GiftcardID uint            `json:"giftcard_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	Quantity   int             `json:"quantity" validate:"min=0,max=50"`
}

type SubmitRequest struct {
	GiftcardID uint            `json:"giftcard_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	Quantity   int             `json:"quantity" validate:"min=0,max=50"`
	Cards      []string        `json:"cards" validate:"required,min=1,max=20,dive,required,max=500"`
	Note       string          `json:"note" validate:"max=500"`
}

// ReviewRequest settles or declines a pending trade. ReviewedAmount is the
// per-card value the desk accepts on a partial approval; Rate overrides the
// snapshotted rate.
type ReviewRequest struct {
	Status         string           `json:"status" validate:"required,trade_status"`
	ReviewedAmount *decimal.Decimal `json:"reviewed_amount"`
	Rate           *decimal.Decimal `json:"rate"`
	Note           string           `json:"note" validate:"max=500"`
}
