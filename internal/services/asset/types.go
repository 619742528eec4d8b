package asset

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReferencePrefix = "AST"
	DebitSuffix     = "-DEBIT"
	PayoutSuffix    = "-PAYOUT"
	RefundSuffix    = "-REFUND"
	// AssetPlaces is the precision of asset quantities.
	AssetPlaces = 8
	catalogTTL  = 10 * time.Minute
	product     = "asset"
)

type AssetRequest struct {
	Code           string          `json:"code" validate:"required,alphanum,max=10"`
	Name           string          `json:"name" validate:"required,max=100"`
	Network        string          `json:"network" validate:"max=50"`
	BuyRate        decimal.Decimal `json:"buy_rate" validate:"decimal_gt0"`
	SellRate       decimal.Decimal `json:"sell_rate" validate:"decimal_gt0"`
	ChargePercent  decimal.Decimal `json:"charge_percent" validate:"percent"`
	ChargeCap      decimal.Decimal `json:"charge_cap" validate:"decimal_gte0"`
	MinAmount      decimal.Decimal `json:"min_amount" validate:"decimal_gte0"`
	MaxAmount      decimal.Decimal `json:"max_amount" validate:"decimal_gte0"`
	DepositAddress string          `json:"deposit_address" validate:"max=255"`
	Active         *bool           `json:"active"`
}

type RatesRequest struct {
	BuyRate  decimal.Decimal `json:"buy_rate" validate:"decimal_gt0"`
	SellRate decimal.Decimal `json:"sell_rate" validate:"decimal_gt0"`
}

type QuoteRequest struct {
	AssetID uint            `json:"asset_id" validate:"required"`
	Side    string          `json:"side" validate:"required,oneof=buy sell"`
	Amount  decimal.Decimal `json:"amount" validate:"decimal_gt0"`
}

type BuyRequest struct {
	AssetID       uint            `json:"asset_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	WalletAddress string          `json:"wallet_address" validate:"required,max=255"`
}

type SellRequest struct {
	AssetID  uint            `json:"asset_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	TxHash   string          `json:"tx_hash" validate:"max=255"`
	ProofURL string          `json:"proof_url" validate:"omitempty,url"`
}

// ReviewRequest finalises a trade. Buys take transferred with the TxHash of
// the outgoing transfer, or declined. Sells review like giftcards, with
// ReviewedAmount in asset units.
type ReviewRequest struct {
	Status         string           `json:"status" validate:"required,trade_status"`
	ReviewedAmount *decimal.Decimal `json:"reviewed_amount"`
	Rate           *decimal.Decimal `json:"rate"`
	TxHash         string           `json:"tx_hash" validate:"max=255"`
	Note           string           `json:"note" validate:"max=500"`
}
