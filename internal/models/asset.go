package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Asset is a crypto asset the desk buys and sells.
type Asset struct {
	gorm.Model
	Code           string          `gorm:"uniqueIndex;not null" json:"code"`
	Name           string          `gorm:"not null" json:"name"`
	Network        string          `json:"network"`
	BuyRate        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"buy_rate"`
	SellRate       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"sell_rate"`
	ChargePercent  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"charge_percent"`
	ChargeCap      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"charge_cap"`
	MinAmount      decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0" json:"min_amount"`
	MaxAmount      decimal.Decimal `gorm:"type:decimal(24,8);not null;default:0" json:"max_amount"`
	DepositAddress string          `json:"deposit_address"`
	Active         bool            `json:"active"`
}

// RateFor picks the desk's rate for a trade side.
func (a *Asset) RateFor(side string) decimal.Decimal {
	if side == SideBuy {
		return a.BuyRate
	}
	return a.SellRate
}

type AssetTransaction struct {
	ID             uint                `gorm:"primarykey" json:"id"`
	Reference      string              `gorm:"uniqueIndex;not null" json:"reference"`
	UserID         uint                `gorm:"index;not null" json:"user_id"`
	User           *User               `json:"user,omitempty"`
	AssetID        uint                `gorm:"index;not null" json:"asset_id"`
	Asset          *Asset              `json:"asset,omitempty"`
	Side           string              `gorm:"index;not null" json:"side"`
	Amount         decimal.Decimal     `gorm:"type:decimal(24,8);not null" json:"amount"`
	Rate           decimal.Decimal     `gorm:"type:decimal(20,2);not null" json:"rate"`
	ChargePercent  decimal.Decimal     `gorm:"type:decimal(5,2);not null" json:"charge_percent"`
	ChargeCap      decimal.Decimal     `gorm:"type:decimal(20,2);not null;default:0" json:"charge_cap"`
	Gross          decimal.Decimal     `gorm:"type:decimal(20,2);not null" json:"gross"`
	ServiceCharge  decimal.Decimal     `gorm:"type:decimal(20,2);not null" json:"service_charge"`
	Payable        decimal.Decimal     `gorm:"type:decimal(20,2);not null" json:"payable"`
	ReviewedAmount decimal.NullDecimal `gorm:"type:decimal(24,8)" json:"reviewed_amount"`
	PaidAmount     decimal.Decimal     `gorm:"type:decimal(20,2);not null;default:0" json:"paid_amount"`
	Status         string              `gorm:"index;not null;default:'pending'" json:"status"`
	WalletAddress  string              `json:"wallet_address,omitempty"`
	TxHash         string              `json:"tx_hash,omitempty"`
	ProofURL       string              `json:"proof_url,omitempty"`
	ReviewNote     string              `json:"review_note,omitempty"`
	ReviewedBy     *uint               `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time          `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
