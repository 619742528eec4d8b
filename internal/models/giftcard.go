package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Card types
const (
	CardTypePhysical = "physical"
	CardTypeECode    = "ecode"
)

type GiftcardCategory struct {
	gorm.Model
	Name      string     `gorm:"uniqueIndex;not null" json:"name"`
	IconURL   string     `json:"icon_url"`
	Active    bool       `json:"active"`
	Giftcards []Giftcard `gorm:"foreignKey:CategoryID" json:"giftcards,omitempty"`
}

type Giftcard struct {
	gorm.Model
	CategoryID    uint              `gorm:"index;not null" json:"category_id"`
	Category      *GiftcardCategory `json:"category,omitempty"`
	Name          string            `gorm:"not null" json:"name"`
	Country       string            `json:"country"`
	Currency      string            `gorm:"not null" json:"currency"`
	CardType      string            `gorm:"not null" json:"card_type"`
	Rate          decimal.Decimal   `gorm:"type:decimal(20,2);not null" json:"rate"`
	ChargePercent decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:0" json:"charge_percent"`
	ChargeCap     decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0" json:"charge_cap"`
	MinAmount     decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0" json:"min_amount"`
	MaxAmount     decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0" json:"max_amount"`
	Active        bool              `json:"active"`
}

// GiftcardTransaction is a user's sale of one or more cards to the desk.
type GiftcardTransaction struct {
	ID             uint                `gorm:"primarykey" json:"id"`
	Reference      string              `gorm:"uniqueIndex;not null" json:"reference"`
	UserID         uint                `gorm:"index;not null" json:"user_id"`
	User           *User               `json:"user,omitempty"`
	GiftcardID     uint                `gorm:"index;not null" json:"giftcard_id"`
	Giftcard       *Giftcard           `json:"giftcard,omitempty"`
	CardType       string              `gorm:"not null" json:"card_type"`
	Amount         decimal.Decimal     `gorm:"type:decimal(20,2);not null" json:"amount"`
	Quantity       int                 `gorm:"not null;default:1" json:"quantity"`
	Rate           decimal.Decimal     `gorm:"type:decimal(20,2);not null" json:"rate"`
	ChargePercent  decimal.Decimal     `gorm:"type:decimal(5,2);not null" json:"charge_percent"`
	ChargeCap      decimal.Decimal     `gorm:"type:decimal(20,2);not null;default:0" json:"charge_cap"`
	Gross          decimal.Decimal     `gorm:"type:decimal(20,2);not null" json:"gross"`
	ServiceCharge  decimal.Decimal     `gorm:"type:decimal(20,2);not null" json:"service_charge"`
	Payable        decimal.Decimal     `gorm:"type:decimal(20,2);not null" json:"payable"`
	ReviewedAmount decimal.NullDecimal `gorm:"type:decimal(20,2)" json:"reviewed_amount"`
	PaidAmount     decimal.Decimal     `gorm:"type:decimal(20,2);not null;default:0" json:"paid_amount"`
	Status         string              `gorm:"index;not null;default:'pending'" json:"status"`
	Cards          Strings             `gorm:"type:text" json:"cards"`
	UserNote       string              `json:"user_note,omitempty"`
	ReviewNote     string              `json:"review_note,omitempty"`
	ReviewedBy     *uint               `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time          `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
