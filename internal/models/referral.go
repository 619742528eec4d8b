package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const ReferralRewarded = "rewarded"

// Referral records the one-off reward paid to a referrer for a referee's first settled trade.
type Referral struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	ReferrerID     uint            `gorm:"index;not null" json:"referrer_id"`
	RefereeID      uint            `gorm:"uniqueIndex;not null" json:"referee_id"`
	Referee        *User           `gorm:"foreignKey:RefereeID" json:"referee,omitempty"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	TradeReference string          `gorm:"not null" json:"trade_reference"`
	Status         string          `gorm:"not null" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}
