package models

import "time"

// Alert audiences
const (
	AudienceAll      = "all"
	AudienceSelected = "selected"
)

// Alert statuses
const (
	AlertPending    = "pending"
	AlertDispatched = "dispatched"
	AlertCancelled  = "cancelled"
)

// Notification kinds
const (
	NotificationTrade      = "trade"
	NotificationWithdrawal = "withdrawal"
	NotificationKYC        = "kyc"
	NotificationReferral   = "referral"
	NotificationFunding    = "funding"
	NotificationAlert      = "alert"
)

// Alert is a message broadcast by the back office to a set of users.
type Alert struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	Title          string     `gorm:"not null" json:"title"`
	Body           string     `gorm:"type:text;not null" json:"body"`
	Audience       string     `gorm:"not null" json:"audience"`
	UserIDs        UintList   `gorm:"type:text" json:"user_ids,omitempty"`
	ScheduledAt    *time.Time `gorm:"index" json:"scheduled_at,omitempty"`
	Status         string     `gorm:"index;not null;default:'pending'" json:"status"`
	RecipientCount int        `json:"recipient_count"`
	DispatchedAt   *time.Time `json:"dispatched_at,omitempty"`
	CreatedBy      uint       `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Notification is an in-app inbox entry.
type Notification struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Kind      string     `gorm:"not null" json:"kind"`
	Title     string     `gorm:"not null" json:"title"`
	Body      string     `gorm:"type:text" json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}
