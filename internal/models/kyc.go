package models

import (
	"time"

	"gorm.io/gorm"
)

// KYC statuses, shared by KYCVerification.Status and User.KYCStatus
const (
	KYCUnverified = "unverified"
	KYCPending    = "pending"
	KYCVerified   = "verified"
	KYCRejected   = "rejected"
)

type KYCVerification struct {
	gorm.Model
	UserID         uint       `gorm:"index;not null" json:"user_id"`
	User           *User      `json:"user,omitempty"`
	DocumentType   string     `gorm:"not null" json:"document_type"`
	DocumentNumber string     `gorm:"not null" json:"document_number"`
	DocumentURL    string     `json:"document_url"`
	SelfieURL      string     `json:"selfie_url"`
	Status         string     `gorm:"index;default:'pending'" json:"status"`
	Reason         string     `json:"reason,omitempty"`
	ReviewedBy     *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
}
