package auth

import (
	"tradedesk/internal/models"
	"tradedesk/internal/utils"
)

const (
	referralCodeLength = 8
	referralCodeTries  = 5
	totpIssuer         = "Tradedesk"
)

type RegisterRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Phone        string `json:"phone" validate:"required,numeric,min=10,max=15"`
	Password     string `json:"password" validate:"required,strong_password"`
	ReferralCode string `json:"referral_code" validate:"omitempty,max=16"`
}

// LoginRequest accepts an email address or a phone number as Login.
type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type VerifyMFARequest struct {
	MFAToken string `json:"mfa_token" validate:"required"`
	Code     string `json:"code" validate:"required,numeric,len=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

type EnableMFARequest struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

// Session is the outcome of a login. When MFARequired is set the client must
// exchange MFAToken and a TOTP code for tokens.
type Session struct {
	User        *models.User     `json:"user,omitempty"`
	Tokens      *utils.TokenPair `json:"tokens,omitempty"`
	MFARequired bool             `json:"mfa_required"`
	MFAToken    string           `json:"mfa_token,omitempty"`
}

// MFASetup is shown once so the user can add the secret to an authenticator app.
type MFASetup struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauth_url"`
}
