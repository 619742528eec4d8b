package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountBlocked      = errors.New("account is blocked")
	ErrInvalidReferralCode = errors.New("referral code not recognised")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenRevoked        = errors.New("token has been revoked")
	ErrInvalidMFACode      = errors.New("invalid two-factor code")
	ErrMFANotSetup         = errors.New("two-factor authentication has not been set up")
	ErrMFAAlreadyEnabled   = errors.New("two-factor authentication is already enabled")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrSamePassword        = errors.New("new password must differ from the current one")
)
