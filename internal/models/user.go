package models

import (
	"time"

	"gorm.io/gorm"
)

// User statuses
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

type User struct {
	gorm.Model
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	Name             string     `gorm:"not null" json:"name"`
	Phone            string     `gorm:"uniqueIndex;not null" json:"phone"`
	Status           string     `gorm:"default:'active'" json:"status"`
	KYCStatus        string     `gorm:"default:'unverified'" json:"kyc_status"`
	ReferralCode     string     `gorm:"uniqueIndex;size:16" json:"referral_code"`
	ReferredByID     *uint      `gorm:"index" json:"referred_by_id,omitempty"`
	IsAdmin          bool       `gorm:"default:false" json:"is_admin"`
	TwoFactorEnabled bool       `gorm:"default:false" json:"two_factor_enabled"`
	TOTPSecret       string     `json:"-"`
	TokenVersion     int        `gorm:"default:1" json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP      string     `json:"-"`
	Roles            []Role     `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// RoleNames flattens the loaded roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Permissions returns the distinct permissions granted by the loaded roles.
func (u *User) Permissions() []string {
	seen := make(map[string]struct{})
	perms := make([]string, 0)
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			perms = append(perms, p.Name)
		}
	}
	return perms
}

func (u *User) IsBlocked() bool {
	return u.Status == UserStatusBlocked
}
