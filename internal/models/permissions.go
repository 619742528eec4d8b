package models

import "time"

// Role names
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleSupport    = "support"
	RoleUser       = "user"
)

// Permission constants
const (
	// Customer permissions
	PermissionWalletRead  = "wallet:read"
	PermissionWalletWrite = "wallet:write"
	PermissionTradeCreate = "trade:create"
	PermissionKYCSubmit   = "kyc:submit"

	// User management permissions
	PermissionUserRead     = "users:read"
	PermissionUserWrite    = "users:write"
	PermissionAdminsManage = "admins:manage"
	PermissionRolesManage  = "roles:manage"

	// Catalog permissions
	PermissionGiftcardManage = "giftcards:manage"
	PermissionAssetManage    = "assets:manage"

	// Review permissions
	PermissionGiftcardTradeRead   = "giftcard-trades:read"
	PermissionGiftcardTradeReview = "giftcard-trades:review"
	PermissionAssetTradeRead      = "asset-trades:read"
	PermissionAssetTradeReview    = "asset-trades:review"
	PermissionWithdrawalReview    = "withdrawals:review"
	PermissionKYCReview           = "kyc:review"

	// Wallet administration
	PermissionWalletsRead   = "wallets:read"
	PermissionWalletsAdjust = "wallets:adjust"

	PermissionAlertsManage  = "alerts:manage"
	PermissionDashboardRead = "dashboard:read"
)

type Role struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	Name        string       `gorm:"uniqueIndex;not null" json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Permission struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// AllPermissions lists every permission known to the system.
func AllPermissions() []string {
	return []string{
		PermissionWalletRead,
		PermissionWalletWrite,
		PermissionTradeCreate,
		PermissionKYCSubmit,
		PermissionUserRead,
		PermissionUserWrite,
		PermissionAdminsManage,
		PermissionRolesManage,
		PermissionGiftcardManage,
		PermissionAssetManage,
		PermissionGiftcardTradeRead,
		PermissionGiftcardTradeReview,
		PermissionAssetTradeRead,
		PermissionAssetTradeReview,
		PermissionWithdrawalReview,
		PermissionKYCReview,
		PermissionWalletsRead,
		PermissionWalletsAdjust,
		PermissionAlertsManage,
		PermissionDashboardRead,
	}
}

// GetDefaultPermissions returns the seeded permissions for a role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleSuperAdmin:
		return AllPermissions()
	case RoleAdmin:
		return []string{
			PermissionUserRead,
			PermissionUserWrite,
			PermissionGiftcardManage,
			PermissionAssetManage,
			PermissionGiftcardTradeRead,
			PermissionGiftcardTradeReview,
			PermissionAssetTradeRead,
			PermissionAssetTradeReview,
			PermissionWithdrawalReview,
			PermissionKYCReview,
			PermissionWalletsRead,
			PermissionWalletsAdjust,
			PermissionAlertsManage,
			PermissionDashboardRead,
		}
	case RoleSupport:
		return []string{
			PermissionUserRead,
			PermissionGiftcardTradeRead,
			PermissionAssetTradeRead,
			PermissionWalletsRead,
			PermissionDashboardRead,
		}
	case RoleUser:
		return []string{
			PermissionWalletRead,
			PermissionWalletWrite,
			PermissionTradeCreate,
			PermissionKYCSubmit,
		}
	default:
		return []string{}
	}
}

// DefaultRoles are created by the seed command.
var DefaultRoles = map[string]string{
	RoleSuperAdmin: "Full access, including admin and role management",
	RoleAdmin:      "Back-office operations",
	RoleSupport:    "Read-only support access",
	RoleUser:       "Customer",
}
