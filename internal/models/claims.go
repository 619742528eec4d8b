package models

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes
const (
	TokenPurposeAccess  = "access"
	TokenPurposeRefresh = "refresh"
	TokenPurposeMFA     = "mfa"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	Permissions  []string `json:"permissions"`
	IsAdmin      bool     `json:"is_admin"`
	TokenVersion int      `json:"token_version"`
	Purpose      string   `json:"purpose"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	return slices.Contains(c.Permissions, permission)
}

func (c *UserClaims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}
