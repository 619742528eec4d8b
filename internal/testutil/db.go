// Package testutil wires in-memory infrastructure for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"tradedesk/internal/config"
	"tradedesk/internal/models"
	"tradedesk/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database with the default roles seeded.
// A single connection keeps every query on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repositories.Migrate(db))
	require.NoError(t, repositories.NewRoleRepository(db).EnsureDefaults(context.Background()))
	return db
}

// Config returns settings suitable for service tests.
func Config() *config.Config {
	return &config.Config{
		Env: "test",
		JWT: config.JWTConfig{
			Secret:        "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    time.Hour,
		},
		Wallet: config.WalletConfig{
			Currency:      "NGN",
			MinWithdrawal: decimal.NewFromInt(1000),
		},
		Referral: config.ReferralConfig{
			Reward:   decimal.NewFromInt(500),
			MinTrade: decimal.NewFromInt(5000),
		},
		Mail:          config.MailConfig{Provider: "log", From: "test@tradedesk.local", FromName: "Tradedesk"},
		AlertSchedule: "@every 1m",
	}
}

// CreateUser inserts an active customer with a wallet.
func CreateUser(t *testing.T, db *gorm.DB, email, phone string) *models.User {
	t.Helper()
	users := repositories.NewUserRepository(db, nil, nil)
	user := &models.User{
		Email:        email,
		Phone:        phone,
		Name:         "Test " + phone,
		Password:     "not-a-real-hash",
		Status:       models.UserStatusActive,
		KYCStatus:    models.KYCUnverified,
		ReferralCode: "R" + phone,
		TokenVersion: 1,
	}
	require.NoError(t, users.Create(context.Background(), user, models.RoleUser))
	wallet := &models.Wallet{UserID: user.ID, Currency: "NGN", Status: models.WalletStatusActive}
	require.NoError(t, repositories.NewWalletRepository(db).Create(context.Background(), wallet))
	return user
}

// SetBalance writes a starting balance directly, bypassing the ledger.
func SetBalance(t *testing.T, db *gorm.DB, userID uint, amount string) {
	t.Helper()
	require.NoError(t, db.Model(&models.Wallet{}).Where("user_id = ?", userID).
		Update("balance", decimal.RequireFromString(amount)).Error)
}

// Balance reads the stored wallet balance.
func Balance(t *testing.T, db *gorm.DB, userID uint) decimal.Decimal {
	t.Helper()
	var w models.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&w).Error)
	return w.Balance
}
