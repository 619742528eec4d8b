// Command admin_seed creates the built-in roles and permissions and the first
// super admin from ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_PHONE. It is safe to
// run repeatedly.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"tradedesk/internal/config"
	applogger "tradedesk/internal/logger"
	"tradedesk/internal/models"
	"tradedesk/internal/repositories"
	"tradedesk/internal/services/user"
	"tradedesk/internal/services/wallet"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := applogger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminPhone := os.Getenv("ADMIN_PHONE")
	if adminEmail == "" || adminPassword == "" || adminPhone == "" {
		zl.Fatal("ADMIN_EMAIL, ADMIN_PASSWORD, and ADMIN_PHONE must be set in environment")
	}

	db, err := repositories.Open(cfg.Database, zl)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := repositories.Migrate(db); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := repositories.NewRoleRepository(db).EnsureDefaults(ctx); err != nil {
		zl.Fatal("failed to seed roles", zap.Error(err))
	}
	zl.Info("roles and permissions seeded")

	users := repositories.NewUserRepository(db, nil, zl)
	if _, err := users.GetByLogin(ctx, adminEmail); err == nil {
		zl.Info("admin user already exists", zap.String("email", adminEmail))
		return
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		zl.Fatal("admin lookup failed", zap.Error(err))
	}

	wallets := wallet.NewService(wallet.Deps{DB: db, Users: users, Logger: zl}, wallet.Config{Currency: cfg.Wallet.Currency})
	admin, err := user.NewService(db, users, wallets, zl).CreateAdmin(ctx, user.CreateAdminRequest{
		Name:     "Super Admin",
		Email:    adminEmail,
		Phone:    adminPhone,
		Password: adminPassword,
		Roles:    []string{models.RoleSuperAdmin},
	})
	if err != nil {
		zl.Fatal("failed to create admin user", zap.Error(err))
	}
	zl.Info("admin account created", zap.Uint("user_id", admin.ID), zap.String("email", admin.Email))
}
