// Package routes wires services into handlers and mounts them on the
// Fiber app, with the authentication and permission checks per route.
package routes

import (
	"tradedesk/internal/config"
	"tradedesk/internal/handlers"
	"tradedesk/internal/middleware"
	"tradedesk/internal/models"
	"tradedesk/internal/repositories"
	"tradedesk/internal/repositories/cache"
	"tradedesk/internal/services/alert"
	"tradedesk/internal/services/asset"
	"tradedesk/internal/services/auth"
	"tradedesk/internal/services/dashboard"
	"tradedesk/internal/services/giftcard"
	"tradedesk/internal/services/kyc"
	"tradedesk/internal/services/notification"
	"tradedesk/internal/services/rbac"
	"tradedesk/internal/services/referral"
	"tradedesk/internal/services/user"
	"tradedesk/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const Version = "1.0.0"

// Deps is the infrastructure the services are built on. Intents may be nil,
// which disables card funding.
type Deps struct {
	DB      *gorm.DB
	Cache   cache.Store
	Mailer  notification.Mailer
	Intents wallet.PaymentIntents
	Config  *config.Config
	Logger  *zap.Logger
}

// Services holds every domain service of the application.
type Services struct {
	Users         repositories.UserRepository
	Auth          auth.Service
	User          user.Service
	RBAC          rbac.Service
	Wallet        wallet.Service
	Notifications notification.Service
	Referrals     referral.Service
	Giftcards     giftcard.Service
	Assets        asset.Service
	KYC           kyc.Service
	Alerts        alert.Service
	Dashboard     dashboard.Service
}

// NewServices builds the services in dependency order.
func NewServices(d Deps) *Services {
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Mailer == nil {
		d.Mailer = notification.NewLogMailer(d.Logger)
	}
	cfg := d.Config

	users := repositories.NewUserRepository(d.DB, d.Cache, d.Logger)
	walletRepo := repositories.NewWalletRepository(d.DB)
	notifications := notification.NewService(d.DB, d.Mailer, d.Logger.Named("notification"))

	wallets := wallet.NewService(wallet.Deps{
		DB:       d.DB,
		Repo:     walletRepo,
		Users:    users,
		Cache:    d.Cache,
		Notifier: notifications,
		Intents:  d.Intents,
		Metrics:  wallet.PrometheusMetrics{},
		Logger:   d.Logger.Named("wallet"),
	}, wallet.Config{
		Currency:            cfg.Wallet.Currency,
		MinWithdrawal:       cfg.Wallet.MinWithdrawal,
		StripeWebhookSecret: cfg.Stripe.WebhookSecret,
	})

	referrals := referral.NewService(d.DB, wallets, notifications, referral.Config{
		Reward:   cfg.Referral.Reward,
		MinTrade: cfg.Referral.MinTrade,
	}, d.Logger.Named("referral"))

	return &Services{
		Users:         users,
		Auth:          auth.NewService(d.DB, users, wallets, cfg.JWT, d.Logger.Named("auth")),
		User:          user.NewService(d.DB, users, wallets, d.Logger.Named("user")),
		RBAC:          rbac.NewService(repositories.NewRoleRepository(d.DB), d.Logger.Named("rbac")),
		Wallet:        wallets,
		Notifications: notifications,
		Referrals:     referrals,
		Giftcards:     giftcard.NewService(d.DB, wallets, referrals, notifications, d.Cache, d.Logger.Named("giftcard")),
		Assets:        asset.NewService(d.DB, wallets, referrals, notifications, d.Cache, d.Logger.Named("asset")),
		KYC:           kyc.NewService(d.DB, notifications, d.Logger.Named("kyc")),
		Alerts:        alert.NewService(d.DB, notifications, d.Logger.Named("alert")),
		Dashboard:     dashboard.NewService(d.DB, walletRepo, d.Cache, d.Logger.Named("dashboard")),
	}
}

// SetupRoutes configures all application routes.
// Public routes are registered before the auth middleware so they never reach it.
func SetupRoutes(app *fiber.App, d Deps, s *Services) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	store := d.Cache
	if store == nil {
		store = cache.Noop{}
	}

	authHandler := handlers.NewAuthHandler(s.Auth, log)
	userHandler := handlers.NewUserHandler(s.User, s.Referrals, s.Notifications, log)
	walletHandler := handlers.NewWalletHandler(s.Wallet, log)
	giftcardHandler := handlers.NewGiftcardHandler(s.Giftcards, log)
	assetHandler := handlers.NewAssetHandler(s.Assets, log)
	kycHandler := handlers.NewKYCHandler(s.KYC, log)
	adminHandler := handlers.NewAdminHandler(s.User, s.RBAC, log)
	alertHandler := handlers.NewAlertHandler(s.Alerts, log)
	dashboardHandler := handlers.NewDashboardHandler(s.Dashboard, log)
	healthHandler := handlers.NewHealthHandler(d.DB, store, Version)

	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/login/mfa", authHandler.VerifyMFA)
	api.Post("/refresh", authHandler.Refresh)
	api.Get("/giftcards/categories", giftcardHandler.ActiveCategories)
	api.Get("/giftcards", giftcardHandler.ActiveGiftcards)
	api.Get("/giftcards/:id", giftcardHandler.GetGiftcard)
	api.Get("/assets", assetHandler.ActiveAssets)
	api.Get("/assets/:id", assetHandler.GetAsset)
	api.Post("/webhooks/stripe", walletHandler.StripeWebhook)

	authMiddleware := middleware.NewAuthMiddleware(s.Users, d.Config.JWT, log.Named("auth"))
	protected := api.Group("", authMiddleware.Handler)

	setupUserRoutes(protected, authHandler, userHandler, walletHandler, giftcardHandler, assetHandler, kycHandler)

	admin := protected.Group("/admin", middleware.AdminOnly)
	setupAdminRoutes(admin, adminHandler, walletHandler, giftcardHandler, assetHandler, kycHandler, alertHandler, dashboardHandler)
}

func setupUserRoutes(
	router fiber.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	walletHandler *handlers.WalletHandler,
	giftcardHandler *handlers.GiftcardHandler,
	assetHandler *handlers.AssetHandler,
	kycHandler *handlers.KYCHandler,
) {
	can := middleware.HasPermission

	// Account
	router.Get("/me", userHandler.Me)
	router.Put("/me", userHandler.UpdateMe)
	router.Post("/change-password", authHandler.ChangePassword)
	router.Post("/logout", authHandler.Logout)
	router.Post("/mfa/setup", authHandler.SetupMFA)
	router.Post("/mfa/enable", authHandler.EnableMFA)
	router.Get("/referrals", userHandler.Referrals)

	// Notifications
	router.Get("/notifications", userHandler.Notifications)
	router.Get("/notifications/unread-count", userHandler.UnreadCount)
	router.Post("/notifications/read-all", userHandler.MarkAllRead)
	router.Post("/notifications/:id/read", userHandler.MarkRead)

	// Wallet
	router.Get("/wallet", can(models.PermissionWalletRead), walletHandler.GetWallet)
	router.Get("/wallet/transactions", can(models.PermissionWalletRead), walletHandler.History)
	router.Post("/wallet/fund", can(models.PermissionWalletWrite), walletHandler.Fund)
	router.Get("/bank-accounts", can(models.PermissionWalletRead), walletHandler.ListBankAccounts)
	router.Post("/bank-accounts", can(models.PermissionWalletWrite), walletHandler.AddBankAccount)
	router.Delete("/bank-accounts/:id", can(models.PermissionWalletWrite), walletHandler.DeleteBankAccount)
	router.Get("/withdrawals", can(models.PermissionWalletRead), walletHandler.MyWithdrawals)
	router.Post("/withdrawals", can(models.PermissionWalletWrite), walletHandler.RequestWithdrawal)

	// Giftcard trades
	gt := router.Group("/giftcard-trades")
	gt.Post("/quote", giftcardHandler.Quote)
	gt.Post("/", can(models.PermissionTradeCreate), giftcardHandler.Submit)
	gt.Get("/", giftcardHandler.MyTrades)
	gt.Get("/:id", giftcardHandler.MyTrade)

	// Asset trades
	at := router.Group("/asset-trades")
	at.Post("/quote", assetHandler.Quote)
	at.Post("/buy", can(models.PermissionTradeCreate), assetHandler.Buy)
	at.Post("/sell", can(models.PermissionTradeCreate), assetHandler.Sell)
	at.Get("/", assetHandler.MyTrades)
	at.Get("/:id", assetHandler.MyTrade)

	// KYC
	router.Get("/kyc", kycHandler.Status)
	router.Post("/kyc", can(models.PermissionKYCSubmit), kycHandler.Submit)
}

func setupAdminRoutes(
	admin fiber.Router,
	adminHandler *handlers.AdminHandler,
	walletHandler *handlers.WalletHandler,
	giftcardHandler *handlers.GiftcardHandler,
	assetHandler *handlers.AssetHandler,
	kycHandler *handlers.KYCHandler,
	alertHandler *handlers.AlertHandler,
	dashboardHandler *handlers.DashboardHandler,
) {
	can := middleware.HasPermission

	admin.Get("/dashboard", can(models.PermissionDashboardRead), dashboardHandler.Stats)

	// Users and admins
	admin.Get("/users", can(models.PermissionUserRead), adminHandler.ListUsers)
	admin.Get("/users/:id", can(models.PermissionUserRead), adminHandler.GetUser)
	admin.Post("/users/:id/block", can(models.PermissionUserWrite), adminHandler.BlockUser)
	admin.Post("/users/:id/unblock", can(models.PermissionUserWrite), adminHandler.UnblockUser)
	admin.Post("/admins", can(models.PermissionAdminsManage), adminHandler.CreateAdmin)
	admin.Put("/users/:id/roles", can(models.PermissionAdminsManage), adminHandler.AssignRoles)

	// Roles
	admin.Get("/roles", can(models.PermissionRolesManage), adminHandler.ListRoles)
	admin.Post("/roles", can(models.PermissionRolesManage), adminHandler.CreateRole)
	admin.Put("/roles/:id/permissions", can(models.PermissionRolesManage), adminHandler.SyncPermissions)
	admin.Get("/permissions", can(models.PermissionRolesManage), adminHandler.ListPermissions)

	// Giftcard catalog
	gc := admin.Group("/giftcards", can(models.PermissionGiftcardManage))
	gc.Get("/categories", giftcardHandler.AllCategories)
	gc.Post("/categories", giftcardHandler.CreateCategory)
	gc.Put("/categories/:id", giftcardHandler.UpdateCategory)
	gc.Delete("/categories/:id", giftcardHandler.DeleteCategory)
	gc.Get("/", giftcardHandler.AllGiftcards)
	gc.Post("/", giftcardHandler.CreateGiftcard)
	gc.Get("/:id", giftcardHandler.GetGiftcard)
	gc.Put("/:id", giftcardHandler.UpdateGiftcard)
	gc.Patch("/:id/rate", giftcardHandler.UpdateRate)
	gc.Delete("/:id", giftcardHandler.DeleteGiftcard)

	admin.Get("/giftcard-trades", can(models.PermissionGiftcardTradeRead), giftcardHandler.ListTrades)
	admin.Get("/giftcard-trades/:id", can(models.PermissionGiftcardTradeRead), giftcardHandler.GetTrade)
	admin.Post("/giftcard-trades/:id/review", can(models.PermissionGiftcardTradeReview), giftcardHandler.Review)

	// Asset catalog
	ac := admin.Group("/assets", can(models.PermissionAssetManage))
	ac.Get("/", assetHandler.AllAssets)
	ac.Post("/", assetHandler.CreateAsset)
	ac.Get("/:id", assetHandler.GetAsset)
	ac.Put("/:id", assetHandler.UpdateAsset)
	ac.Patch("/:id/rates", assetHandler.UpdateRates)
	ac.Delete("/:id", assetHandler.DeleteAsset)

	admin.Get("/asset-trades", can(models.PermissionAssetTradeRead), assetHandler.ListTrades)
	admin.Get("/asset-trades/:id", can(models.PermissionAssetTradeRead), assetHandler.GetTrade)
	admin.Post("/asset-trades/:id/review", can(models.PermissionAssetTradeReview), assetHandler.Review)

	// Wallets and withdrawals
	admin.Get("/wallets", can(models.PermissionWalletsRead), walletHandler.ListWallets)
	admin.Post("/wallets/:userId/adjust", can(models.PermissionWalletsAdjust), walletHandler.Adjust)
	admin.Post("/wallets/:userId/lock", can(models.PermissionWalletsAdjust), walletHandler.Lock)
	admin.Post("/wallets/:userId/unlock", can(models.PermissionWalletsAdjust), walletHandler.Unlock)
	admin.Get("/withdrawals", can(models.PermissionWalletsRead), walletHandler.ListWithdrawals)
	admin.Post("/withdrawals/:id/review", can(models.PermissionWithdrawalReview), walletHandler.ReviewWithdrawal)

	// KYC
	admin.Get("/kyc", can(models.PermissionKYCReview), kycHandler.List)
	admin.Get("/kyc/:id", can(models.PermissionKYCReview), kycHandler.Get)
	admin.Post("/kyc/:id/review", can(models.PermissionKYCReview), kycHandler.Review)

	// Alerts
	al := admin.Group("/alerts", can(models.PermissionAlertsManage))
	al.Get("/", alertHandler.List)
	al.Post("/", alertHandler.Create)
	al.Get("/:id", alertHandler.Get)
	al.Post("/:id/dispatch", alertHandler.Dispatch)
	al.Post("/:id/cancel", alertHandler.Cancel)
}
