// Package main is the entry point for the API server.
// It loads configuration, opens the database and cache, wires the services,
// mounts the routes and runs the scheduled alert worker until shutdown.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradedesk/internal/config"
	applogger "tradedesk/internal/logger"
	"tradedesk/internal/middleware"
	"tradedesk/internal/repositories"
	"tradedesk/internal/repositories/cache"
	"tradedesk/internal/routes"
	"tradedesk/internal/services/alert"
	"tradedesk/internal/services/notification"
	"tradedesk/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stripe/stripe-go/v72/client"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	zl, err := applogger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := repositories.Open(cfg.Database, zl)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	if err := repositories.Migrate(db); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				zl.Warn("failed to close database connection", zap.Error(err))
			}
		}
	}()

	// Redis is optional; the API runs uncached when it is unreachable
	var store cache.Store = cache.Noop{}
	redisClient := cache.NewRedisClient(cfg.Redis)
	if err := cache.Ping(redisClient, 3*time.Second); err != nil {
		zl.Warn("redis unavailable, caching disabled", zap.Error(err))
		_ = redisClient.Close()
	} else {
		store = cache.NewCacheService(redisClient, cfg.Redis.TTL)
		zl.Info("redis connected")
	}
	defer func() {
		if err := store.Close(); err != nil {
			zl.Warn("failed to close cache", zap.Error(err))
		}
	}()

	mailer, err := notification.NewMailer(cfg.Mail, zl.Named("mail"))
	if err != nil {
		zl.Fatal("mailer setup failed", zap.Error(err))
	}

	var intents wallet.PaymentIntents
	if cfg.Stripe.SecretKey != "" {
		sc := &client.API{}
		sc.Init(cfg.Stripe.SecretKey, nil)
		intents = sc.PaymentIntents
	} else {
		zl.Warn("STRIPE_SECRET_KEY not set, card funding disabled")
	}

	deps := routes.Deps{
		DB:      db,
		Cache:   store,
		Mailer:  mailer,
		Intents: intents,
		Config:  cfg,
		Logger:  zl,
	}
	services := routes.NewServices(deps)

	app := fiber.New(fiber.Config{
		AppName:               "tradedesk",
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		DisableStartupMessage: cfg.IsProduction(),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(middleware.Metrics)

	for _, path := range []string{"/api/register", "/api/login"} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        5,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests. Please try again later.",
				})
			},
		}))
	}

	routes.SetupRoutes(app, deps, services)

	worker := alert.NewWorker(services.Alerts, cfg.AlertSchedule, zl.Named("alert-worker"))
	if err := worker.Start(); err != nil {
		zl.Fatal("alert worker failed to start", zap.Error(err), zap.String("schedule", cfg.AlertSchedule))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		zl.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	worker.Stop()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		zl.Warn("graceful shutdown failed", zap.Error(err))
	}
}
