package handlers

import (
	"context"
	"time"

	"tradedesk/internal/repositories/cache"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	db      *gorm.DB
	cache   cache.Store
	version string
}

func NewHealthHandler(db *gorm.DB, store cache.Store, version string) *HealthHandler {
	return &HealthHandler{db: db, cache: store, version: version}
}

// Check pings the database and the cache. A cache outage degrades the
// service but does not fail it.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	services := fiber.Map{"database": "connected", "cache": "connected"}
	status, code := "ok", fiber.StatusOK

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		services["database"] = "unavailable"
		status, code = "unavailable", fiber.StatusServiceUnavailable
	}
	if err := h.cache.HealthCheck(ctx); err != nil {
		services["cache"] = "unavailable"
		if code == fiber.StatusOK {
			status = "degraded"
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"version":  h.version,
		"services": services,
	})
}
