package handlers

import (
	"tradedesk/internal/services/dashboard"
	"tradedesk/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService dashboard.Service
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService dashboard.Service, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, logger: logger}
}

// Stats returns the back-office headline figures.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.Stats(c.UserContext())
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, stats)
}
