package handlers

import (
	"context"

	"tradedesk/internal/models"
	"tradedesk/internal/services/alert"
	"tradedesk/internal/utils"
	"tradedesk/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AlertHandler struct {
	alertService alert.Service
	logger       *zap.Logger
}

func NewAlertHandler(alertService alert.Service, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{alertService: alertService, logger: logger}
}

// Create sends the alert now, or stores it for the scheduler when
// scheduled_at is in the future.
func (h *AlertHandler) Create(c *fiber.Ctx) error {
	var req alert.CreateRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	a, err := h.alertService.Create(c.UserContext(), claimsID(c), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, a)
}

func (h *AlertHandler) List(c *fiber.Ctx) error {
	q := pagination.ParseQuery(c, []string{"status", "audience"}, []string{"created_at", "scheduled_at", "dispatched_at"})
	items, total, err := h.alertService.List(c.UserContext(), q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, items, total)
}

func (h *AlertHandler) Get(c *fiber.Ctx) error {
	return h.byID(c, h.alertService.Get)
}

func (h *AlertHandler) Dispatch(c *fiber.Ctx) error {
	return h.byID(c, h.alertService.Dispatch)
}

func (h *AlertHandler) Cancel(c *fiber.Ctx) error {
	return h.byID(c, h.alertService.Cancel)
}

func (h *AlertHandler) byID(c *fiber.Ctx, op func(ctx context.Context, id uint) (*models.Alert, error)) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	a, err := op(c.UserContext(), id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, a)
}
