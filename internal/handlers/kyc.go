package handlers

import (
	"tradedesk/internal/services/kyc"
	"tradedesk/internal/utils"
	"tradedesk/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type KYCHandler struct {
	kycService kyc.Service
	logger     *zap.Logger
}

func NewKYCHandler(kycService kyc.Service, logger *zap.Logger) *KYCHandler {
	return &KYCHandler{kycService: kycService, logger: logger}
}

func (h *KYCHandler) Submit(c *fiber.Ctx) error {
	var req kyc.SubmitRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	v, err := h.kycService.Submit(c.UserContext(), claimsID(c), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, v)
}

func (h *KYCHandler) Status(c *fiber.Ctx) error {
	view, err := h.kycService.Status(c.UserContext(), claimsID(c))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, view)
}

func (h *KYCHandler) List(c *fiber.Ctx) error {
	q := pagination.ParseQuery(c, []string{"status", "document_type", "user_id"}, []string{"created_at", "reviewed_at"})
	items, total, err := h.kycService.List(c.UserContext(), q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, items, total)
}

func (h *KYCHandler) Get(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	v, err := h.kycService.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, v)
}

func (h *KYCHandler) Review(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req kyc.ReviewRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	v, err := h.kycService.Review(c.UserContext(), claimsID(c), id, req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, v)
}
