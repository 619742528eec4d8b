package handlers

import (
	"tradedesk/internal/services/giftcard"
	"tradedesk/internal/utils"
	"tradedesk/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	giftcardFilters      = []string{"category_id", "country", "card_type", "currency"}
	giftcardTradeFilters = []string{"status", "giftcard_id", "user_id", "card_type"}
	tradeSorts           = []string{"created_at", "amount", "payable", "reviewed_at"}
)

type GiftcardHandler struct {
	giftcardService giftcard.Service
	logger          *zap.Logger
}

func NewGiftcardHandler(giftcardService giftcard.Service, logger *zap.Logger) *GiftcardHandler {
	return &GiftcardHandler{giftcardService: giftcardService, logger: logger}
}

// Catalog

func (h *GiftcardHandler) ActiveCategories(c *fiber.Ctx) error {
	return h.categories(c, true)
}

func (h *GiftcardHandler) AllCategories(c *fiber.Ctx) error {
	return h.categories(c, false)
}

func (h *GiftcardHandler) categories(c *fiber.Ctx, activeOnly bool) error {
	items, err := h.giftcardService.ListCategories(c.UserContext(), activeOnly)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"data": items})
}

func (h *GiftcardHandler) ActiveGiftcards(c *fiber.Ctx) error {
	return h.giftcards(c, true)
}

func (h *GiftcardHandler) AllGiftcards(c *fiber.Ctx) error {
	return h.giftcards(c, false)
}

func (h *GiftcardHandler) giftcards(c *fiber.Ctx, activeOnly bool) error {
	q := pagination.ParseQuery(c, giftcardFilters, []string{"created_at", "name", "rate"})
	items, total, err := h.giftcardService.ListGiftcards(c.UserContext(), q, activeOnly)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, items, total)
}

func (h *GiftcardHandler) GetGiftcard(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	card, err := h.giftcardService.GetGiftcard(c.UserContext(), id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, card)
}

func (h *GiftcardHandler) CreateCategory(c *fiber.Ctx) error {
	var req giftcard.CategoryRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	category, err := h.giftcardService.CreateCategory(c.UserContext(), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, category)
}

func (h *GiftcardHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req giftcard.CategoryRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	category, err := h.giftcardService.UpdateCategory(c.UserContext(), id, req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, category)
}

func (h *GiftcardHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	if err := h.giftcardService.DeleteCategory(c.UserContext(), id); err != nil {
		return fail(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GiftcardHandler) CreateGiftcard(c *fiber.Ctx) error {
	var req giftcard.GiftcardRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	card, err := h.giftcardService.CreateGiftcard(c.UserContext(), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, card)
}

func (h *GiftcardHandler) UpdateGiftcard(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req giftcard.GiftcardRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	card, err := h.giftcardService.UpdateGiftcard(c.UserContext(), id, req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, card)
}

func (h *GiftcardHandler) UpdateRate(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req giftcard.RateRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	card, err := h.giftcardService.UpdateRate(c.UserContext(), id, req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, card)
}

func (h *GiftcardHandler) DeleteGiftcard(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	if err := h.giftcardService.DeleteGiftcard(c.UserContext(), id); err != nil {
		return fail(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Trades

func (h *GiftcardHandler) Quote(c *fiber.Ctx) error {
	var req giftcard.QuoteRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	b, err := h.giftcardService.Quote(c.UserContext(), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, b)
}

func (h *GiftcardHandler) Submit(c *fiber.Ctx) error {
	var req giftcard.SubmitRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	trade, err := h.giftcardService.Submit(c.UserContext(), claimsID(c), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, trade)
}

func (h *GiftcardHandler) MyTrades(c *fiber.Ctx) error {
	q := userScoped(pagination.ParseQuery(c, []string{"status", "giftcard_id"}, tradeSorts), claimsID(c))
	items, total, err := h.giftcardService.ListTrades(c.UserContext(), q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, items, total)
}

func (h *GiftcardHandler) MyTrade(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	trade, err := h.giftcardService.GetUserTrade(c.UserContext(), claimsID(c), id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, trade)
}

func (h *GiftcardHandler) ListTrades(c *fiber.Ctx) error {
	q := pagination.ParseQuery(c, giftcardTradeFilters, tradeSorts)
	items, total, err := h.giftcardService.ListTrades(c.UserContext(), q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, items, total)
}

func (h *GiftcardHandler) GetTrade(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	trade, err := h.giftcardService.GetTrade(c.UserContext(), id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, trade)
}

func (h *GiftcardHandler) Review(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req giftcard.ReviewRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	trade, err := h.giftcardService.Review(c.UserContext(), claimsID(c), id, req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, trade)
}
