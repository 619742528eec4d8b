package handlers

import (
	"tradedesk/internal/services/asset"
	"tradedesk/internal/utils"
	"tradedesk/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var assetTradeFilters = []string{"status", "side", "asset_id", "user_id"}

type AssetHandler struct {
	assetService asset.Service
	logger       *zap.Logger
}

func NewAssetHandler(assetService asset.Service, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{assetService: assetService, logger: logger}
}

func (h *AssetHandler) ActiveAssets(c *fiber.Ctx) error {
	return h.assets(c, true)
}

func (h *AssetHandler) AllAssets(c *fiber.Ctx) error {
	return h.assets(c, false)
}

func (h *AssetHandler) assets(c *fiber.Ctx, activeOnly bool) error {
	q := pagination.ParseQuery(c, []string{"network"}, []string{"created_at", "code", "name"})
	items, total, err := h.assetService.ListAssets(c.UserContext(), q, activeOnly)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, items, total)
}

func (h *AssetHandler) GetAsset(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	a, err := h.assetService.GetAsset(c.UserContext(), id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, a)
}

func (h *AssetHandler) CreateAsset(c *fiber.Ctx) error {
	var req asset.AssetRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	a, err := h.assetService.CreateAsset(c.UserContext(), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, a)
}

func (h *AssetHandler) UpdateAsset(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req asset.AssetRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	a, err := h.assetService.UpdateAsset(c.UserContext(), id, req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, a)
}

func (h *AssetHandler) UpdateRates(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req asset.RatesRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	a, err := h.assetService.UpdateRates(c.UserContext(), id, req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, a)
}

func (h *AssetHandler) DeleteAsset(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	if err := h.assetService.DeleteAsset(c.UserContext(), id); err != nil {
		return fail(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AssetHandler) Quote(c *fiber.Ctx) error {
	var req asset.QuoteRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	b, err := h.assetService.Quote(c.UserContext(), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, b)
}

// Buy debits the wallet up front; a declined buy is refunded.
func (h *AssetHandler) Buy(c *fiber.Ctx) error {
	var req asset.BuyRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	trade, err := h.assetService.Buy(c.UserContext(), claimsID(c), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, trade)
}

func (h *AssetHandler) Sell(c *fiber.Ctx) error {
	var req asset.SellRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	trade, err := h.assetService.Sell(c.UserContext(), claimsID(c), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, trade)
}

func (h *AssetHandler) MyTrades(c *fiber.Ctx) error {
	q := userScoped(pagination.ParseQuery(c, []string{"status", "side", "asset_id"}, tradeSorts), claimsID(c))
	items, total, err := h.assetService.ListTrades(c.UserContext(), q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, items, total)
}

func (h *AssetHandler) MyTrade(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	trade, err := h.assetService.GetUserTrade(c.UserContext(), claimsID(c), id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, trade)
}

func (h *AssetHandler) ListTrades(c *fiber.Ctx) error {
	q := pagination.ParseQuery(c, assetTradeFilters, tradeSorts)
	items, total, err := h.assetService.ListTrades(c.UserContext(), q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, items, total)
}

func (h *AssetHandler) GetTrade(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	trade, err := h.assetService.GetTrade(c.UserContext(), id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, trade)
}

func (h *AssetHandler) Review(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req asset.ReviewRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	trade, err := h.assetService.Review(c.UserContext(), claimsID(c), id, req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, trade)
}
