package handlers

import (
	"tradedesk/internal/services/wallet"
	"tradedesk/internal/utils"
	"tradedesk/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	ledgerFilters     = []string{"type", "source"}
	withdrawalFilters = []string{"status", "user_id"}
	walletFilters     = []string{"status", "currency", "user_id"}
)

type WalletHandler struct {
	walletService wallet.Service
	logger        *zap.Logger
}

func NewWalletHandler(walletService wallet.Service, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{walletService: walletService, logger: logger}
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	w, err := h.walletService.GetWallet(c.UserContext(), claimsID(c))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, w)
}

func (h *WalletHandler) History(c *fiber.Ctx) error {
	q := pagination.ParseQuery(c, ledgerFilters, []string{"created_at", "amount"})
	entries, total, err := h.walletService.History(c.UserContext(), claimsID(c), q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, entries, total)
}

// Fund opens a card payment. The wallet is credited when Stripe confirms it.
func (h *WalletHandler) Fund(c *fiber.Ctx) error {
	var req wallet.FundingRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	session, err := h.walletService.StartFunding(c.UserContext(), claimsID(c), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, session)
}

func (h *WalletHandler) StripeWebhook(c *fiber.Ctx) error {
	err := h.walletService.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"received": true})
}

func (h *WalletHandler) AddBankAccount(c *fiber.Ctx) error {
	var req wallet.BankAccountRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	account, err := h.walletService.AddBankAccount(c.UserContext(), claimsID(c), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, account)
}

func (h *WalletHandler) ListBankAccounts(c *fiber.Ctx) error {
	accounts, err := h.walletService.ListBankAccounts(c.UserContext(), claimsID(c))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"data": accounts})
}

func (h *WalletHandler) DeleteBankAccount(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	if err := h.walletService.DeleteBankAccount(c.UserContext(), claimsID(c), id); err != nil {
		return fail(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *WalletHandler) RequestWithdrawal(c *fiber.Ctx) error {
	var req wallet.WithdrawalRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	wd, err := h.walletService.RequestWithdrawal(c.UserContext(), claimsID(c), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, wd)
}

func (h *WalletHandler) MyWithdrawals(c *fiber.Ctx) error {
	q := userScoped(pagination.ParseQuery(c, []string{"status"}, []string{"created_at", "amount"}), claimsID(c))
	items, total, err := h.walletService.ListWithdrawals(c.UserContext(), q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, items, total)
}

// Back office

func (h *WalletHandler) ListWallets(c *fiber.Ctx) error {
	q := pagination.ParseQuery(c, walletFilters, []string{"created_at", "balance"})
	items, total, err := h.walletService.ListWallets(c.UserContext(), q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, items, total)
}

func (h *WalletHandler) Adjust(c *fiber.Ctx) error {
	userID, err := utils.ParamID(c, "userId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req wallet.AdjustRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	entry, err := h.walletService.AdminAdjust(c.UserContext(), claimsID(c), userID, req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, entry)
}

func (h *WalletHandler) Lock(c *fiber.Ctx) error {
	userID, err := utils.ParamID(c, "userId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req wallet.LockRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	if err := h.walletService.Lock(c.UserContext(), userID, req.Reason); err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"message": "wallet locked"})
}

func (h *WalletHandler) Unlock(c *fiber.Ctx) error {
	userID, err := utils.ParamID(c, "userId")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	if err := h.walletService.Unlock(c.UserContext(), userID); err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"message": "wallet unlocked"})
}

func (h *WalletHandler) ListWithdrawals(c *fiber.Ctx) error {
	q := pagination.ParseQuery(c, withdrawalFilters, []string{"created_at", "amount"})
	items, total, err := h.walletService.ListWithdrawals(c.UserContext(), q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, items, total)
}

func (h *WalletHandler) ReviewWithdrawal(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req wallet.ReviewWithdrawalRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	wd, err := h.walletService.ReviewWithdrawal(c.UserContext(), claimsID(c), id, req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, wd)
}
