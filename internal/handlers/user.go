package handlers

import (
	"tradedesk/internal/services/notification"
	"tradedesk/internal/services/referral"
	"tradedesk/internal/services/user"
	"tradedesk/internal/utils"
	"tradedesk/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler serves the signed-in customer's own account.
type UserHandler struct {
	userService         user.Service
	referralService     referral.Service
	notificationService notification.Service
	logger              *zap.Logger
}

func NewUserHandler(userService user.Service, referralService referral.Service, notificationService notification.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService:         userService,
		referralService:     referralService,
		notificationService: notificationService,
		logger:              logger,
	}
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	profile, err := h.userService.Profile(c.UserContext(), claimsID(c))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, profile)
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var req user.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	u, err := h.userService.UpdateProfile(c.UserContext(), claimsID(c), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, u)
}

func (h *UserHandler) Referrals(c *fiber.Ctx) error {
	summary, err := h.referralService.List(c.UserContext(), claimsID(c))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, summary)
}

func (h *UserHandler) Notifications(c *fiber.Ctx) error {
	q := pagination.ParseQuery(c, []string{"kind", "unread"}, []string{"created_at"})
	items, total, err := h.notificationService.List(c.UserContext(), claimsID(c), q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, items, total)
}

func (h *UserHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.notificationService.UnreadCount(c.UserContext(), claimsID(c))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"unread": n})
}

func (h *UserHandler) MarkRead(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	if err := h.notificationService.MarkRead(c.UserContext(), claimsID(c), id); err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"message": "notification marked as read"})
}

func (h *UserHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.notificationService.MarkAllRead(c.UserContext(), claimsID(c))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"updated": n})
}
