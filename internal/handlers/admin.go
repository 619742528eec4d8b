package handlers

import (
	"tradedesk/internal/services/rbac"
	"tradedesk/internal/services/user"
	"tradedesk/internal/utils"
	"tradedesk/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHandler manages customer accounts, admin accounts and roles.
type AdminHandler struct {
	userService user.Service
	rbacService rbac.Service
	logger      *zap.Logger
}

func NewAdminHandler(userService user.Service, rbacService rbac.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{userService: userService, rbacService: rbacService, logger: logger}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	q := pagination.ParseQuery(c, []string{"status", "kyc_status", "is_admin"}, []string{"created_at", "name", "email", "last_login_at"})
	users, total, err := h.userService.List(c.UserContext(), q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return paginated(c, q, users, total)
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	profile, err := h.userService.Profile(c.UserContext(), id)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, profile)
}

// Block signs the user out everywhere and refuses further logins.
func (h *AdminHandler) BlockUser(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	if err := h.userService.Block(c.UserContext(), claimsID(c), id); err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"message": "user blocked"})
}

func (h *AdminHandler) UnblockUser(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	if err := h.userService.Unblock(c.UserContext(), claimsID(c), id); err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"message": "user unblocked"})
}

func (h *AdminHandler) CreateAdmin(c *fiber.Ctx) error {
	var req user.CreateAdminRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	admin, err := h.userService.CreateAdmin(c.UserContext(), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, admin)
}

func (h *AdminHandler) AssignRoles(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req user.AssignRolesRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	u, err := h.userService.AssignRoles(c.UserContext(), claimsID(c), id, req.Roles)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, u)
}

func (h *AdminHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.rbacService.ListRoles(c.UserContext())
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"data": roles})
}

func (h *AdminHandler) ListPermissions(c *fiber.Ctx) error {
	perms, err := h.rbacService.ListPermissions(c.UserContext())
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"data": perms})
}

func (h *AdminHandler) CreateRole(c *fiber.Ctx) error {
	var req rbac.CreateRoleRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	role, err := h.rbacService.CreateRole(c.UserContext(), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, role)
}

func (h *AdminHandler) SyncPermissions(c *fiber.Ctx) error {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var req rbac.SyncPermissionsRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	role, err := h.rbacService.SyncPermissions(c.UserContext(), id, req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, role)
}
