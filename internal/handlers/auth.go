package handlers

import (
	"tradedesk/internal/services/auth"
	"tradedesk/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService auth.Service
	logger      *zap.Logger
}

func NewAuthHandler(authService auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Register creates a customer account with its wallet and signs it in.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	session, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Created(c, session)
}

// Login answers with tokens, or with mfa_required and a short-lived mfa_token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	session, err := h.authService.Login(c.UserContext(), req, c.IP())
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, session)
}

func (h *AuthHandler) VerifyMFA(c *fiber.Ctx) error {
	var req auth.VerifyMFARequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	session, err := h.authService.VerifyMFA(c.UserContext(), req, c.IP())
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, session)
}

// Refresh takes the refresh token from the body, falling back to the cookie.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req auth.RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, h.logger, errInvalidBody)
		}
	}
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies("refresh_token")
	}
	if req.RefreshToken == "" {
		return utils.Unauthorized(c, "refresh token not provided")
	}

	tokens, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, tokens)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), claimsID(c)); err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req auth.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	if err := h.authService.ChangePassword(c.UserContext(), claimsID(c), req); err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"message": "password changed, please sign in again"})
}

func (h *AuthHandler) SetupMFA(c *fiber.Ctx) error {
	setup, err := h.authService.SetupMFA(c.UserContext(), claimsID(c))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, setup)
}

func (h *AuthHandler) EnableMFA(c *fiber.Ctx) error {
	var req auth.EnableMFARequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.logger, err)
	}
	if err := h.authService.EnableMFA(c.UserContext(), claimsID(c), req.Code); err != nil {
		return fail(c, h.logger, err)
	}
	return utils.Success(c, fiber.Map{"message": "two-factor authentication enabled"})
}
