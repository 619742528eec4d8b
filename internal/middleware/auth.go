// Package middleware provides HTTP middleware components for the application.
// It includes authentication and permission checks for fiber routes.
package middleware

import (
	"errors"
	"strings"

	"tradedesk/internal/config"
	"tradedesk/internal/models"
	"tradedesk/internal/repositories"
	"tradedesk/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthMiddleware handles JWT token validation and user authentication.
// It extracts the JWT token from the Authorization header, validates it,
// and adds the user claims to the request context.
type AuthMiddleware struct {
	users  repositories.UserRepository
	jwt    config.JWTConfig
	logger *zap.Logger
}

func NewAuthMiddleware(users repositories.UserRepository, jwtConfig config.JWTConfig, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{users: users, jwt: jwtConfig, logger: logger}
}

// Handler validates JWT tokens and adds claims to the request context.
// It checks for:
// - Presence of Authorization header with Bearer token
// - Valid signature, expiry and access purpose
// - Token version matches current user version
// - The account is not blocked
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	_, claims, err := utils.ParseToken(m.jwt.Secret, tokenString, models.TokenPurposeAccess)
	if err != nil {
		m.logger.Debug("token rejected", zap.Error(err))
		return utils.Unauthorized(c, "invalid token")
	}

	state, err := m.users.GetAuthState(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return utils.Unauthorized(c, "invalid token")
		}
		m.logger.Error("auth state lookup failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
		return utils.InternalError(c, "could not verify session")
	}
	if claims.TokenVersion != state.TokenVersion {
		return utils.Unauthorized(c, "session expired")
	}
	if state.Status == models.UserStatusBlocked {
		return utils.Forbidden(c, "account is blocked")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// AdminOnly keeps customer tokens out of the back office.
func AdminOnly(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "unauthorized")
	}
	if !claims.IsAdmin && !claims.HasRole(models.RoleSuperAdmin) {
		return utils.Forbidden(c, "insufficient permissions")
	}
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
// Super admins pass every check.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return utils.Unauthorized(c, "unauthorized")
		}
		if claims.HasRole(models.RoleSuperAdmin) || claims.HasPermission(permission) {
			return c.Next()
		}
		return utils.Forbidden(c, "insufficient permissions")
	}
}
