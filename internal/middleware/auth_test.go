package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradedesk/internal/models"
	"tradedesk/internal/repositories"
	"tradedesk/internal/testutil"
	"tradedesk/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*fiber.App, repositories.UserRepository, *models.User) {
	t.Helper()
	db := testutil.NewDB(t)
	users := repositories.NewUserRepository(db, nil, nil)
	user := testutil.CreateUser(t, db, "mw@example.com", "08011110000")

	m := NewAuthMiddleware(users, testutil.Config().JWT, nil)
	app := fiber.New()
	app.Get("/me", m.Handler, func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		require.NoError(t, err)
		return c.JSON(fiber.Map{"user_id": claims.UserID})
	})
	app.Get("/admin", m.Handler, AdminOnly, HasPermission(models.PermissionKYCReview), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, users, user
}

func token(t *testing.T, claims *models.UserClaims) string {
	t.Helper()
	pair, err := utils.GenerateTokens(testutil.Config().JWT, claims)
	require.NoError(t, err)
	return pair.AccessToken
}

func get(t *testing.T, app *fiber.App, path, bearer string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestHandler(t *testing.T) {
	app, users, user := newApp(t)
	valid := token(t, &models.UserClaims{UserID: user.ID, TokenVersion: 1})

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", "garbage"))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/me", valid))

	pair, err := utils.GenerateTokens(testutil.Config().JWT, &models.UserClaims{UserID: user.ID, TokenVersion: 1})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", pair.RefreshToken), "refresh tokens are not access tokens")

	unknown := token(t, &models.UserClaims{UserID: 999, TokenVersion: 1})
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", unknown))

	require.NoError(t, users.IncrementTokenVersion(context.Background(), user.ID))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/me", valid))

	require.NoError(t, users.UpdateStatus(context.Background(), user.ID, models.UserStatusBlocked))
	blocked := token(t, &models.UserClaims{UserID: user.ID, TokenVersion: 3})
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/me", blocked))
}

func TestPermissions(t *testing.T) {
	app, _, user := newApp(t)

	customer := token(t, &models.UserClaims{UserID: user.ID, TokenVersion: 1, Permissions: []string{models.PermissionKYCReview}})
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", customer))

	support := token(t, &models.UserClaims{UserID: user.ID, TokenVersion: 1, IsAdmin: true, Permissions: []string{models.PermissionUserRead}})
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", support))

	reviewer := token(t, &models.UserClaims{UserID: user.ID, TokenVersion: 1, IsAdmin: true, Permissions: []string{models.PermissionKYCReview}})
	assert.Equal(t, fiber.StatusNoContent, get(t, app, "/admin", reviewer))

	super := token(t, &models.UserClaims{UserID: user.ID, TokenVersion: 1, IsAdmin: true, Roles: []string{models.RoleSuperAdmin}})
	assert.Equal(t, fiber.StatusNoContent, get(t, app, "/admin", super))
}
