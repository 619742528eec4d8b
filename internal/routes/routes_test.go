package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"tradedesk/internal/models"
	"tradedesk/internal/services/auth"
	"tradedesk/internal/services/user"
	"tradedesk/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const password = "Str0ng!pass"

type client struct {
	t   *testing.T
	app *fiber.App
}

func (c client) do(method, path, token string, body interface{}, out interface{}) int {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func newClient(t *testing.T) (client, *Services) {
	t.Helper()
	db := testutil.NewDB(t)
	deps := Deps{DB: db, Config: testutil.Config()}
	svc := NewServices(deps)

	app := fiber.New()
	SetupRoutes(app, deps, svc)
	return client{t: t, app: app}, svc
}

func TestCustomerAndBackOfficeFlow(t *testing.T) {
	c, svc := newClient(t)

	var session auth.Session
	status := c.do(http.MethodPost, "/api/register", "", auth.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Phone: "08012345678", Password: password,
	}, &session)
	require.Equal(t, fiber.StatusCreated, status)
	require.NotNil(t, session.Tokens)
	customer := session.Tokens.AccessToken

	var w models.Wallet
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/wallet", customer, nil, &w))
	assert.True(t, w.Balance.IsZero())

	assert.Equal(t, fiber.StatusForbidden, c.do(http.MethodGet, "/api/admin/users", customer, nil, nil))
	assert.Equal(t, fiber.StatusUnauthorized, c.do(http.MethodGet, "/api/wallet", "", nil, nil))

	_, err := svc.User.CreateAdmin(context.Background(), user.CreateAdminRequest{
		Name: "Root", Email: "root@example.com", Phone: "08099999999", Password: password,
		Roles: []string{models.RoleSuperAdmin},
	})
	require.NoError(t, err)
	var adminSession auth.Session
	require.Equal(t, fiber.StatusOK, c.do(http.MethodPost, "/api/login", "", auth.LoginRequest{
		Login: "root@example.com", Password: password,
	}, &adminSession))
	require.False(t, adminSession.MFARequired)
	admin := adminSession.Tokens.AccessToken

	var category models.GiftcardCategory
	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/admin/giftcards/categories", admin,
		map[string]interface{}{"name": "Amazon"}, &category))

	var card models.Giftcard
	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/admin/giftcards", admin, map[string]interface{}{
		"category_id":    category.ID,
		"name":           "Amazon US",
		"currency":       "usd",
		"card_type":      "ecode",
		"rate":           "750",
		"charge_percent": "2",
		"charge_cap":     "0",
		"min_amount":     "10",
		"max_amount":     "500",
	}, &card))
	assert.Equal(t, "USD", card.Currency)

	var catalog struct {
		Data []models.Giftcard `json:"data"`
		Meta struct {
			TotalItems int64 `json:"total_items"`
		} `json:"meta"`
	}
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/giftcards", "", nil, &catalog))
	assert.EqualValues(t, 1, catalog.Meta.TotalItems)

	var trade models.GiftcardTransaction
	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/giftcard-trades", customer, map[string]interface{}{
		"giftcard_id": card.ID,
		"amount":      "100",
		"quantity":    2,
		"cards":       []string{"CODE-1", "CODE-2"},
	}, &trade))
	assert.True(t, decimal.NewFromInt(147000).Equal(trade.Payable))
	assert.Equal(t, models.TradePending, trade.Status)

	assert.Equal(t, fiber.StatusUnprocessableEntity, c.do(http.MethodPost, "/api/admin/giftcards", admin, map[string]interface{}{
		"category_id":    category.ID,
		"name":           "Amazon UK",
		"currency":       "gbp",
		"card_type":      "ecode",
		"rate":           "900",
		"charge_percent": "150",
	}, nil))
	var priceErr struct {
		Error string `json:"error"`
	}
	assert.Equal(t, fiber.StatusUnprocessableEntity, c.do(http.MethodPost, "/api/admin/giftcard-trades/"+itoa(trade.ID)+"/review", admin,
		map[string]interface{}{"status": models.TradeApproved, "rate": "0"}, &priceErr))
	assert.Equal(t, "rate must be greater than zero", priceErr.Error)

	var reviewed models.GiftcardTransaction
	require.Equal(t, fiber.StatusOK, c.do(http.MethodPost, "/api/admin/giftcard-trades/"+itoa(trade.ID)+"/review", admin,
		map[string]interface{}{"status": models.TradeApproved}, &reviewed))
	assert.Equal(t, models.TradeApproved, reviewed.Status)

	assert.Equal(t, fiber.StatusConflict, c.do(http.MethodPost, "/api/admin/giftcard-trades/"+itoa(trade.ID)+"/review", admin,
		map[string]interface{}{"status": models.TradeDeclined, "note": "late"}, nil))

	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/wallet", customer, nil, &w))
	assert.True(t, decimal.NewFromInt(147000).Equal(w.Balance))

	var inbox struct {
		Data []models.Notification `json:"data"`
	}
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/notifications", customer, nil, &inbox))
	assert.NotEmpty(t, inbox.Data)
}

func TestValidationAndErrorMapping(t *testing.T) {
	c, _ := newClient(t)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	status := c.do(http.MethodPost, "/api/register", "", map[string]string{"email": "not-an-email"}, &body)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")

	assert.Equal(t, fiber.StatusUnauthorized, c.do(http.MethodPost, "/api/login", "", auth.LoginRequest{
		Login: "nobody@example.com", Password: password,
	}, nil))

	var session auth.Session
	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/register", "", auth.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Phone: "08012345678", Password: password,
	}, &session))
	assert.Equal(t, fiber.StatusConflict, c.do(http.MethodPost, "/api/register", "", auth.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Phone: "08000000001", Password: password,
	}, nil))

	token := session.Tokens.AccessToken
	assert.Equal(t, fiber.StatusNotFound, c.do(http.MethodGet, "/api/giftcard-trades/42", token, nil, nil))
	assert.Equal(t, fiber.StatusBadRequest, c.do(http.MethodGet, "/api/giftcard-trades/abc", token, nil, nil))

	require.Equal(t, fiber.StatusOK, c.do(http.MethodPost, "/api/logout", token, nil, nil))
	assert.Equal(t, fiber.StatusUnauthorized, c.do(http.MethodGet, "/api/me", token, nil, nil))
}

func TestHealth(t *testing.T) {
	c, _ := newClient(t)
	var body map[string]interface{}
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
