package handlers

import (
	"fmt"
	"testing"

	"tradedesk/internal/services/asset"
	"tradedesk/internal/services/breakdown"
	"tradedesk/internal/services/giftcard"
	"tradedesk/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{breakdown.ErrInvalidAmount, fiber.StatusUnprocessableEntity},
		{breakdown.ErrInvalidRate, fiber.StatusUnprocessableEntity},
		{breakdown.ErrInvalidCharge, fiber.StatusUnprocessableEntity},
		{breakdown.ErrNothingPayable, fiber.StatusUnprocessableEntity},
		{giftcard.ErrInvalidCharge, fiber.StatusUnprocessableEntity},
		{asset.ErrInvalidCharge, fiber.StatusUnprocessableEntity},
		{fmt.Errorf("%w: pending to approved", giftcard.ErrInvalidTransition), fiber.StatusConflict},
		{wallet.ErrWalletLocked, fiber.StatusForbidden},
		{giftcard.ErrTradeNotFound, fiber.StatusNotFound},
		{fmt.Errorf("connection reset"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
