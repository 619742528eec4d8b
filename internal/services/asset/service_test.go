package asset

import (
	"context"
	"testing"

	"tradedesk/internal/models"
	"tradedesk/internal/services/referral"
	"tradedesk/internal/services/wallet"
	"tradedesk/internal/testutil"
	"tradedesk/internal/utils/pagination"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   Service
	user  *models.User
	asset *models.Asset
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	wallets := wallet.NewService(wallet.Deps{DB: db}, wallet.Config{Currency: "NGN"})
	referrals := referral.NewService(db, wallets, nil, referral.Config{Reward: cfg.Referral.Reward, MinTrade: cfg.Referral.MinTrade}, nil)
	svc := NewService(db, wallets, referrals, nil, nil, nil)

	asset, err := svc.CreateAsset(context.Background(), AssetRequest{
		Code:          "usdt",
		Name:          "Tether",
		Network:       "TRC20",
		BuyRate:       d("1600"),
		SellRate:      d("1500"),
		ChargePercent: d("1"),
		ChargeCap:     d("1000"),
		MinAmount:     d("10"),
	})
	require.NoError(t, err)

	user := testutil.CreateUser(t, db, "crypto@example.com", "08030000001")
	return fixture{db: db, svc: svc, user: user, asset: asset}
}

func TestCatalog(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	assert.Equal(t, "USDT", f.asset.Code)

	_, err := f.svc.CreateAsset(ctx, AssetRequest{Code: "USDT", Name: "Again", BuyRate: d("1"), SellRate: d("1")})
	assert.ErrorIs(t, err, ErrAssetExists)

	updated, err := f.svc.UpdateRates(ctx, f.asset.ID, RatesRequest{BuyRate: d("1650"), SellRate: d("1550")})
	require.NoError(t, err)
	assert.Equal(t, "1650", updated.BuyRate.String())

	got, err := f.svc.GetAsset(ctx, f.asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "1550.00", got.SellRate.StringFixed(2))

	inactive := false
	_, err = f.svc.UpdateAsset(ctx, f.asset.ID, AssetRequest{
		Code: "USDT", Name: "Tether", BuyRate: d("1650"), SellRate: d("1550"), Active: &inactive,
	})
	require.NoError(t, err)
	assets, total, err := f.svc.ListAssets(ctx, pagination.NewQuery(nil), true)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, assets)

	_, err = f.svc.CreateAsset(ctx, AssetRequest{Code: "BTC", Name: "Bitcoin", BuyRate: d("1"), SellRate: d("1"), ChargePercent: d("150")})
	assert.ErrorIs(t, err, ErrInvalidCharge)
	_, err = f.svc.UpdateAsset(ctx, f.asset.ID, AssetRequest{Code: "USDT", Name: "Tether", BuyRate: d("1"), SellRate: d("1"), ChargePercent: d("-1")})
	assert.ErrorIs(t, err, ErrInvalidCharge)

	require.NoError(t, f.svc.DeleteAsset(ctx, f.asset.ID))
	assert.ErrorIs(t, f.svc.DeleteAsset(ctx, f.asset.ID), ErrAssetNotFound)
}

func TestQuote(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	buy, err := f.svc.Quote(ctx, QuoteRequest{AssetID: f.asset.ID, Side: models.SideBuy, Amount: d("100")})
	require.NoError(t, err)
	assert.Equal(t, "160000.00", buy.Gross.StringFixed(2))
	assert.Equal(t, "161000.00", buy.Payable.StringFixed(2))

	sell, err := f.svc.Quote(ctx, QuoteRequest{AssetID: f.asset.ID, Side: models.SideSell, Amount: d("100")})
	require.NoError(t, err)
	assert.Equal(t, "149000.00", sell.Payable.StringFixed(2))

	// charge capped at 1000
	big, err := f.svc.Quote(ctx, QuoteRequest{AssetID: f.asset.ID, Side: models.SideSell, Amount: d("1000")})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", big.ServiceCharge.StringFixed(2))

	_, err = f.svc.Quote(ctx, QuoteRequest{AssetID: f.asset.ID, Side: models.SideBuy, Amount: d("9.99")})
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	_, err = f.svc.Quote(ctx, QuoteRequest{AssetID: f.asset.ID, Side: "swap", Amount: d("100")})
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestBuyDebitsImmediately(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	req := BuyRequest{AssetID: f.asset.ID, Amount: d("100"), WalletAddress: "TXyz123"}

	_, err := f.svc.Buy(ctx, f.user.ID, req)
	assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)
	var count int64
	require.NoError(t, f.db.Model(&models.AssetTransaction{}).Count(&count).Error)
	assert.Zero(t, count, "trade must roll back with the failed debit")

	_, err = f.svc.Buy(ctx, f.user.ID, BuyRequest{AssetID: f.asset.ID, Amount: d("100")})
	assert.ErrorIs(t, err, ErrAddressRequired)

	testutil.SetBalance(t, f.db, f.user.ID, "200000")
	trade, err := f.svc.Buy(ctx, f.user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.SideBuy, trade.Side)
	assert.Equal(t, "39000.00", testutil.Balance(t, f.db, f.user.ID).StringFixed(2))

	var entry models.WalletTransaction
	require.NoError(t, f.db.Where("reference = ?", trade.Reference+DebitSuffix).First(&entry).Error)
	assert.Equal(t, models.EntryDebit, entry.Type)
}

func TestReviewBuy(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.SetBalance(t, f.db, f.user.ID, "400000")

	first, err := f.svc.Buy(ctx, f.user.ID, BuyRequest{AssetID: f.asset.ID, Amount: d("100"), WalletAddress: "TXyz123"})
	require.NoError(t, err)
	second, err := f.svc.Buy(ctx, f.user.ID, BuyRequest{AssetID: f.asset.ID, Amount: d("100"), WalletAddress: "TXyz123"})
	require.NoError(t, err)
	assert.Equal(t, "78000.00", testutil.Balance(t, f.db, f.user.ID).StringFixed(2))

	_, err = f.svc.Review(ctx, 1, first.ID, ReviewRequest{Status: models.TradeTransferred})
	assert.ErrorIs(t, err, ErrTxHashRequired)
	_, err = f.svc.Review(ctx, 1, first.ID, ReviewRequest{Status: models.TradeApproved})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	done, err := f.svc.Review(ctx, 1, first.ID, ReviewRequest{Status: models.TradeTransferred, TxHash: "0xabc"})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", done.TxHash)
	assert.Equal(t, "78000.00", testutil.Balance(t, f.db, f.user.ID).StringFixed(2))

	// a locked wallet still receives the refund
	require.NoError(t, f.db.Model(&models.Wallet{}).Where("user_id = ?", f.user.ID).
		Update("status", models.WalletStatusLocked).Error)
	declined, err := f.svc.Review(ctx, 1, second.ID, ReviewRequest{Status: models.TradeDeclined, Note: "address invalid"})
	require.NoError(t, err)
	assert.Equal(t, models.TradeDeclined, declined.Status)
	assert.Equal(t, "239000.00", testutil.Balance(t, f.db, f.user.ID).StringFixed(2))

	var refund models.WalletTransaction
	require.NoError(t, f.db.Where("reference = ?", second.Reference+RefundSuffix).First(&refund).Error)
	assert.Equal(t, models.EntryCredit, refund.Type)
}

func TestSellAndReview(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Sell(ctx, f.user.ID, SellRequest{AssetID: f.asset.ID, Amount: d("100")})
	assert.ErrorIs(t, err, ErrProofRequired)

	trade, err := f.svc.Sell(ctx, f.user.ID, SellRequest{AssetID: f.asset.ID, Amount: d("100"), TxHash: "0xin"})
	require.NoError(t, err)
	assert.True(t, testutil.Balance(t, f.db, f.user.ID).IsZero())

	_, err = f.svc.Review(ctx, 1, trade.ID, ReviewRequest{Status: models.TradeTransferred, TxHash: "0x"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// rounds to the full 100 units
	_, err = f.svc.Review(ctx, 1, trade.ID, ReviewRequest{
		Status:         models.TradePartiallyApproved,
		ReviewedAmount: func() *decimal.Decimal { v := d("99.999999999"); return &v }(),
	})
	assert.ErrorIs(t, err, ErrInvalidReviewedAmount)

	reviewed, err := f.svc.Review(ctx, 1, trade.ID, ReviewRequest{
		Status:         models.TradePartiallyApproved,
		ReviewedAmount: func() *decimal.Decimal { v := d("40"); return &v }(),
	})
	require.NoError(t, err)
	// 40 x 1500 = 60000, less 1%
	assert.Equal(t, "59400.00", reviewed.PaidAmount.StringFixed(2))
	assert.Equal(t, "59400.00", testutil.Balance(t, f.db, f.user.ID).StringFixed(2))

	trades, total, err := f.svc.ListTrades(ctx, pagination.NewQuery(map[string]string{"side": models.SideSell}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, trade.Reference, trades[0].Reference)

	_, err = f.svc.GetUserTrade(ctx, f.user.ID+1, trade.ID)
	assert.ErrorIs(t, err, ErrTradeNotFound)
}
