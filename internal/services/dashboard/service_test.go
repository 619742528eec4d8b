package dashboard

import (
	"context"
	"testing"
	"time"

	"tradedesk/internal/models"
	"tradedesk/internal/repositories"
	"tradedesk/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	sets int
}

func (m *memoryStore) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (m *memoryStore) Set(context.Context, string, interface{}) error         { return nil }
func (m *memoryStore) SetWithTTL(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
	m.sets++
	return nil
}
func (m *memoryStore) Delete(context.Context, ...string) error { return nil }
func (m *memoryStore) HealthCheck(context.Context) error       { return nil }
func (m *memoryStore) Close() error                            { return nil }

func TestStats(t *testing.T) {
	db := testutil.NewDB(t)
	store := &memoryStore{}
	svc := NewService(db, repositories.NewWalletRepository(db), store, nil)

	a := testutil.CreateUser(t, db, "a@example.com", "08090000001")
	b := testutil.CreateUser(t, db, "b@example.com", "08090000002")
	require.NoError(t, db.Model(b).Update("kyc_status", models.KYCVerified).Error)
	testutil.SetBalance(t, db, a.ID, "1000.50")
	testutil.SetBalance(t, db, b.ID, "99.50")

	now := time.Now()
	yesterday := now.Add(-48 * time.Hour)
	trades := []models.GiftcardTransaction{
		{Reference: "GCT-1", UserID: a.ID, GiftcardID: 1, CardType: models.CardTypeECode, Status: models.TradePending},
		{Reference: "GCT-2", UserID: a.ID, GiftcardID: 1, CardType: models.CardTypeECode, Status: models.TradeApproved, PaidAmount: decimal.NewFromInt(7000), ReviewedAt: &now},
		{Reference: "GCT-3", UserID: b.ID, GiftcardID: 1, CardType: models.CardTypeECode, Status: models.TradeApproved, PaidAmount: decimal.NewFromInt(9000), ReviewedAt: &yesterday},
	}
	require.NoError(t, db.Create(&trades).Error)
	require.NoError(t, db.Create(&[]models.AssetTransaction{
		{Reference: "AST-1", UserID: a.ID, AssetID: 1, Side: models.SideSell, Status: models.TradePartiallyApproved, PaidAmount: decimal.NewFromInt(3000), ReviewedAt: &now},
		{Reference: "AST-2", UserID: a.ID, AssetID: 1, Side: models.SideBuy, Status: models.TradeTransferred, PaidAmount: decimal.NewFromInt(5000), ReviewedAt: &now},
		{Reference: "AST-3", UserID: b.ID, AssetID: 1, Side: models.SideBuy, Status: models.TradePending},
	}).Error)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.VerifiedUsers)
	assert.EqualValues(t, 1, stats.PendingGiftcardTrades)
	assert.EqualValues(t, 1, stats.PendingAssetTrades)
	assert.Equal(t, "1100.00", stats.TotalWalletBalance.StringFixed(2))
	assert.Equal(t, "7000.00", stats.TodayGiftcardPayouts.StringFixed(2))
	assert.Equal(t, "3000.00", stats.TodayAssetPayouts.StringFixed(2))
	assert.EqualValues(t, 3, stats.TodaySettledTradeCount)
	assert.Equal(t, 1, store.sets)
}
