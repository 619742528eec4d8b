package referral

import (
	"context"
	"testing"

	"tradedesk/internal/models"
	"tradedesk/internal/services/wallet"
	"tradedesk/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      Service
	wallets  wallet.Service
	referrer *models.User
	referee  *models.User
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	wallets := wallet.NewService(wallet.Deps{DB: db}, wallet.Config{Currency: "NGN"})
	svc := NewService(db, wallets, nil, Config{Reward: cfg.Referral.Reward, MinTrade: cfg.Referral.MinTrade}, nil)

	referrer := testutil.CreateUser(t, db, "ref@example.com", "08010000001")
	referee := testutil.CreateUser(t, db, "new@example.com", "08010000002")
	require.NoError(t, db.Model(referee).Update("referred_by_id", referrer.ID).Error)
	return fixture{db: db, svc: svc, wallets: wallets, referrer: referrer, referee: referee}
}

func (f fixture) reward(t *testing.T, userID uint, ref, payable string) *models.Referral {
	t.Helper()
	var out *models.Referral
	err := f.db.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = f.svc.RewardFirstTrade(context.Background(), tx, userID, ref, decimal.RequireFromString(payable))
		return err
	})
	require.NoError(t, err)
	return out
}

func TestRewardFirstTrade(t *testing.T) {
	f := setup(t)

	assert.Nil(t, f.reward(t, f.referee.ID, "GCT-SMALL", "4999.99"))
	assert.Equal(t, "0.00", testutil.Balance(t, f.db, f.referrer.ID).StringFixed(2))

	r := f.reward(t, f.referee.ID, "GCT-FIRST", "5000")
	require.NotNil(t, r)
	assert.Equal(t, f.referrer.ID, r.ReferrerID)
	assert.Equal(t, "500.00", testutil.Balance(t, f.db, f.referrer.ID).StringFixed(2))

	assert.Nil(t, f.reward(t, f.referee.ID, "GCT-SECOND", "90000"))
	assert.Equal(t, "500.00", testutil.Balance(t, f.db, f.referrer.ID).StringFixed(2))

	var entry models.WalletTransaction
	require.NoError(t, f.db.Where("user_id = ?", f.referrer.ID).First(&entry).Error)
	assert.Equal(t, "REF-"+itoa(f.referee.ID), entry.Reference)
	assert.Equal(t, models.SourceReferral, entry.Source)
}

func TestRewardSkipsAlreadyRewardedReferee(t *testing.T) {
	f := setup(t)
	// another settlement committed the reward first
	require.NoError(t, f.db.Create(&models.Referral{
		ReferrerID:     f.referrer.ID,
		RefereeID:      f.referee.ID,
		Amount:         decimal.NewFromInt(500),
		TradeReference: "GCT-OTHER",
		Status:         models.ReferralRewarded,
	}).Error)

	assert.Nil(t, f.reward(t, f.referee.ID, "GCT-LATE", "90000"))
	assert.Equal(t, "0.00", testutil.Balance(t, f.db, f.referrer.ID).StringFixed(2))
}

func TestRewardSkipsUsersWithoutReferrer(t *testing.T) {
	f := setup(t)
	assert.Nil(t, f.reward(t, f.referrer.ID, "GCT-1", "100000"))
}

func TestRewardSkipsLockedReferrer(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.wallets.Lock(context.Background(), f.referrer.ID, "review"))

	assert.Nil(t, f.reward(t, f.referee.ID, "GCT-1", "100000"))

	var count int64
	require.NoError(t, f.db.Model(&models.Referral{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestList(t *testing.T) {
	f := setup(t)
	f.reward(t, f.referee.ID, "GCT-1", "6000")
	testutil.CreateUser(t, f.db, "other@example.com", "08010000003")

	summary, err := f.svc.List(context.Background(), f.referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, f.referrer.ReferralCode, summary.ReferralCode)
	assert.Equal(t, 1, summary.RewardedCount)
	assert.Equal(t, "500.00", summary.TotalEarned.StringFixed(2))
	require.Len(t, summary.Referees, 1)
	assert.True(t, summary.Referees[0].Rewarded)
}

func itoa(v uint) string {
	return decimal.NewFromInt(int64(v)).String()
}
