// Package dashboard aggregates the back-office overview.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"tradedesk/internal/models"
	"tradedesk/internal/repositories"
	"tradedesk/internal/repositories/cache"
	cachekeys "tradedesk/internal/utils/cache"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const statsTTL = time.Minute

var statsKey = cachekeys.GenerateKey(cachekeys.EntityDashboard, cachekeys.KeyStats, "admin")

var settled = []string{models.TradeApproved, models.TradePartiallyApproved, models.TradeTransferred}

type Service interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

type service struct {
	db      *gorm.DB
	wallets repositories.WalletRepository
	cache   cache.Store
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(db *gorm.DB, wallets repositories.WalletRepository, store cache.Store, logger *zap.Logger) Service {
	if store == nil {
		store = cache.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{db: db, wallets: wallets, cache: store, logger: logger, now: time.Now}
}

// Stats is cached for a minute; counts may lag reviews by that much.
func (s *service) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var cached models.DashboardStats
	if found, err := s.cache.Get(ctx, statsKey, &cached); err == nil && found {
		return &cached, nil
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetWithTTL(ctx, statsKey, stats, statsTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return stats, nil
}

func (s *service) compute(ctx context.Context) (*models.DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &models.DashboardStats{}

	counts := []struct {
		name  string
		dest  *int64
		query *gorm.DB
	}{
		{"users", &stats.TotalUsers, db.Model(&models.User{}).Where("is_admin = ?", false)},
		{"verified users", &stats.VerifiedUsers, db.Model(&models.User{}).Where("is_admin = ? AND kyc_status = ?", false, models.KYCVerified)},
		{"pending giftcard trades", &stats.PendingGiftcardTrades, db.Model(&models.GiftcardTransaction{}).Where("status = ?", models.TradePending)},
		{"pending asset trades", &stats.PendingAssetTrades, db.Model(&models.AssetTransaction{}).Where("status = ?", models.TradePending)},
		{"pending withdrawals", &stats.PendingWithdrawals, db.Model(&models.Withdrawal{}).Where("status = ?", models.WithdrawalPending)},
		{"pending kyc", &stats.PendingKYC, db.Model(&models.KYCVerification{}).Where("status = ?", models.KYCPending)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
	}

	total, err := s.wallets.TotalBalance(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalWalletBalance = total

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	giftcards, err := s.settledSince(db.Model(&models.GiftcardTransaction{}), startOfDay)
	if err != nil {
		return nil, fmt.Errorf("failed to sum giftcard payouts: %w", err)
	}
	assets, err := s.settledSince(db.Model(&models.AssetTransaction{}).Where("side = ?", models.SideSell), startOfDay)
	if err != nil {
		return nil, fmt.Errorf("failed to sum asset payouts: %w", err)
	}
	var deliveries int64
	if err := db.Model(&models.AssetTransaction{}).
		Where("side = ? AND status IN ? AND reviewed_at >= ?", models.SideBuy, settled, startOfDay).
		Count(&deliveries).Error; err != nil {
		return nil, fmt.Errorf("failed to count asset deliveries: %w", err)
	}

	stats.TodayGiftcardPayouts = giftcards.Total
	stats.TodayAssetPayouts = assets.Total
	stats.TodaySettledTradeCount = giftcards.Count + assets.Count + deliveries
	return stats, nil
}

type volume struct {
	Count int64
	Total decimal.Decimal
}

func (s *service) settledSince(query *gorm.DB, since time.Time) (volume, error) {
	var v volume
	err := query.
		Select("COUNT(*) AS count, COALESCE(SUM(paid_amount), 0) AS total").
		Where("status IN ? AND reviewed_at >= ?", settled, since).
		Scan(&v).Error
	return v, err
}
