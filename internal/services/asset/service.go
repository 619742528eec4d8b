// Package asset runs the crypto desk: the asset catalog with its buy and sell
// rates, and user buy and sell trades through to settlement.
package asset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tradedesk/internal/models"
	"tradedesk/internal/repositories/cache"
	"tradedesk/internal/services/breakdown"
	"tradedesk/internal/services/notification"
	"tradedesk/internal/services/referral"
	"tradedesk/internal/services/wallet"
	cachekeys "tradedesk/internal/utils/cache"
	"tradedesk/internal/utils/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db        *gorm.DB
	wallets   wallet.Service
	referrals referral.Service
	notifier  notification.Notifier
	cache     cache.Store
	logger    *zap.Logger
}

func NewService(db *gorm.DB, wallets wallet.Service, referrals referral.Service, notifier notification.Notifier, store cache.Store, logger *zap.Logger) Service {
	if notifier == nil {
		notifier = notification.Discard{}
	}
	if store == nil {
		store = cache.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		db:        db,
		wallets:   wallets,
		referrals: referrals,
		notifier:  notifier,
		cache:     store,
		logger:    logger,
	}
}

func assetKey(id uint) string {
	return cachekeys.GenerateKey(cachekeys.EntityAsset, cachekeys.KeyID, id)
}

func (s *service) CreateAsset(ctx context.Context, req AssetRequest) (*models.Asset, error) {
	if err := checkLimits(req); err != nil {
		return nil, err
	}

	asset := &models.Asset{
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:           strings.TrimSpace(req.Name),
		Network:        req.Network,
		BuyRate:        req.BuyRate,
		SellRate:       req.SellRate,
		ChargePercent:  req.ChargePercent,
		ChargeCap:      req.ChargeCap,
		MinAmount:      req.MinAmount,
		MaxAmount:      req.MaxAmount,
		DepositAddress: req.DepositAddress,
		Active:         true,
	}
	if req.Active != nil {
		asset.Active = *req.Active
	}
	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAssetExists
		}
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}
	s.logger.Info("asset created", zap.String("code", asset.Code))
	return asset, nil
}

func (s *service) UpdateAsset(ctx context.Context, id uint, req AssetRequest) (*models.Asset, error) {
	if err := checkLimits(req); err != nil {
		return nil, err
	}
	asset, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"code":            strings.ToUpper(strings.TrimSpace(req.Code)),
		"name":            strings.TrimSpace(req.Name),
		"network":         req.Network,
		"buy_rate":        req.BuyRate,
		"sell_rate":       req.SellRate,
		"charge_percent":  req.ChargePercent,
		"charge_cap":      req.ChargeCap,
		"min_amount":      req.MinAmount,
		"max_amount":      req.MaxAmount,
		"deposit_address": req.DepositAddress,
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := s.db.WithContext(ctx).Model(asset).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAssetExists
		}
		return nil, fmt.Errorf("failed to update asset: %w", err)
	}
	s.invalidate(ctx, id)
	return s.load(ctx, id)
}

func (s *service) UpdateRates(ctx context.Context, id uint, req RatesRequest) (*models.Asset, error) {
	asset, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(asset).Updates(map[string]interface{}{
		"buy_rate":  req.BuyRate,
		"sell_rate": req.SellRate,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update rates: %w", err)
	}
	s.invalidate(ctx, id)
	s.logger.Info("asset rates updated",
		zap.String("code", asset.Code),
		zap.String("buy_rate", req.BuyRate.String()),
		zap.String("sell_rate", req.SellRate.String()))
	asset.BuyRate = req.BuyRate
	asset.SellRate = req.SellRate
	return asset, nil
}

func (s *service) DeleteAsset(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Asset{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete asset: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAssetNotFound
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *service) GetAsset(ctx context.Context, id uint) (*models.Asset, error) {
	var cached models.Asset
	if found, err := s.cache.Get(ctx, assetKey(id), &cached); err == nil && found {
		return &cached, nil
	}
	asset, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetWithTTL(ctx, assetKey(id), asset, catalogTTL); err != nil {
		s.logger.Warn("asset cache write failed", zap.Uint("asset_id", id), zap.Error(err))
	}
	return asset, nil
}

func (s *service) ListAssets(ctx context.Context, q pagination.Query, activeOnly bool) ([]models.Asset, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.Asset{})
	if activeOnly {
		db = db.Where("active = ?", true)
	}
	db = q.Filter(db)
	if q.Search != "" {
		term := "%" + strings.ToLower(q.Search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", term, term)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assets: %w", err)
	}
	var assets []models.Asset
	if err := q.Page(db).Find(&assets).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, total, nil
}

func (s *service) load(ctx context.Context, id uint) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.WithContext(ctx).First(&asset, id).Error; err != nil {
		return nil, notFound(err, ErrAssetNotFound)
	}
	return &asset, nil
}

func (s *service) invalidate(ctx context.Context, id uint) {
	if err := s.cache.Delete(ctx, assetKey(id)); err != nil {
		s.logger.Warn("asset cache invalidation failed", zap.Uint("asset_id", id), zap.Error(err))
	}
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func checkLimits(req AssetRequest) error {
	if req.MaxAmount.IsPositive() && req.MaxAmount.LessThan(req.MinAmount) {
		return ErrInvalidLimits
	}
	if !breakdown.ValidCharge(req.ChargePercent) {
		return ErrInvalidCharge
	}
	return nil
}
