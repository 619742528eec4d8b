package giftcard

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

var categoriesKey = cachekeys.GenerateKey(cachekeys.EntityCatalog, cachekeys.KeyList, "giftcard-categories")

func giftcardKey(id uint) string {
	return cachekeys.GenerateKey(cachekeys.EntityGiftcard, cachekeys.KeyID, id)
}

func (s *service) CreateCategory(ctx context.Context, req CategoryRequest) (*models.GiftcardCategory, error) {
	name := strings.TrimSpace(req.Name)
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.GiftcardCategory{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCategoryExists
	}

	category := &models.GiftcardCategory{Name: name, IconURL: req.IconURL, Active: true}
	if req.Active != nil {
		category.Active = *req.Active
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uint, req CategoryRequest) (*models.GiftcardCategory, error) {
	var category models.GiftcardCategory
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}

	updates := map[string]interface{}{
		"name":     strings.TrimSpace(req.Name),
		"icon_url": req.IconURL,
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := s.db.WithContext(ctx).Model(&category).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	s.invalidate(ctx)
	return &category, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Giftcard{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	result := s.db.WithContext(ctx).Delete(&models.GiftcardCategory{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) ListCategories(ctx context.Context, activeOnly bool) ([]models.GiftcardCategory, error) {
	if activeOnly {
		var cached []models.GiftcardCategory
		if found, err := s.cache.Get(ctx, categoriesKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	db := s.db.WithContext(ctx).Order("name")
	if activeOnly {
		db = db.Where("active = ?", true)
	}
	var categories []models.GiftcardCategory
	if err := db.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if activeOnly {
		if err := s.cache.SetWithTTL(ctx, categoriesKey, categories, catalogTTL); err != nil {
			s.logger.Warn("category cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

func (s *service) CreateGiftcard(ctx context.Context, req GiftcardRequest) (*models.Giftcard, error) {
	if err := checkLimits(req); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).First(&models.GiftcardCategory{}, req.CategoryID).Error; err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}

	card := &models.Giftcard{
		CategoryID:    req.CategoryID,
		Name:          strings.TrimSpace(req.Name),
		Country:       strings.TrimSpace(req.Country),
		Currency:      strings.ToUpper(req.Currency),
		CardType:      req.CardType,
		Rate:          req.Rate,
		ChargePercent: req.ChargePercent,
		ChargeCap:     req.ChargeCap,
		MinAmount:     req.MinAmount,
		MaxAmount:     req.MaxAmount,
		Active:        true,
	}
	if req.Active != nil {
		card.Active = *req.Active
	}
	if err := s.db.WithContext(ctx).Create(card).Error; err != nil {
		return nil, fmt.Errorf("failed to create giftcard: %w", err)
	}
	return card, nil
}

func (s *service) UpdateGiftcard(ctx context.Context, id uint, req GiftcardRequest) (*models.Giftcard, error) {
	if err := checkLimits(req); err != nil {
		return nil, err
	}
	card, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if card.CategoryID != req.CategoryID {
		if err := s.db.WithContext(ctx).First(&models.GiftcardCategory{}, req.CategoryID).Error; err != nil {
			return nil, notFound(err, ErrCategoryNotFound)
		}
	}

	updates := map[string]interface{}{
		"category_id":    req.CategoryID,
		"name":           strings.TrimSpace(req.Name),
		"country":        strings.TrimSpace(req.Country),
		"currency":       strings.ToUpper(req.Currency),
		"card_type":      req.CardType,
		"rate":           req.Rate,
		"charge_percent": req.ChargePercent,
		"charge_cap":     req.ChargeCap,
		"min_amount":     req.MinAmount,
		"max_amount":     req.MaxAmount,
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if err := s.db.WithContext(ctx).Model(card).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update giftcard: %w", err)
	}
	s.invalidate(ctx, id)
	return s.load(ctx, id)
}

func (s *service) UpdateRate(ctx context.Context, id uint, req RateRequest) (*models.Giftcard, error) {
	card, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(card).Update("rate", req.Rate).Error; err != nil {
		return nil, fmt.Errorf("failed to update rate: %w", err)
	}
	s.invalidate(ctx, id)
	s.logger.Info("giftcard rate updated", zap.Uint("giftcard_id", id), zap.String("rate", req.Rate.String()))
	card.Rate = req.Rate
	return card, nil
}

func (s *service) DeleteGiftcard(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Giftcard{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete giftcard: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGiftcardNotFound
	}
	s.invalidate(ctx, id)
	return nil
}

// GetGiftcard serves the catalog entry, and with it the current rate, from cache.
func (s *service) GetGiftcard(ctx context.Context, id uint) (*models.Giftcard, error) {
	var cached models.Giftcard
	if found, err := s.cache.Get(ctx, giftcardKey(id), &cached); err == nil && found {
		return &cached, nil
	}
	card, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetWithTTL(ctx, giftcardKey(id), card, catalogTTL); err != nil {
		s.logger.Warn("giftcard cache write failed", zap.Uint("giftcard_id", id), zap.Error(err))
	}
	return card, nil
}

func (s *service) ListGiftcards(ctx context.Context, q pagination.Query, activeOnly bool) ([]models.Giftcard, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.Giftcard{})
	if activeOnly {
		db = db.Where("active = ?", true)
	}
	db = q.Filter(db)
	if q.Search != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count giftcards: %w", err)
	}
	var cards []models.Giftcard
	if err := q.Page(db).Preload("Category").Find(&cards).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list giftcards: %w", err)
	}
	return cards, total, nil
}

func (s *service) load(ctx context.Context, id uint) (*models.Giftcard, error) {
	var card models.Giftcard
	if err := s.db.WithContext(ctx).First(&card, id).Error; err != nil {
		return nil, notFound(err, ErrGiftcardNotFound)
	}
	return &card, nil
}

func (s *service) invalidate(ctx context.Context, giftcardIDs ...uint) {
	keys := []string{categoriesKey}
	for _, id := range giftcardIDs {
		keys = append(keys, giftcardKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

func checkLimits(req GiftcardRequest) error {
	if req.MaxAmount.IsPositive() && req.MaxAmount.LessThan(req.MinAmount) {
		return ErrInvalidLimits
	}
	if !breakdown.ValidCharge(req.ChargePercent) {
		return ErrInvalidCharge
	}
	return nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
