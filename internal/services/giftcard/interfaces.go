package giftcard

import (
	"context"

	"tradedesk/internal/models"
	"tradedesk/internal/services/breakdown"
	"tradedesk/internal/utils/pagination"
)

type Service interface {
	// Categories
	CreateCategory(ctx context.Context, req CategoryRequest) (*models.GiftcardCategory, error)
	UpdateCategory(ctx context.Context, id uint, req CategoryRequest) (*models.GiftcardCategory, error)
	DeleteCategory(ctx context.Context, id uint) error
	ListCategories(ctx context.Context, activeOnly bool) ([]models.GiftcardCategory, error)

	// Giftcards
	CreateGiftcard(ctx context.Context, req GiftcardRequest) (*models.Giftcard, error)
	UpdateGiftcard(ctx context.Context, id uint, req GiftcardRequest) (*models.Giftcard, error)
	UpdateRate(ctx context.Context, id uint, req RateRequest) (*models.Giftcard, error)
	DeleteGiftcard(ctx context.Context, id uint) error
	GetGiftcard(ctx context.Context, id uint) (*models.Giftcard, error)
	ListGiftcards(ctx context.Context, q pagination.Query, activeOnly bool) ([]models.Giftcard, int64, error)

	// Trades
	Quote(ctx context.Context, req QuoteRequest) (*breakdown.Breakdown, error)
	Submit(ctx context.Context, userID uint, req SubmitRequest) (*models.GiftcardTransaction, error)
	Review(ctx context.Context, adminID, id uint, req ReviewRequest) (*models.GiftcardTransaction, error)
	GetTrade(ctx context.Context, id uint) (*models.GiftcardTransaction, error)
	GetUserTrade(ctx context.Context, userID, id uint) (*models.GiftcardTransaction, error)
	ListTrades(ctx context.Context, q pagination.Query) ([]models.GiftcardTransaction, int64, error)
}
