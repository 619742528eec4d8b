package asset

import (
	"context"

	"tradedesk/internal/models"
	"tradedesk/internal/services/breakdown"
	"tradedesk/internal/utils/pagination"
)

type Service interface {
	CreateAsset(ctx context.Context, req AssetRequest) (*models.Asset, error)
	UpdateAsset(ctx context.Context, id uint, req AssetRequest) (*models.Asset, error)
	UpdateRates(ctx context.Context, id uint, req RatesRequest) (*models.Asset, error)
	DeleteAsset(ctx context.Context, id uint) error
	GetAsset(ctx context.Context, id uint) (*models.Asset, error)
	ListAssets(ctx context.Context, q pagination.Query, activeOnly bool) ([]models.Asset, int64, error)

	Quote(ctx context.Context, req QuoteRequest) (*breakdown.Breakdown, error)
	Buy(ctx context.Context, userID uint, req BuyRequest) (*models.AssetTransaction, error)
	Sell(ctx context.Context, userID uint, req SellRequest) (*models.AssetTransaction, error)
	Review(ctx context.Context, adminID, id uint, req ReviewRequest) (*models.AssetTransaction, error)
	GetTrade(ctx context.Context, id uint) (*models.AssetTransaction, error)
	GetUserTrade(ctx context.Context, userID, id uint) (*models.AssetTransaction, error)
	ListTrades(ctx context.Context, q pagination.Query) ([]models.AssetTransaction, int64, error)
}
