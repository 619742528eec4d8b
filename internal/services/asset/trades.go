package asset

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradedesk/internal/metrics"
	"tradedesk/internal/models"
	"tradedesk/internal/services/breakdown"
	"tradedesk/internal/services/wallet"
	"tradedesk/internal/utils"
	"tradedesk/internal/utils/pagination"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *service) Quote(ctx context.Context, req QuoteRequest) (*breakdown.Breakdown, error) {
	if req.Side != models.SideBuy && req.Side != models.SideSell {
		return nil, ErrInvalidSide
	}
	asset, amount, err := s.tradable(ctx, req.AssetID, req.Amount)
	if err != nil {
		return nil, err
	}
	b, err := price(asset, req.Side, amount)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Buy debits the payable up front. The desk then sends the asset to
// WalletAddress and marks the trade transferred, or declines and refunds.
func (s *service) Buy(ctx context.Context, userID uint, req BuyRequest) (*models.AssetTransaction, error) {
	address := strings.TrimSpace(req.WalletAddress)
	if address == "" {
		return nil, ErrAddressRequired
	}
	asset, amount, err := s.tradable(ctx, req.AssetID, req.Amount)
	if err != nil {
		return nil, err
	}
	b, err := price(asset, models.SideBuy, amount)
	if err != nil {
		return nil, err
	}

	trade := newTrade(userID, asset, b)
	trade.WalletAddress = address
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(trade).Error; err != nil {
			return fmt.Errorf("failed to create asset trade: %w", err)
		}
		_, err := s.wallets.Debit(ctx, tx, wallet.Operation{
			UserID:    userID,
			Amount:    trade.Payable,
			Reference: trade.Reference + DebitSuffix,
			Source:    models.SourceAssetTrade,
			Narration: fmt.Sprintf("Buy %s %s", trade.Amount.String(), asset.Code),
			Metadata:  map[string]interface{}{"trade_id": trade.ID},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.wallets.Invalidate(ctx, userID)

	s.submitted(trade)
	return trade, nil
}

func (s *service) Sell(ctx context.Context, userID uint, req SellRequest) (*models.AssetTransaction, error) {
	txHash := strings.TrimSpace(req.TxHash)
	proof := strings.TrimSpace(req.ProofURL)
	if txHash == "" && proof == "" {
		return nil, ErrProofRequired
	}
	asset, amount, err := s.tradable(ctx, req.AssetID, req.Amount)
	if err != nil {
		return nil, err
	}
	b, err := price(asset, models.SideSell, amount)
	if err != nil {
		return nil, err
	}

	trade := newTrade(userID, asset, b)
	trade.TxHash = txHash
	trade.ProofURL = proof
	if err := s.db.WithContext(ctx).Create(trade).Error; err != nil {
		return nil, fmt.Errorf("failed to create asset trade: %w", err)
	}

	s.submitted(trade)
	return trade, nil
}

func (s *service) Review(ctx context.Context, adminID, id uint, req ReviewRequest) (*models.AssetTransaction, error) {
	if !models.IsTradeStatus(req.Status) {
		return nil, ErrInvalidStatus
	}
	note := strings.TrimSpace(req.Note)
	if req.Status == models.TradeDeclined && note == "" {
		return nil, ErrNoteRequired
	}

	var (
		trade  models.AssetTransaction
		reward *models.Referral
		moved  bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&trade, id).Error; err != nil {
			return notFound(err, ErrTradeNotFound)
		}
		if !models.CanTransition(trade.Side, trade.Status, req.Status) {
			return fmt.Errorf("%w: %s %s to %s", ErrInvalidTransition, trade.Side, trade.Status, req.Status)
		}

		if trade.Side == models.SideBuy {
			if req.Status == models.TradeTransferred {
				if strings.TrimSpace(req.TxHash) == "" {
					return ErrTxHashRequired
				}
				trade.TxHash = strings.TrimSpace(req.TxHash)
			}
		} else if err := reprice(&trade, req); err != nil {
			return err
		}

		now := time.Now()
		trade.Status = req.Status
		trade.ReviewNote = note
		trade.ReviewedBy = &adminID
		trade.ReviewedAt = &now
		if models.IsSettled(trade.Status) {
			trade.PaidAmount = trade.Payable
		}
		if err := tx.Model(&trade).Select(
			"status", "review_note", "reviewed_by", "reviewed_at", "tx_hash", "rate",
			"gross", "service_charge", "payable", "reviewed_amount", "paid_amount",
		).Updates(&trade).Error; err != nil {
			return fmt.Errorf("failed to update asset trade: %w", err)
		}

		switch {
		case trade.Side == models.SideBuy && trade.Status == models.TradeDeclined:
			moved = true
			_, err := s.wallets.Credit(ctx, tx, wallet.Operation{
				UserID:      trade.UserID,
				Amount:      trade.Payable,
				Reference:   trade.Reference + RefundSuffix,
				Source:      models.SourceAssetTrade,
				Narration:   "Asset purchase declined: " + note,
				Metadata:    map[string]interface{}{"trade_id": trade.ID},
				AllowLocked: true,
			})
			return err
		case trade.Side == models.SideSell && models.IsSettled(trade.Status):
			moved = true
			if _, err := s.wallets.Credit(ctx, tx, wallet.Operation{
				UserID:    trade.UserID,
				Amount:    trade.PaidAmount,
				Reference: trade.Reference + PayoutSuffix,
				Source:    models.SourceAssetTrade,
				Narration: "Asset sale " + trade.Reference,
				Metadata:  map[string]interface{}{"trade_id": trade.ID, "status": trade.Status},
			}); err != nil {
				return err
			}
		}

		if models.IsSettled(trade.Status) {
			var err error
			reward, err = s.referrals.RewardFirstTrade(ctx, tx, trade.UserID, trade.Reference, trade.Payable)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TradeReviews.WithLabelValues(product, trade.Status).Inc()
	s.logger.Info("asset trade reviewed",
		zap.String("reference", trade.Reference),
		zap.String("side", trade.Side),
		zap.String("status", trade.Status),
		zap.Uint("admin_id", adminID))

	if moved {
		s.wallets.Invalidate(ctx, trade.UserID)
	}
	s.referrals.Announce(ctx, reward)
	s.notifier.Notify(ctx, trade.UserID, models.NotificationTrade, "Asset trade "+strings.ReplaceAll(trade.Status, "_", " "), reviewBody(&trade))
	return &trade, nil
}

func (s *service) GetTrade(ctx context.Context, id uint) (*models.AssetTransaction, error) {
	var trade models.AssetTransaction
	if err := s.db.WithContext(ctx).Preload("Asset").Preload("User").First(&trade, id).Error; err != nil {
		return nil, notFound(err, ErrTradeNotFound)
	}
	return &trade, nil
}

func (s *service) GetUserTrade(ctx context.Context, userID, id uint) (*models.AssetTransaction, error) {
	var trade models.AssetTransaction
	err := s.db.WithContext(ctx).Preload("Asset").
		Where("id = ? AND user_id = ?", id, userID).First(&trade).Error
	if err != nil {
		return nil, notFound(err, ErrTradeNotFound)
	}
	return &trade, nil
}

func (s *service) ListTrades(ctx context.Context, q pagination.Query) ([]models.AssetTransaction, int64, error) {
	db := q.Filter(s.db.WithContext(ctx).Model(&models.AssetTransaction{}))
	if q.Search != "" {
		db = db.Where("reference LIKE ?", "%"+strings.ToUpper(q.Search)+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count asset trades: %w", err)
	}
	var trades []models.AssetTransaction
	if err := q.Page(db).Preload("Asset").Find(&trades).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list asset trades: %w", err)
	}
	return trades, total, nil
}

func (s *service) tradable(ctx context.Context, id uint, amount decimal.Decimal) (*models.Asset, decimal.Decimal, error) {
	asset, err := s.GetAsset(ctx, id)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if !asset.Active {
		return nil, decimal.Zero, ErrAssetInactive
	}
	amount = amount.Round(AssetPlaces)
	if amount.LessThan(asset.MinAmount) || (asset.MaxAmount.IsPositive() && amount.GreaterThan(asset.MaxAmount)) {
		return nil, decimal.Zero, fmt.Errorf("%w: %s to %s %s", ErrAmountOutOfRange, asset.MinAmount.String(), asset.MaxAmount.String(), asset.Code)
	}
	return asset, amount, nil
}

func (s *service) submitted(trade *models.AssetTransaction) {
	metrics.TradeSubmissions.WithLabelValues(product, trade.Side).Inc()
	s.logger.Info("asset trade submitted",
		zap.String("reference", trade.Reference),
		zap.String("side", trade.Side),
		zap.Uint("user_id", trade.UserID),
		zap.String("payable", trade.Payable.String()))
}

func price(asset *models.Asset, side string, amount decimal.Decimal) (breakdown.Breakdown, error) {
	return breakdown.Compute(breakdown.Input{
		Side:          side,
		Amount:        amount,
		Quantity:      1,
		Rate:          asset.RateFor(side),
		ChargePercent: asset.ChargePercent,
		ChargeCap:     asset.ChargeCap,
	})
}

func newTrade(userID uint, asset *models.Asset, b breakdown.Breakdown) *models.AssetTransaction {
	return &models.AssetTransaction{
		Reference:     utils.NewReference(ReferencePrefix),
		UserID:        userID,
		AssetID:       asset.ID,
		Side:          b.Side,
		Amount:        b.Amount,
		Rate:          b.Rate,
		ChargePercent: b.ChargePercent,
		ChargeCap:     b.ChargeCap,
		Gross:         b.Gross,
		ServiceCharge: b.ServiceCharge,
		Payable:       b.Payable,
		Status:        models.TradePending,
	}
}

// reprice applies a sell review's reviewed amount and rate override.
func reprice(trade *models.AssetTransaction, req ReviewRequest) error {
	amount := trade.Amount
	switch req.Status {
	case models.TradePartiallyApproved:
		if req.ReviewedAmount == nil {
			return ErrInvalidReviewedAmount
		}
		amount = req.ReviewedAmount.Round(AssetPlaces)
		if !amount.IsPositive() || !amount.LessThan(trade.Amount) {
			return ErrInvalidReviewedAmount
		}
	case models.TradeApproved:
		if req.Rate == nil {
			return nil
		}
	default:
		return nil
	}

	b, err := breakdown.Recompute(breakdown.Breakdown{
		Side:          trade.Side,
		Quantity:      1,
		Rate:          trade.Rate,
		ChargePercent: trade.ChargePercent,
		ChargeCap:     trade.ChargeCap,
	}, amount, req.Rate)
	if err != nil {
		if errors.Is(err, breakdown.ErrNothingPayable) {
			return ErrInvalidReviewedAmount
		}
		return err
	}
	if req.Status == models.TradePartiallyApproved {
		trade.ReviewedAmount = decimal.NewNullDecimal(amount)
	}
	trade.Rate = b.Rate
	trade.Gross = b.Gross
	trade.ServiceCharge = b.ServiceCharge
	trade.Payable = b.Payable
	return nil
}

func reviewBody(trade *models.AssetTransaction) string {
	switch {
	case trade.Status == models.TradeDeclined && trade.Side == models.SideBuy:
		return fmt.Sprintf("Your purchase %s was declined and %s refunded: %s", trade.Reference, trade.Payable.StringFixed(2), trade.ReviewNote)
	case trade.Status == models.TradeDeclined:
		return fmt.Sprintf("Your sale %s was declined: %s", trade.Reference, trade.ReviewNote)
	case trade.Status == models.TradeTransferred:
		return fmt.Sprintf("Your purchase %s has been sent to %s (tx %s).", trade.Reference, trade.WalletAddress, trade.TxHash)
	default:
		return fmt.Sprintf("Your sale %s was settled. %s has been credited to your wallet.", trade.Reference, trade.PaidAmount.StringFixed(2))
	}
}
