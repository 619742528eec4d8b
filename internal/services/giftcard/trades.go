package giftcard

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
	amount := req.Amount.Round(breakdown.FiatPlaces)
	card, err := s.tradable(ctx, req.GiftcardID, amount)
	if err != nil {
		return nil, err
	}
	b, err := price(card, amount, req.Quantity)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *service) Submit(ctx context.Context, userID uint, req SubmitRequest) (*models.GiftcardTransaction, error) {
	cards := make(models.Strings, 0, len(req.Cards))
	for _, c := range req.Cards {
		if c = strings.TrimSpace(c); c != "" {
			cards = append(cards, c)
		}
	}
	if len(cards) == 0 {
		return nil, ErrCardsRequired
	}

	amount := req.Amount.Round(breakdown.FiatPlaces)
	card, err := s.tradable(ctx, req.GiftcardID, amount)
	if err != nil {
		return nil, err
	}
	b, err := price(card, amount, req.Quantity)
	if err != nil {
		return nil, err
	}

	trade := &models.GiftcardTransaction{
		Reference:     utils.NewReference(ReferencePrefix),
		UserID:        userID,
		GiftcardID:    card.ID,
		CardType:      card.CardType,
		Amount:        b.Amount,
		Quantity:      b.Quantity,
		Rate:          b.Rate,
		ChargePercent: b.ChargePercent,
		ChargeCap:     b.ChargeCap,
		Gross:         b.Gross,
		ServiceCharge: b.ServiceCharge,
		Payable:       b.Payable,
		Status:        models.TradePending,
		Cards:         cards,
		UserNote:      strings.TrimSpace(req.Note),
	}
	if err := s.db.WithContext(ctx).Create(trade).Error; err != nil {
		return nil, fmt.Errorf("failed to create giftcard trade: %w", err)
	}

	metrics.TradeSubmissions.WithLabelValues(product, models.SideSell).Inc()
	s.logger.Info("giftcard trade submitted",
		zap.String("reference", trade.Reference),
		zap.Uint("user_id", userID),
		zap.String("payable", trade.Payable.String()))
	return trade, nil
}

// Review moves a pending trade to its final status. Approvals credit the
// payable to the user's wallet and may pay a referral reward, all in one
// transaction.
func (s *service) Review(ctx context.Context, adminID, id uint, req ReviewRequest) (*models.GiftcardTransaction, error) {
	if !models.IsTradeStatus(req.Status) {
		return nil, ErrInvalidStatus
	}
	note := strings.TrimSpace(req.Note)
	if req.Status == models.TradeDeclined && note == "" {
		return nil, ErrNoteRequired
	}

	var (
		trade  models.GiftcardTransaction
		reward *models.Referral
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&trade, id).Error; err != nil {
			return notFound(err, ErrTradeNotFound)
		}
		if !models.CanTransition(models.SideSell, trade.Status, req.Status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, trade.Status, req.Status)
		}

		if err := reprice(&trade, req); err != nil {
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
			"status", "review_note", "reviewed_by", "reviewed_at", "rate",
			"gross", "service_charge", "payable", "reviewed_amount", "paid_amount",
		).Updates(&trade).Error; err != nil {
			return fmt.Errorf("failed to update giftcard trade: %w", err)
		}

		if !models.IsSettled(trade.Status) {
			return nil
		}
		if _, err := s.wallets.Credit(ctx, tx, wallet.Operation{
			UserID:    trade.UserID,
			Amount:    trade.PaidAmount,
			Reference: trade.Reference + PayoutSuffix,
			Source:    models.SourceGiftcardTrade,
			Narration: "Giftcard trade " + trade.Reference,
			Metadata:  map[string]interface{}{"trade_id": trade.ID, "status": trade.Status},
		}); err != nil {
			return err
		}

		var err error
		reward, err = s.referrals.RewardFirstTrade(ctx, tx, trade.UserID, trade.Reference, trade.PaidAmount)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.TradeReviews.WithLabelValues(product, trade.Status).Inc()
	s.logger.Info("giftcard trade reviewed",
		zap.String("reference", trade.Reference),
		zap.String("status", trade.Status),
		zap.Uint("admin_id", adminID))

	if models.IsSettled(trade.Status) {
		s.wallets.Invalidate(ctx, trade.UserID)
	}
	s.referrals.Announce(ctx, reward)
	s.notifier.Notify(ctx, trade.UserID, models.NotificationTrade, reviewTitle(trade.Status), reviewBody(&trade))
	return &trade, nil
}

func (s *service) GetTrade(ctx context.Context, id uint) (*models.GiftcardTransaction, error) {
	var trade models.GiftcardTransaction
	if err := s.db.WithContext(ctx).Preload("Giftcard").Preload("User").First(&trade, id).Error; err != nil {
		return nil, notFound(err, ErrTradeNotFound)
	}
	return &trade, nil
}

// GetUserTrade hides other users' trades behind not found.
func (s *service) GetUserTrade(ctx context.Context, userID, id uint) (*models.GiftcardTransaction, error) {
	var trade models.GiftcardTransaction
	err := s.db.WithContext(ctx).Preload("Giftcard").
		Where("id = ? AND user_id = ?", id, userID).First(&trade).Error
	if err != nil {
		return nil, notFound(err, ErrTradeNotFound)
	}
	return &trade, nil
}

func (s *service) ListTrades(ctx context.Context, q pagination.Query) ([]models.GiftcardTransaction, int64, error) {
	db := q.Filter(s.db.WithContext(ctx).Model(&models.GiftcardTransaction{}))
	if q.Search != "" {
		db = db.Where("reference LIKE ?", "%"+strings.ToUpper(q.Search)+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count giftcard trades: %w", err)
	}
	var trades []models.GiftcardTransaction
	if err := q.Page(db).Preload("Giftcard").Find(&trades).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list giftcard trades: %w", err)
	}
	return trades, total, nil
}

// tradable loads an active giftcard and checks the per-card amount against its limits.
func (s *service) tradable(ctx context.Context, id uint, amount decimal.Decimal) (*models.Giftcard, error) {
	card, err := s.GetGiftcard(ctx, id)
	if err != nil {
		return nil, err
	}
	if !card.Active {
		return nil, ErrGiftcardInactive
	}
	if amount.LessThan(card.MinAmount) || (card.MaxAmount.IsPositive() && amount.GreaterThan(card.MaxAmount)) {
		return nil, fmt.Errorf("%w: %s to %s", ErrAmountOutOfRange, card.MinAmount.String(), card.MaxAmount.String())
	}
	return card, nil
}

func price(card *models.Giftcard, amount decimal.Decimal, quantity int) (breakdown.Breakdown, error) {
	return breakdown.Compute(breakdown.Input{
		Side:          models.SideSell,
		Amount:        amount,
		Quantity:      quantity,
		Rate:          card.Rate,
		ChargePercent: card.ChargePercent,
		ChargeCap:     card.ChargeCap,
	})
}

// reprice applies a partial approval's reviewed amount and any rate override
// to the snapshotted breakdown.
func reprice(trade *models.GiftcardTransaction, req ReviewRequest) error {
	amount := trade.Amount
	switch req.Status {
	case models.TradePartiallyApproved:
		if req.ReviewedAmount == nil {
			return ErrInvalidReviewedAmount
		}
		amount = req.ReviewedAmount.Round(breakdown.FiatPlaces)
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

	b, err := breakdown.Recompute(snapshot(trade), amount, req.Rate)
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

func snapshot(trade *models.GiftcardTransaction) breakdown.Breakdown {
	return breakdown.Breakdown{
		Side:          models.SideSell,
		Amount:        trade.Amount,
		Quantity:      trade.Quantity,
		Rate:          trade.Rate,
		Gross:         trade.Gross,
		ChargePercent: trade.ChargePercent,
		ChargeCap:     trade.ChargeCap,
		ServiceCharge: trade.ServiceCharge,
		Payable:       trade.Payable,
	}
}

func reviewTitle(status string) string {
	switch status {
	case models.TradeApproved:
		return "Giftcard trade approved"
	case models.TradePartiallyApproved:
		return "Giftcard trade partially approved"
	default:
		return "Giftcard trade declined"
	}
}

func reviewBody(trade *models.GiftcardTransaction) string {
	if trade.Status == models.TradeDeclined {
		return fmt.Sprintf("Your trade %s was declined: %s", trade.Reference, trade.ReviewNote)
	}
	return fmt.Sprintf("Your trade %s was settled. %s has been credited to your wallet.", trade.Reference, trade.PaidAmount.StringFixed(2))
}
