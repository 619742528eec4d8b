package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"tradedesk/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var hundred = decimal.NewFromInt(100)

// StartFunding opens a Stripe PaymentIntent. The wallet is credited by the
// payment_intent.succeeded webhook, never by the client.
func (s *service) StartFunding(ctx context.Context, userID uint, req FundingRequest) (*FundingSession, error) {
	if s.intents == nil {
		return nil, ErrFundingUnavailable
	}
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount.Mul(hundred).IntPart()),
		Currency: stripe.String(strings.ToLower(s.config.Currency)),
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.FormatUint(uint64(userID), 10))

	intent, err := s.intents.New(params)
	if err != nil {
		s.logger.Error("stripe payment intent failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	record := &models.FundingIntent{
		UserID:   userID,
		Provider: ProviderStripe,
		IntentID: intent.ID,
		Amount:   amount,
		Currency: s.config.Currency,
		Status:   models.FundingPending,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("store funding intent: %w", err)
	}

	return &FundingSession{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		Currency:     s.config.Currency,
	}, nil
}

func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.config.StripeWebhookSecret)
	if err != nil {
		s.logger.Warn("stripe webhook rejected", zap.Error(err))
		return ErrInvalidSignature
	}
	return s.HandleEvent(ctx, event)
}

// HandleEvent is idempotent: only pending intents change state and the ledger
// reference is unique per intent.
func (s *service) HandleEvent(ctx context.Context, event stripe.Event) error {
	if event.Type != EventIntentSucceeded && event.Type != EventIntentFailed {
		return nil
	}
	if event.Data == nil {
		return fmt.Errorf("stripe event %s has no data", event.ID)
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return fmt.Errorf("decode payment intent: %w", err)
	}

	var intent models.FundingIntent
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("intent_id = ?", pi.ID).First(&intent).Error; err != nil {
			if isNotFound(err) {
				return ErrIntentNotFound
			}
			return err
		}
		if intent.Status != models.FundingPending {
			return nil
		}

		changed = true
		if event.Type == EventIntentFailed {
			intent.Status = models.FundingFailed
			return tx.Model(&intent).Update("status", intent.Status).Error
		}

		if expected := intent.Amount.Mul(hundred).IntPart(); pi.Amount != 0 && pi.Amount != expected {
			s.logger.Warn("payment intent amount differs from stored amount",
				zap.String("intent_id", pi.ID),
				zap.Int64("stripe_amount", pi.Amount),
				zap.Int64("expected", expected))
		}

		intent.Status = models.FundingSucceeded
		if err := tx.Model(&intent).Update("status", intent.Status).Error; err != nil {
			return err
		}
		_, err := s.Credit(ctx, tx, Operation{
			UserID:    intent.UserID,
			Amount:    intent.Amount,
			Reference: FundingPrefix + "-" + intent.IntentID,
			Source:    models.SourceFunding,
			Narration: "Card funding",
			Metadata:  map[string]interface{}{"intent_id": intent.IntentID},
		})
		return err
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	s.Invalidate(ctx, intent.UserID)
	switch intent.Status {
	case models.FundingSucceeded:
		s.notifier.Notify(ctx, intent.UserID, models.NotificationFunding, "Wallet funded",
			fmt.Sprintf("%s %s was added to your wallet.", intent.Amount.StringFixed(2), intent.Currency))
	case models.FundingFailed:
		s.notifier.Notify(ctx, intent.UserID, models.NotificationFunding, "Funding failed",
			"Your card payment did not go through.")
	}
	return nil
}
