// Package referral pays a one-off reward to a referrer when the user they
// invited settles a first qualifying trade.
package referral

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradedesk/internal/models"
	"tradedesk/internal/services/notification"
	"tradedesk/internal/services/wallet"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ReferencePrefix = "REF"

type Config struct {
	Reward   decimal.Decimal
	MinTrade decimal.Decimal
}

type Service interface {
	// RewardFirstTrade runs inside the settling transaction. It returns nil
	// without error when no reward is due.
	RewardFirstTrade(ctx context.Context, tx *gorm.DB, refereeID uint, tradeRef string, payable decimal.Decimal) (*models.Referral, error)
	// Announce tells the referrer about a reward once the settlement committed
	Announce(ctx context.Context, r *models.Referral)
	List(ctx context.Context, referrerID uint) (*Summary, error)
}

// Summary is what a user sees on their referrals page.
type Summary struct {
	ReferralCode  string          `json:"referral_code"`
	TotalEarned   decimal.Decimal `json:"total_earned"`
	RewardedCount int             `json:"rewarded_count"`
	Referees      []Referee       `json:"referees"`
}

type Referee struct {
	UserID   uint             `json:"user_id"`
	Name     string           `json:"name"`
	JoinedAt time.Time        `json:"joined_at"`
	Rewarded bool             `json:"rewarded"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
}

type service struct {
	db       *gorm.DB
	wallets  wallet.Service
	notifier notification.Notifier
	config   Config
	logger   *zap.Logger
}

func NewService(db *gorm.DB, wallets wallet.Service, notifier notification.Notifier, config Config, logger *zap.Logger) Service {
	if notifier == nil {
		notifier = notification.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{db: db, wallets: wallets, notifier: notifier, config: config, logger: logger}
}

func (s *service) RewardFirstTrade(ctx context.Context, tx *gorm.DB, refereeID uint, tradeRef string, payable decimal.Decimal) (*models.Referral, error) {
	if !s.config.Reward.IsPositive() || payable.LessThan(s.config.MinTrade) {
		return nil, nil
	}

	var referee models.User
	if err := tx.WithContext(ctx).Select("id", "referred_by_id").First(&referee, refereeID).Error; err != nil {
		return nil, fmt.Errorf("load referee: %w", err)
	}
	if referee.ReferredByID == nil {
		return nil, nil
	}

	referral := &models.Referral{
		ReferrerID:     *referee.ReferredByID,
		RefereeID:      refereeID,
		Amount:         s.config.Reward,
		TradeReference: tradeRef,
		Status:         models.ReferralRewarded,
	}
	// referee_id is unique: a settlement that loses the race pays nothing
	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "referee_id"}}, DoNothing: true}).
		Create(referral)
	if result.Error != nil {
		return nil, fmt.Errorf("create referral: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	_, err := s.wallets.Credit(ctx, tx, wallet.Operation{
		UserID:    referral.ReferrerID,
		Amount:    referral.Amount,
		Reference: fmt.Sprintf("%s-%d", ReferencePrefix, refereeID),
		Source:    models.SourceReferral,
		Narration: "Referral reward",
		Metadata:  map[string]interface{}{"referee_id": refereeID, "trade_reference": tradeRef},
	})
	if errors.Is(err, wallet.ErrWalletLocked) || errors.Is(err, wallet.ErrWalletNotFound) {
		// The trade still settles; the reward is dropped with the referral row.
		s.logger.Warn("referral reward skipped", zap.Uint("referrer_id", referral.ReferrerID), zap.Error(err))
		if err := tx.WithContext(ctx).Delete(referral).Error; err != nil {
			return nil, fmt.Errorf("discard referral: %w", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("referral rewarded",
		zap.Uint("referrer_id", referral.ReferrerID),
		zap.Uint("referee_id", refereeID),
		zap.String("trade_reference", tradeRef))
	return referral, nil
}

func (s *service) Announce(ctx context.Context, r *models.Referral) {
	if r == nil {
		return
	}
	s.wallets.Invalidate(ctx, r.ReferrerID)
	s.notifier.Notify(ctx, r.ReferrerID, models.NotificationReferral, "Referral reward",
		fmt.Sprintf("You earned %s for inviting a friend who completed their first trade.", r.Amount.StringFixed(2)))
}

func (s *service) List(ctx context.Context, referrerID uint) (*Summary, error) {
	var referrer models.User
	if err := s.db.WithContext(ctx).Select("id", "referral_code").First(&referrer, referrerID).Error; err != nil {
		return nil, fmt.Errorf("load referrer: %w", err)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Select("id", "name", "created_at").
		Where("referred_by_id = ?", referrerID).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list referees: %w", err)
	}

	var rewards []models.Referral
	if err := s.db.WithContext(ctx).Where("referrer_id = ?", referrerID).Find(&rewards).Error; err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	byReferee := make(map[uint]decimal.Decimal, len(rewards))
	total := decimal.Zero
	for _, r := range rewards {
		byReferee[r.RefereeID] = r.Amount
		total = total.Add(r.Amount)
	}

	summary := &Summary{
		ReferralCode:  referrer.ReferralCode,
		TotalEarned:   total,
		RewardedCount: len(rewards),
		Referees:      make([]Referee, 0, len(users)),
	}
	for _, u := range users {
		ref := Referee{UserID: u.ID, Name: u.Name, JoinedAt: u.CreatedAt}
		if amount, ok := byReferee[u.ID]; ok {
			ref.Rewarded = true
			ref.Amount = &amount
		}
		summary.Referees = append(summary.Referees, ref)
	}
	return summary, nil
}
