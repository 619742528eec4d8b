package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradedesk/internal/models"
	"tradedesk/internal/repositories"
	"tradedesk/internal/repositories/cache"
	"tradedesk/internal/services/notification"
	cachekeys "tradedesk/internal/utils/cache"
	"tradedesk/internal/utils/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db       *gorm.DB
	repo     repositories.WalletRepository
	users    repositories.UserRepository
	cache    cache.Store
	notifier notification.Notifier
	intents  PaymentIntents
	config   Config
	metrics  MetricsCollector
	logger   *zap.Logger
}

// Deps groups the collaborators of the wallet service. Cache, Notifier,
// Intents, Metrics and Logger are optional.
type Deps struct {
	DB       *gorm.DB
	Repo     repositories.WalletRepository
	Users    repositories.UserRepository
	Cache    cache.Store
	Notifier notification.Notifier
	Intents  PaymentIntents
	Metrics  MetricsCollector
	Logger   *zap.Logger
}

// NewService creates a new wallet service
func NewService(deps Deps, config Config) Service {
	if deps.DB == nil {
		panic("db is required")
	}
	if deps.Repo == nil {
		deps.Repo = repositories.NewWalletRepository(deps.DB)
	}
	if deps.Users == nil {
		deps.Users = repositories.NewUserRepository(deps.DB, deps.Cache, deps.Logger)
	}
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notification.Discard{}
	}
	// Metrics is optional, create no-op collector if nil
	if deps.Metrics == nil {
		deps.Metrics = NoopMetricsCollector{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if config.Currency == "" {
		config.Currency = "NGN"
	}

	return &service{
		db:       deps.DB,
		repo:     deps.Repo,
		users:    deps.Users,
		cache:    deps.Cache,
		notifier: deps.Notifier,
		intents:  deps.Intents,
		config:   config,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

func (s *service) CreateWallet(ctx context.Context, tx *gorm.DB, userID uint) (*models.Wallet, error) {
	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}
	wallet := &models.Wallet{
		UserID:   userID,
		Status:   models.WalletStatusActive,
		Currency: s.config.Currency,
	}
	if err := repo.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return wallet, nil
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	key := walletKey(userID)

	var cached models.Wallet
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}

	wallet, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetWithTTL(ctx, key, wallet, CacheDuration); err != nil {
		s.logger.Warn("wallet cache write failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	return wallet, nil
}

func (s *service) History(ctx context.Context, userID uint, q pagination.Query) ([]models.WalletTransaction, int64, error) {
	return s.repo.History(ctx, userID, q)
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, op Operation) (*models.WalletTransaction, error) {
	op.Type = models.EntryCredit
	return s.Post(ctx, tx, op)
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, op Operation) (*models.WalletTransaction, error) {
	op.Type = models.EntryDebit
	return s.Post(ctx, tx, op)
}

// Post applies one ledger entry under a row lock on the wallet.
func (s *service) Post(ctx context.Context, tx *gorm.DB, op Operation) (*models.WalletTransaction, error) {
	if op.Type != models.EntryCredit && op.Type != models.EntryDebit {
		return nil, ErrInvalidOperation
	}
	op.Amount = op.Amount.Round(2)
	if !op.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if op.Reference == "" {
		return nil, ErrMissingReference
	}

	start := time.Now()
	var entry *models.WalletTransaction
	apply := func(_ *gorm.DB, repo repositories.WalletRepository) error {
		var err error
		entry, err = s.apply(ctx, repo, op)
		return err
	}

	var err error
	if tx != nil {
		err = apply(tx, s.repo.WithTx(tx))
	} else {
		err = s.repo.ExecuteInTransaction(ctx, apply)
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.RecordOperation(op.Type, op.Source, result, op.Amount, time.Since(start))
	if err != nil {
		return nil, err
	}

	if tx == nil {
		s.Invalidate(ctx, op.UserID)
	}
	return entry, nil
}

func (s *service) apply(ctx context.Context, repo repositories.WalletRepository, op Operation) (*models.WalletTransaction, error) {
	exists, err := repo.ReferenceExists(ctx, op.Reference)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReference
	}

	wallet, err := repo.GetForUpdate(ctx, op.UserID)
	if err != nil {
		return nil, err
	}
	if wallet.Status == models.WalletStatusLocked && !op.AllowLocked {
		return nil, ErrWalletLocked
	}

	before := wallet.Balance
	after := before.Add(op.Amount)
	if op.Type == models.EntryDebit {
		after = before.Sub(op.Amount)
		if after.IsNegative() {
			return nil, ErrInsufficientBalance
		}
	}

	if err := repo.UpdateBalance(ctx, wallet.ID, after); err != nil {
		return nil, err
	}

	entry := &models.WalletTransaction{
		WalletID:      wallet.ID,
		UserID:        op.UserID,
		Type:          op.Type,
		Amount:        op.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Reference:     op.Reference,
		Source:        op.Source,
		Narration:     op.Narration,
		Metadata:      models.NewJSON(op.Metadata),
	}
	if err := repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Debug("ledger posted",
		zap.Uint("user_id", op.UserID),
		zap.String("type", op.Type),
		zap.String("amount", op.Amount.StringFixed(2)),
		zap.String("reference", op.Reference))
	return entry, nil
}

func (s *service) Invalidate(ctx context.Context, userID uint) {
	if err := s.cache.Delete(ctx, walletKey(userID)); err != nil {
		s.logger.Warn("wallet cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (s *service) ListWallets(ctx context.Context, q pagination.Query) ([]models.Wallet, int64, error) {
	return s.repo.List(ctx, q)
}

func (s *service) AdminAdjust(ctx context.Context, adminID, userID uint, req AdjustRequest) (*models.WalletTransaction, error) {
	return s.Post(ctx, nil, Operation{
		UserID:      userID,
		Type:        req.Type,
		Amount:      req.Amount,
		Reference:   AdjustmentPrefix + "-" + uuid.NewString(),
		Source:      models.SourceAdjustment,
		Narration:   req.Narration,
		Metadata:    map[string]interface{}{"admin_id": adminID},
		AllowLocked: true,
	})
}

func (s *service) Lock(ctx context.Context, userID uint, reason string) error {
	if err := s.repo.UpdateStatus(ctx, userID, models.WalletStatusLocked, reason); err != nil {
		return err
	}
	s.Invalidate(ctx, userID)
	return nil
}

func (s *service) Unlock(ctx context.Context, userID uint) error {
	if err := s.repo.UpdateStatus(ctx, userID, models.WalletStatusActive, ""); err != nil {
		return err
	}
	s.Invalidate(ctx, userID)
	return nil
}

func walletKey(userID uint) string {
	return cachekeys.GenerateKey(cachekeys.EntityWallet, cachekeys.KeyUserID, userID)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
