// Package alert broadcasts back-office messages to users, immediately or at a
// scheduled time.
package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tradedesk/internal/metrics"
	"tradedesk/internal/models"
	"tradedesk/internal/utils/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrAlertNotFound      = errors.New("alert not found")
	ErrNotPending         = errors.New("alert is no longer pending")
	ErrRecipientsRequired = errors.New("selected alerts need at least one user id")
	ErrInvalidAudience    = errors.New("audience must be all or selected")
)

const (
	batchSize     = 100
	fanOutTimeout = 30 * time.Minute
)

// Broadcaster fans one message out to a set of users and reports how many were reached.
type Broadcaster interface {
	Broadcast(ctx context.Context, userIDs []uint, kind, title, body string) (int, error)
}

type CreateRequest struct {
	Title       string     `json:"title" validate:"required,max=150"`
	Body        string     `json:"body" validate:"required,max=5000"`
	Audience    string     `json:"audience" validate:"required,oneof=all selected"`
	UserIDs     []uint     `json:"user_ids" validate:"omitempty,max=10000"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type Service interface {
	Create(ctx context.Context, adminID uint, req CreateRequest) (*models.Alert, error)
	Dispatch(ctx context.Context, id uint) (*models.Alert, error)
	DispatchDue(ctx context.Context, now time.Time) (int, error)
	Cancel(ctx context.Context, id uint) (*models.Alert, error)
	// Wait blocks until background fan-outs started by Create and Dispatch finish.
	Wait()
	Get(ctx context.Context, id uint) (*models.Alert, error)
	List(ctx context.Context, q pagination.Query) ([]models.Alert, int64, error)
}

type service struct {
	db          *gorm.DB
	broadcaster Broadcaster
	logger      *zap.Logger
	now         func() time.Time
	inflight    sync.WaitGroup
}

func NewService(db *gorm.DB, broadcaster Broadcaster, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{db: db, broadcaster: broadcaster, logger: logger, now: time.Now}
}

// Create stores the alert and dispatches it straight away unless it is
// scheduled for later.
func (s *service) Create(ctx context.Context, adminID uint, req CreateRequest) (*models.Alert, error) {
	alert := &models.Alert{
		Title:     strings.TrimSpace(req.Title),
		Body:      strings.TrimSpace(req.Body),
		Audience:  req.Audience,
		Status:    models.AlertPending,
		CreatedBy: adminID,
	}
	switch req.Audience {
	case models.AudienceAll:
	case models.AudienceSelected:
		if len(req.UserIDs) == 0 {
			return nil, ErrRecipientsRequired
		}
		alert.UserIDs = dedupe(req.UserIDs)
	default:
		return nil, ErrInvalidAudience
	}

	scheduled := req.ScheduledAt != nil && req.ScheduledAt.After(s.now())
	if scheduled {
		at := req.ScheduledAt.UTC()
		alert.ScheduledAt = &at
	}
	if err := s.db.WithContext(ctx).Create(alert).Error; err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}
	s.logger.Info("alert created", zap.Uint("alert_id", alert.ID), zap.String("audience", alert.Audience), zap.Bool("scheduled", scheduled))

	if scheduled {
		return alert, nil
	}
	return s.Dispatch(ctx, alert.ID)
}

// Dispatch claims a pending alert and fans it out in the background, so a
// request never waits on one email per user. The returned alert is already
// marked dispatched; recipient_count is filled in once delivery ends.
func (s *service) Dispatch(ctx context.Context, id uint) (*models.Alert, error) {
	alert, err := s.claim(ctx, id)
	if err != nil {
		return nil, err
	}
	own := *alert
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), fanOutTimeout)
		defer cancel()
		_, _ = s.deliver(bg, &own)
	}()
	return alert, nil
}

func (s *service) Wait() {
	s.inflight.Wait()
}

// claim is a conditional update so a manual dispatch and the scheduler never both send.
func (s *service) claim(ctx context.Context, id uint) (*models.Alert, error) {
	now := s.now()
	result := s.db.WithContext(ctx).Model(&models.Alert{}).
		Where("id = ? AND status = ?", id, models.AlertPending).
		Updates(map[string]interface{}{"status": models.AlertDispatched, "dispatched_at": now})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to claim alert: %w", result.Error)
	}
	alert, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotPending
	}
	return alert, nil
}

func (s *service) deliver(ctx context.Context, alert *models.Alert) (int, error) {
	count, err := s.fanOut(ctx, alert)
	if err != nil {
		s.logger.Error("alert fan-out incomplete", zap.Uint("alert_id", alert.ID), zap.Int("delivered", count), zap.Error(err))
	}
	if uerr := s.db.WithContext(ctx).Model(alert).Update("recipient_count", count).Error; uerr != nil {
		s.logger.Error("failed to record recipients", zap.Uint("alert_id", alert.ID), zap.Error(uerr))
		return count, uerr
	}
	alert.RecipientCount = count
	metrics.AlertsDispatched.Add(float64(count))
	s.logger.Info("alert dispatched", zap.Uint("alert_id", alert.ID), zap.Int("recipients", count))
	return count, err
}

func (s *service) fanOut(ctx context.Context, alert *models.Alert) (int, error) {
	if alert.Audience == models.AudienceSelected {
		var ids []uint
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id IN ? AND status = ?", []uint(alert.UserIDs), models.UserStatusActive).
			Pluck("id", &ids).Error; err != nil {
			return 0, err
		}
		return s.broadcaster.Broadcast(ctx, ids, models.NotificationAlert, alert.Title, alert.Body)
	}

	sent := 0
	var last uint
	for {
		var ids []uint
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id > ? AND status = ?", last, models.UserStatusActive).
			Order("id").Limit(batchSize).Pluck("id", &ids).Error; err != nil {
			return sent, err
		}
		if len(ids) == 0 {
			return sent, nil
		}
		n, err := s.broadcaster.Broadcast(ctx, ids, models.NotificationAlert, alert.Title, alert.Body)
		sent += n
		if err != nil {
			return sent, err
		}
		last = ids[len(ids)-1]
	}
}

// DispatchDue sends every pending alert whose time has come.
func (s *service) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Alert{}).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", models.AlertPending, now.UTC()).
		Order("scheduled_at").Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to find due alerts: %w", err)
	}

	dispatched := 0
	for _, id := range ids {
		alert, err := s.claim(ctx, id)
		if err != nil {
			if !errors.Is(err, ErrNotPending) {
				s.logger.Error("scheduled alert failed", zap.Uint("alert_id", id), zap.Error(err))
			}
			continue
		}
		if _, err := s.deliver(ctx, alert); err != nil {
			s.logger.Error("scheduled alert incomplete", zap.Uint("alert_id", id), zap.Error(err))
		}
		dispatched++
	}
	return dispatched, nil
}

func (s *service) Cancel(ctx context.Context, id uint) (*models.Alert, error) {
	result := s.db.WithContext(ctx).Model(&models.Alert{}).
		Where("id = ? AND status = ?", id, models.AlertPending).
		Update("status", models.AlertCancelled)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to cancel alert: %w", result.Error)
	}
	alert, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotPending
	}
	return alert, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Alert, error) {
	var alert models.Alert
	if err := s.db.WithContext(ctx).First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	return &alert, nil
}

func (s *service) List(ctx context.Context, q pagination.Query) ([]models.Alert, int64, error) {
	db := q.Filter(s.db.WithContext(ctx).Model(&models.Alert{}))

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var alerts []models.Alert
	if err := q.Page(db).Find(&alerts).Error; err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

func dedupe(ids []uint) models.UintList {
	seen := make(map[uint]struct{}, len(ids))
	out := make(models.UintList, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
