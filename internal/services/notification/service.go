package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradedesk/internal/metrics"
	"tradedesk/internal/models"
	"tradedesk/internal/utils/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db     *gorm.DB
	mailer Mailer
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(db *gorm.DB, mailer Mailer, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mailer == nil {
		mailer = NewLogMailer(logger)
	}
	return &service{db: db, mailer: mailer, logger: logger}
}

func (s *service) Notify(ctx context.Context, userID uint, kind, title, body string) {
	n := models.Notification{UserID: userID, Kind: kind, Title: title, Body: body}
	err := s.db.WithContext(ctx).Create(&n).Error
	metrics.NotificationsSent.WithLabelValues("inbox", metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Error("failed to store notification", zap.Uint("user_id", userID), zap.String("kind", kind), zap.Error(err))
	}

	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "email", "name").First(&user, userID).Error; err != nil {
		s.logger.Warn("notification recipient lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	s.send(ctx, user, title, body)
}

func (s *service) Broadcast(ctx context.Context, userIDs []uint, kind, title, body string) (int, error) {
	sent := 0
	for start := 0; start < len(userIDs); start += batchSize {
		end := min(start+batchSize, len(userIDs))
		batch := userIDs[start:end]

		var users []models.User
		if err := s.db.WithContext(ctx).Select("id", "email", "name").
			Where("id IN ?", batch).Find(&users).Error; err != nil {
			return sent, fmt.Errorf("load recipients: %w", err)
		}
		if len(users) == 0 {
			continue
		}

		rows := make([]models.Notification, 0, len(users))
		for _, u := range users {
			rows = append(rows, models.Notification{UserID: u.ID, Kind: kind, Title: title, Body: body})
		}
		if err := s.db.WithContext(ctx).CreateInBatches(rows, batchSize).Error; err != nil {
			return sent, fmt.Errorf("store notifications: %w", err)
		}
		metrics.NotificationsSent.WithLabelValues("inbox", "ok").Add(float64(len(rows)))

		for _, u := range users {
			s.send(ctx, u, title, body)
		}
		sent += len(users)
	}
	return sent, nil
}

func (s *service) send(ctx context.Context, user models.User, subject, body string) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	err := s.mailer.Send(ctx, Email{ToEmail: user.Email, ToName: user.Name, Subject: subject, Body: body})
	metrics.NotificationsSent.WithLabelValues("email", metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Warn("email delivery failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

func (s *service) List(ctx context.Context, userID uint, q pagination.Query) ([]models.Notification, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unread, ok := q.Filters["unread"]; ok {
		delete(q.Filters, "unread")
		if unread == "true" || unread == "1" {
			db = db.Where("read_at IS NULL")
		}
	}
	db = q.Filter(db)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	var items []models.Notification
	if err := q.Page(db).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return items, total, nil
}

func (s *service) MarkRead(ctx context.Context, userID, id uint) error {
	var n models.Notification
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if n.ReadAt != nil {
		return nil
	}
	return s.db.WithContext(ctx).Model(&n).Update("read_at", time.Now()).Error
}

func (s *service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now())
	return result.RowsAffected, result.Error
}

func (s *service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
