package notification

import (
	"context"

	"tradedesk/internal/models"
	"tradedesk/internal/utils/pagination"
)

// Notifier delivers a message to one user. Failures are logged, never returned.
type Notifier interface {
	Notify(ctx context.Context, userID uint, kind, title, body string)
}

// Service is the in-app inbox plus email delivery.
type Service interface {
	Notifier

	// Broadcast inserts one inbox entry per user and emails each of them.
	Broadcast(ctx context.Context, userIDs []uint, kind, title, body string) (int, error)

	List(ctx context.Context, userID uint, q pagination.Query) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

// Mailer sends a single email.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, uint, string, string, string) {}
