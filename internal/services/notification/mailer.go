package notification

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"tradedesk/internal/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// NewMailer picks the provider named in the configuration. Anything but
// "sendgrid" logs messages instead of sending them.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) (Mailer, error) {
	switch cfg.Provider {
	case "sendgrid":
		if cfg.SendgridAPIKey == "" {
			return nil, errors.New("sendgrid api key is required")
		}
		return NewSendgridMailer(sendgrid.NewSendClient(cfg.SendgridAPIKey), cfg, logger), nil
	default:
		return NewLogMailer(logger), nil
	}
}

// LogMailer writes messages to the log. Used in development and tests.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Email) error {
	m.logger.Info("email",
		zap.String("to", msg.ToEmail),
		zap.String("subject", msg.Subject))
	return nil
}

// SendgridMailer sends through SendGrid behind a circuit breaker so a provider
// outage fails fast instead of stalling every notification.
type SendgridMailer struct {
	client  *sendgrid.Client
	breaker *gobreaker.CircuitBreaker
	from    *mail.Email
	logger  *zap.Logger
}

func NewSendgridMailer(client *sendgrid.Client, cfg config.MailConfig, logger *zap.Logger) *SendgridMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        "sendgrid",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &SendgridMailer{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		from:    mail.NewEmail(cfg.FromName, cfg.From),
		logger:  logger,
	}
}

func (m *SendgridMailer) Send(ctx context.Context, msg Email) error {
	message := mail.NewSingleEmail(m.from, msg.Subject, mail.NewEmail(msg.ToName, msg.ToEmail), msg.Body, "<p>"+html.EscapeString(msg.Body)+"</p>")

	_, err := m.breaker.Execute(func() (interface{}, error) {
		response, err := m.client.SendWithContext(ctx, message)
		if err != nil {
			return nil, fmt.Errorf("failed to send email: %w", err)
		}
		if response.StatusCode >= 400 {
			return nil, fmt.Errorf("email service error: status %d, body: %s", response.StatusCode, response.Body)
		}
		return response, nil
	})
	if err != nil {
		m.logger.Error("failed to send email",
			zap.String("provider", "sendgrid"),
			zap.String("to", msg.ToEmail),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return err
	}
	return nil
}
