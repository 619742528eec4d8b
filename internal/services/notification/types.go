package notification

import (
	"errors"
	"time"
)

var ErrNotificationNotFound = errors.New("notification not found")

const (
	batchSize   = 100
	sendTimeout = 10 * time.Second
)

// Email is one outgoing message.
type Email struct {
	ToEmail string
	ToName  string
	Subject string
	Body    string
}
