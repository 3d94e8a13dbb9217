// Package notify delivers best-effort e-mail notifications about support messages.
package notify

import (
	"context"
	"errors"

	"github.com/and161185/helpdesk/internal/model"
)

// ErrSkipped is returned when the sink is not configured to send mail.
var ErrSkipped = errors.New("notifications disabled")

// Notifier sends notifications for message lifecycle events.
type Notifier interface {
	// NewMessage tells the administrator about a freshly submitted message.
	NewMessage(ctx context.Context, m model.Message) error
	// Reply tells the author that their message was answered.
	Reply(ctx context.Context, m model.Message) error
}
