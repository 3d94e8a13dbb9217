package repository

import (
	"context"

	"github.com/and161185/helpdesk/internal/model"
)

// MessageRepository provides access to support messages.
type MessageRepository interface {
	// Create inserts a pending message.
	Create(ctx context.Context, m model.NewMessage) (*model.Message, error)
	// ListByUser returns messages authored by userID, newest first.
	ListByUser(ctx context.Context, userID int64) ([]model.Message, error)
	// ListAll returns every message, newest first.
	ListAll(ctx context.Context) ([]model.Message, error)
	// Reply sets reply text, answered status and reply time in one statement
	// and returns the updated row (errs.ErrNotFound if id does not exist).
	Reply(ctx context.Context, id int64, reply string) (*model.Message, error)
}
