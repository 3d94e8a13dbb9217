package repository

import (
	"context"

	"github.com/and161185/helpdesk/internal/model"
)

// SessionRepository stores bearer sessions.
type SessionRepository interface {
	// Create inserts a session; expiry is assigned by the store.
	Create(ctx context.Context, userID int64, token string) (*model.Session, error)
	// Resolve returns the owner of a non-expired session (errs.ErrNotFound otherwise).
	Resolve(ctx context.Context, token string) (*model.Identity, error)
	// Delete removes a session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteExpired purges sessions past their expiry and returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
