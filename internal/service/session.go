// Package service contains the authentication and support-message workflows.
package service

import (
	"context"
	"errors"

	"github.com/and161185/helpdesk/internal/errs"
	"github.com/and161185/helpdesk/internal/model"
	"github.com/and161185/helpdesk/internal/repository"
)

// MaxTokenLen bounds tokens accepted for lookup.
const MaxTokenLen = 512

// SessionValidator maps a bearer token to the identity that owns it.
type SessionValidator struct {
	store repository.Store
}

// NewSessionValidator constructs a SessionValidator.
func NewSessionValidator(store repository.Store) *SessionValidator {
	return &SessionValidator{store: store}
}

// Resolve returns the identity behind token. Unknown and expired tokens are
// indistinguishable: both yield ok=false with a nil error.
func (v *SessionValidator) Resolve(ctx context.Context, token string) (model.Identity, bool, error) {
	if token == "" || len(token) > MaxTokenLen {
		return model.Identity{}, false, nil
	}
	var id *model.Identity
	err := v.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		id, err = r.Sessions().Resolve(ctx, token)
		return err
	})
	if errors.Is(err, errs.ErrNotFound) {
		return model.Identity{}, false, nil
	}
	if err != nil {
		return model.Identity{}, false, err
	}
	return *id, true, nil
}
