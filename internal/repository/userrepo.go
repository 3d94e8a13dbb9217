// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/helpdesk/internal/model"
)

// UserRepository provides access to user accounts.
type UserRepository interface {
	// Create inserts a new user and returns it with store-assigned fields.
	// A duplicate email yields errs.ErrAlreadyExists.
	Create(ctx context.Context, email, pwdHash string) (*model.User, error)
	// GetByEmail loads a user by normalized email (errs.ErrNotFound if absent).
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ExistsByEmail reports whether an account with this email exists, ignoring case.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
