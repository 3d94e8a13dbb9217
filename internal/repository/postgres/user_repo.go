package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/helpdesk/internal/errs"
	"github.com/and161185/helpdesk/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ q Querier }

// NewUserRepo constructs a user repository.
func NewUserRepo(q Querier) *UserRepo { return &UserRepo{q: q} }

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, email, pwdHash string) (*model.User, error) {
	const q = `
INSERT INTO users (email, password_hash)
VALUES ($1, $2)
RETURNING id, is_admin, created_at`
	u := model.User{Email: email, PwdHash: pwdHash}
	err := r.q.QueryRow(ctx, q, email, pwdHash).Scan(&u.ID, &u.IsAdmin, &u.CreatedAt)
	if isUniqueViolation(err) {
		return nil, errs.ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
SELECT id, email, password_hash, is_admin, created_at
FROM users WHERE email=$1`
	var u model.User
	err := r.q.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.PwdHash, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// ExistsByEmail checks for an account regardless of email case.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email)=lower($1))`
	var exists bool
	if err := r.q.QueryRow(ctx, q, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}
