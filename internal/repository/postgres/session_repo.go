package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/helpdesk/internal/errs"
	"github.com/and161185/helpdesk/internal/model"
)

// SessionRepo implements SessionRepository using PostgreSQL.
type SessionRepo struct{ q Querier }

// NewSessionRepo constructs a session repository.
func NewSessionRepo(q Querier) *SessionRepo { return &SessionRepo{q: q} }

// Create inserts a session; expires_at comes from the column default.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string) (*model.Session, error) {
	const q = `
INSERT INTO sessions (user_id, token)
VALUES ($1, $2)
RETURNING expires_at, created_at`
	s := model.Session{Token: token, UserID: userID}
	if err := r.q.QueryRow(ctx, q, userID, token).Scan(&s.ExpiresAt, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return &s, nil
}

// Resolve joins a live session to its owner.
func (r *SessionRepo) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	const q = `
SELECT u.id, u.email, u.is_admin
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.token = $1 AND s.expires_at > now()`
	var id model.Identity
	err := r.q.QueryRow(ctx, q, token).Scan(&id.UserID, &id.Email, &id.IsAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	return &id, nil
}

// Delete removes the session row, if any.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	const q = `DELETE FROM sessions WHERE token=$1`
	if _, err := r.q.Exec(ctx, q, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired purges sessions that can no longer resolve.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM sessions WHERE expires_at <= now()`
	tag, err := r.q.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
