package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/and161185/helpdesk/internal/errs"
	"github.com/and161185/helpdesk/internal/model"
)

const messageCols = `id, user_id, user_email, subject, body, status, admin_reply, replied_at, created_at`

// MessageRepo implements MessageRepository using PostgreSQL.
type MessageRepo struct{ q Querier }

// NewMessageRepo constructs a message repository.
func NewMessageRepo(q Querier) *MessageRepo { return &MessageRepo{q: q} }

// Create inserts a pending message and returns the stored row.
func (r *MessageRepo) Create(ctx context.Context, m model.NewMessage) (*model.Message, error) {
	const q = `
INSERT INTO messages (user_id, user_email, subject, body)
VALUES ($1, $2, $3, $4)
RETURNING ` + messageCols
	msg, err := scanMessage(r.q.QueryRow(ctx, q, m.UserID, m.UserEmail, m.Subject, m.Body))
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// ListByUser returns the author's messages, newest first.
func (r *MessageRepo) ListByUser(ctx context.Context, userID int64) ([]model.Message, error) {
	const q = `
SELECT ` + messageCols + `
FROM messages
WHERE user_id=$1
ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, userID)
}

// ListAll returns all messages, newest first.
func (r *MessageRepo) ListAll(ctx context.Context) ([]model.Message, error) {
	const q = `
SELECT ` + messageCols + `
FROM messages
ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q)
}

// Reply answers a message in a single conditional update.
func (r *MessageRepo) Reply(ctx context.Context, id int64, reply string) (*model.Message, error) {
	const q = `
UPDATE messages
SET admin_reply=$2, status='answered', replied_at=now()
WHERE id=$1
RETURNING ` + messageCols
	msg, err := scanMessage(r.q.QueryRow(ctx, q, id, reply))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reply message: %w", err)
	}
	return msg, nil
}

func (r *MessageRepo) list(ctx context.Context, q string, args ...any) ([]model.Message, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*model.Message, error) {
	var (
		m         model.Message
		status    string
		reply     pgtype.Text
		repliedAt pgtype.Timestamptz
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.UserEmail, &m.Subject, &m.Body,
		&status, &reply, &repliedAt, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Status = model.MessageStatus(status)
	if reply.Valid {
		s := reply.String
		m.AdminReply = &s
	}
	if repliedAt.Valid {
		t := repliedAt.Time
		m.RepliedAt = &t
	}
	return &m, nil
}
