package service

import (
	"context"
	"errors"
	"strings"

	"github.com/and161185/helpdesk/internal/errs"
	"github.com/and161185/helpdesk/internal/model"
	"github.com/and161185/helpdesk/internal/notify"
	"github.com/and161185/helpdesk/internal/repository"
)

// MessageService defines support-inbox operations. The caller identity is
// resolved beforehand; nil means the request carried no valid session.
type MessageService interface {
	// Send stores a pending message and notifies the administrator.
	Send(ctx context.Context, who *model.Identity, subject, body string) (int64, error)
	// ListOwn returns the caller's messages, newest first.
	ListOwn(ctx context.Context, who *model.Identity) ([]model.Message, error)
	// ListAll returns every message, newest first. Admin only.
	ListAll(ctx context.Context, who *model.Identity) ([]model.Message, error)
	// Reply answers a message and notifies its author. Admin only.
	Reply(ctx context.Context, who *model.Identity, messageID int64, text string) error
}

type MessageServiceImpl struct {
	store    repository.Store
	notifier notify.Notifier
	dispatch *notify.Dispatcher
}

var _ MessageService = (*MessageServiceImpl)(nil)

// NewMessageService constructs MessageService. Notifications are run on dispatch
// after the transaction commits.
func NewMessageService(store repository.Store, notifier notify.Notifier, dispatch *notify.Dispatcher) *MessageServiceImpl {
	return &MessageServiceImpl{store: store, notifier: notifier, dispatch: dispatch}
}

// Send validates and stores a message authored by who.
func (s *MessageServiceImpl) Send(ctx context.Context, who *model.Identity, subject, body string) (int64, error) {
	if who == nil {
		return 0, ErrNotAuthenticated
	}
	subject, body = strings.TrimSpace(subject), strings.TrimSpace(body)
	if subject == "" || body == "" {
		return 0, ErrMessageRequired
	}

	var msg *model.Message
	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		msg, err = r.Messages().Create(ctx, model.NewMessage{
			UserID:    who.UserID,
			UserEmail: who.Email,
			Subject:   subject,
			Body:      body,
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	m := *msg
	s.notify(ctx, "new_message", func(ctx context.Context) error { return s.notifier.NewMessage(ctx, m) })
	return m.ID, nil
}

// ListOwn returns messages authored by who.
func (s *MessageServiceImpl) ListOwn(ctx context.Context, who *model.Identity) ([]model.Message, error) {
	if who == nil {
		return nil, ErrNotAuthenticated
	}
	var out []model.Message
	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		out, err = r.Messages().ListByUser(ctx, who.UserID)
		return err
	})
	return out, err
}

// ListAll returns all messages for an administrator.
func (s *MessageServiceImpl) ListAll(ctx context.Context, who *model.Identity) ([]model.Message, error) {
	if who == nil || !who.IsAdmin {
		return nil, ErrAccessDenied
	}
	var out []model.Message
	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		out, err = r.Messages().ListAll(ctx)
		return err
	})
	return out, err
}

// Reply records the administrator's answer. Replying again overwrites the
// previous answer and its timestamp.
func (s *MessageServiceImpl) Reply(ctx context.Context, who *model.Identity, messageID int64, text string) error {
	if who == nil || !who.IsAdmin {
		return ErrAccessDenied
	}
	text = strings.TrimSpace(text)
	if messageID <= 0 || text == "" {
		return ErrReplyRequired
	}

	var msg *model.Message
	err := s.store.InTx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		msg, err = r.Messages().Reply(ctx, messageID, text)
		return err
	})
	if errors.Is(err, errs.ErrNotFound) {
		return ErrMessageNotFound
	}
	if err != nil {
		return err
	}

	m := *msg
	s.notify(ctx, "reply", func(ctx context.Context) error { return s.notifier.Reply(ctx, m) })
	return nil
}

func (s *MessageServiceImpl) notify(ctx context.Context, kind string, fn func(ctx context.Context) error) {
	if s.notifier == nil || s.dispatch == nil {
		return
	}
	s.dispatch.Go(ctx, kind, fn)
}
