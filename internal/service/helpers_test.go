package service

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/and161185/helpdesk/internal/model"
	"github.com/and161185/helpdesk/internal/notify"
	"github.com/and161185/helpdesk/internal/notify/notifytest"
	"github.com/and161185/helpdesk/internal/repository"
	"github.com/and161185/helpdesk/internal/repository/memory"
)

type env struct {
	store    *memory.Store
	auth     *AuthServiceImpl
	msgs     *MessageServiceImpl
	rec      *notifytest.Recorder
	dispatch *notify.Dispatcher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.New()
	rec := &notifytest.Recorder{}
	d := notify.NewDispatcher(zaptest.NewLogger(t), 0)
	e := &env{
		store:    store,
		auth:     NewAuthService(store, NewSessionValidator(store)),
		msgs:     NewMessageService(store, rec, d),
		rec:      rec,
		dispatch: d,
	}
	// fast hashing keeps the suite quick; real argon2id is covered in internal/crypto
	e.auth.hash = func(pw string) (string, error) { return "plain:" + pw, nil }
	e.auth.verify = func(pw, enc string) (bool, error) { return enc == "plain:"+pw, nil }
	return e
}

// sent drains the dispatcher and returns what the notifier saw.
func (e *env) sent(t *testing.T) []notifytest.Sent {
	t.Helper()
	if err := e.dispatch.Wait(context.Background()); err != nil {
		t.Fatalf("dispatcher wait: %v", err)
	}
	return e.rec.Sent()
}

func (e *env) register(t *testing.T, email string) model.Identity {
	t.Helper()
	res, err := e.auth.Register(context.Background(), email, "secret1")
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	id, err := e.auth.Me(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	return id
}

// stubStore hands fixed repositories to fn, or fails before calling it.
type stubStore struct {
	repos repository.Repos
	err   error
	calls int
}

func (s *stubStore) InTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return fn(ctx, s.repos)
}

type stubRepos struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	messages repository.MessageRepository
}

func (r stubRepos) Users() repository.UserRepository       { return r.users }
func (r stubRepos) Sessions() repository.SessionRepository { return r.sessions }
func (r stubRepos) Messages() repository.MessageRepository { return r.messages }
