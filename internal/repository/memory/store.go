// Package memory is an in-process implementation of repository.Store.
// It serializes transactions and restores a snapshot on rollback.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/and161185/helpdesk/internal/errs"
	"github.com/and161185/helpdesk/internal/model"
	"github.com/and161185/helpdesk/internal/repository"
)

// DefaultSessionTTL mirrors the sessions.expires_at column default.
const DefaultSessionTTL = 30 * 24 * time.Hour

type state struct {
	users      []model.User
	sessions   map[string]model.Session
	messages   []model.Message
	nextUserID int64
	nextMsgID  int64
}

func (s *state) clone() *state {
	c := &state{
		users:      slices.Clone(s.users),
		sessions:   make(map[string]model.Session, len(s.sessions)),
		messages:   slices.Clone(s.messages),
		nextUserID: s.nextUserID,
		nextMsgID:  s.nextMsgID,
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	return c
}

// Store keeps users, sessions and messages in memory.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
	ttl time.Duration
}

var _ repository.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithSessionTTL overrides DefaultSessionTTL.
func WithSessionTTL(d time.Duration) Option { return func(s *Store) { s.ttl = d } }

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		st:  &state{sessions: map[string]model.Session{}},
		now: time.Now,
		ttl: DefaultSessionTTL,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// InTx runs fn under the store lock; state is restored if fn fails or panics.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
		if err != nil {
			s.st = snapshot
		}
	}()
	return fn(ctx, repos{s: s})
}

// SetAdmin flips the admin flag of an existing account.
func (s *Store) SetAdmin(email string, admin bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.st.users {
		if strings.EqualFold(s.st.users[i].Email, email) {
			s.st.users[i].IsAdmin = admin
			return true
		}
	}
	return false
}

// UserCount returns the number of stored users.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.users)
}

// MessageCount returns the number of stored messages.
func (s *Store) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.messages)
}

// SessionCount returns the number of stored sessions, expired ones included.
func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.sessions)
}

type repos struct{ s *Store }

func (r repos) Users() repository.UserRepository       { return users{r.s} }
func (r repos) Sessions() repository.SessionRepository { return sessions{r.s} }
func (r repos) Messages() repository.MessageRepository { return messages{r.s} }

type users struct{ s *Store }

func (u users) Create(_ context.Context, email, pwdHash string) (*model.User, error) {
	for _, x := range u.s.st.users {
		if strings.EqualFold(x.Email, email) {
			return nil, errs.ErrAlreadyExists
		}
	}
	u.s.st.nextUserID++
	usr := model.User{ID: u.s.st.nextUserID, Email: email, PwdHash: pwdHash, CreatedAt: u.s.now()}
	u.s.st.users = append(u.s.st.users, usr)
	return &usr, nil
}

func (u users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, x := range u.s.st.users {
		if x.Email == email {
			c := x
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (u users) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, x := range u.s.st.users {
		if strings.EqualFold(x.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (u users) byID(id int64) (model.User, bool) {
	for _, x := range u.s.st.users {
		if x.ID == id {
			return x, true
		}
	}
	return model.User{}, false
}

type sessions struct{ s *Store }

func (ss sessions) Create(_ context.Context, userID int64, token string) (*model.Session, error) {
	if _, ok := (users{ss.s}).byID(userID); !ok {
		return nil, errs.ErrNotFound
	}
	if _, dup := ss.s.st.sessions[token]; dup {
		return nil, errs.ErrAlreadyExists
	}
	now := ss.s.now()
	sess := model.Session{Token: token, UserID: userID, ExpiresAt: now.Add(ss.s.ttl), CreatedAt: now}
	ss.s.st.sessions[token] = sess
	return &sess, nil
}

func (ss sessions) Resolve(_ context.Context, token string) (*model.Identity, error) {
	sess, ok := ss.s.st.sessions[token]
	if !ok || !sess.ExpiresAt.After(ss.s.now()) {
		return nil, errs.ErrNotFound
	}
	u, ok := (users{ss.s}).byID(sess.UserID)
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &model.Identity{UserID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin}, nil
}

func (ss sessions) Delete(_ context.Context, token string) error {
	delete(ss.s.st.sessions, token)
	return nil
}

func (ss sessions) DeleteExpired(_ context.Context) (int64, error) {
	now := ss.s.now()
	var n int64
	for tok, sess := range ss.s.st.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(ss.s.st.sessions, tok)
			n++
		}
	}
	return n, nil
}

type messages struct{ s *Store }

func (m messages) Create(_ context.Context, in model.NewMessage) (*model.Message, error) {
	m.s.st.nextMsgID++
	msg := model.Message{
		ID:        m.s.st.nextMsgID,
		UserID:    in.UserID,
		UserEmail: in.UserEmail,
		Subject:   in.Subject,
		Body:      in.Body,
		Status:    model.StatusPending,
		CreatedAt: m.s.now(),
	}
	m.s.st.messages = append(m.s.st.messages, msg)
	return &msg, nil
}

func (m messages) ListByUser(_ context.Context, userID int64) ([]model.Message, error) {
	out := make([]model.Message, 0)
	for _, x := range m.s.st.messages {
		if x.UserID == userID {
			out = append(out, x)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m messages) ListAll(_ context.Context) ([]model.Message, error) {
	out := slices.Clone(m.s.st.messages)
	if out == nil {
		out = make([]model.Message, 0)
	}
	sortNewestFirst(out)
	return out, nil
}

func (m messages) Reply(_ context.Context, id int64, reply string) (*model.Message, error) {
	for i := range m.s.st.messages {
		if m.s.st.messages[i].ID != id {
			continue
		}
		text, at := reply, m.s.now()
		m.s.st.messages[i].AdminReply = &text
		m.s.st.messages[i].RepliedAt = &at
		m.s.st.messages[i].Status = model.StatusAnswered
		c := m.s.st.messages[i]
		return &c, nil
	}
	return nil, errs.ErrNotFound
}

func sortNewestFirst(ms []model.Message) {
	slices.SortFunc(ms, func(a, b model.Message) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
}
