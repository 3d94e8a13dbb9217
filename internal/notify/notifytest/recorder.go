// Package notifytest provides an in-memory Notifier for tests.
package notifytest

import (
	"context"
	"sync"

	"github.com/and161185/helpdesk/internal/model"
	"github.com/and161185/helpdesk/internal/notify"
)

// Sent is one recorded notification.
type Sent struct {
	Kind    string // "new_message" or "reply"
	Message model.Message
}

// Recorder records every call. Err, when set, is returned from each call.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	Err  error
}

var _ notify.Notifier = (*Recorder)(nil)

func (r *Recorder) NewMessage(_ context.Context, m model.Message) error {
	return r.record("new_message", m)
}

func (r *Recorder) Reply(_ context.Context, m model.Message) error {
	return r.record("reply", m)
}

func (r *Recorder) record(kind string, m model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{Kind: kind, Message: m})
	return r.Err
}

// Sent returns a copy of the recorded calls.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}
