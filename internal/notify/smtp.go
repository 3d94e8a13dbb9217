package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/and161185/helpdesk/internal/model"
)

// SMTPConfig describes the mail relay. Port 465 implies implicit TLS.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	// Admin is both the sender and the recipient of new-message notices.
	Admin string
}

// Enabled reports whether enough is configured to attempt delivery.
func (c SMTPConfig) Enabled() bool {
	return c.Password != "" && c.Admin != "" && c.Host != ""
}

type sendFunc func(m *gomail.Message) error

// SMTP is a Notifier backed by an SMTP relay.
type SMTP struct {
	cfg  SMTPConfig
	send sendFunc
}

var _ Notifier = (*SMTP)(nil)

// NewSMTP builds an SMTP notifier. Without a password or admin address every
// call returns ErrSkipped.
func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.User == "" {
		cfg.User = cfg.Admin
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &SMTP{cfg: cfg, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}
}

// NewMessage mails the administrator about m.
func (s *SMTP) NewMessage(ctx context.Context, m model.Message) error {
	if !s.cfg.Enabled() {
		return ErrSkipped
	}
	html, err := render(tmplNewMessage, newMessageData{From: m.UserEmail, Subject: m.Subject, Body: m.Body})
	if err != nil {
		return err
	}
	return s.deliver(ctx, s.cfg.Admin, "New inquiry: "+m.Subject, html)
}

// Reply mails the author of m the administrator's answer.
func (s *SMTP) Reply(ctx context.Context, m model.Message) error {
	if !s.cfg.Enabled() {
		return ErrSkipped
	}
	if m.AdminReply == nil {
		return fmt.Errorf("message %d has no reply", m.ID)
	}
	html, err := render(tmplReply, replyData{Subject: m.Subject, Reply: *m.AdminReply})
	if err != nil {
		return err
	}
	return s.deliver(ctx, m.UserEmail, "Reply to your inquiry: "+m.Subject, html)
}

func (s *SMTP) deliver(ctx context.Context, to, subject, html string) error {
	msg := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	msg.SetHeader("From", s.cfg.Admin)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	// gomail has no context support; abandon the dial when ctx expires.
	done := make(chan error, 1)
	go func() { done <- s.send(msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
