// Package client is a Go client for the helpdesk HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenHeader carries the session token on authenticated calls.
const TokenHeader = "X-Session-Token"

// APIError is a non-2xx response from the server.
type APIError struct {
	Status    int
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%d %s (request %s)", e.Status, e.Message, e.RequestID)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Session is returned by Register and Login.
type Session struct {
	Token   string `json:"token"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Me describes the signed-in account.
type Me struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Message is a support message as returned by the list calls.
type Message struct {
	ID         int64      `json:"id"`
	UserEmail  string     `json:"user_email,omitempty"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	Status     string     `json:"status"`
	AdminReply *string    `json:"admin_reply"`
	RepliedAt  *time.Time `json:"replied_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Client talks to one helpdesk server.
type Client struct {
	base  string
	http  *http.Client
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithToken sets the session token sent on every call.
func WithToken(tok string) Option { return func(c *Client) { c.token = tok } }

// New returns a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Token returns the current session token.
func (c *Client) Token() string { return c.token }

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/auth", "register", map[string]string{"email": email, "password": password}, &s)
	if err == nil {
		c.token = s.Token
	}
	return s, err
}

// Login signs in and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/auth", "login", map[string]string{"email": email, "password": password}, &s)
	if err == nil {
		c.token = s.Token
	}
	return s, err
}

// Logout ends the current session and forgets the token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth", "logout", nil, nil)
	c.token = ""
	return err
}

// Me returns the signed-in account.
func (c *Client) Me(ctx context.Context) (Me, error) {
	var m Me
	err := c.do(ctx, http.MethodGet, "/auth", "me", nil, &m)
	return m, err
}

// Send submits a support message and returns its id.
func (c *Client) Send(ctx context.Context, subject, body string) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/messages", "send", map[string]string{"subject": subject, "body": body}, &out)
	return out.ID, err
}

// MyMessages lists the caller's messages, newest first.
func (c *Client) MyMessages(ctx context.Context) ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}
	err := c.do(ctx, http.MethodGet, "/messages", "my", nil, &out)
	return out.Messages, err
}

// AdminMessages lists every message. Admin only.
func (c *Client) AdminMessages(ctx context.Context) ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}
	err := c.do(ctx, http.MethodGet, "/messages", "admin_list", nil, &out)
	return out.Messages, err
}

// AdminReply answers a message. Admin only.
func (c *Client) AdminReply(ctx context.Context, messageID int64, reply string) error {
	return c.do(ctx, http.MethodPost, "/messages", "admin_reply", map[string]any{"message_id": messageID, "reply": reply}, nil)
}

func (c *Client) do(ctx context.Context, method, path, action string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	u := c.base + path + "?action=" + url.QueryEscape(action)
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(TokenHeader, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode), RequestID: resp.Header.Get("X-Request-ID")}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", action, err)
	}
	return nil
}
