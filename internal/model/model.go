// Package model defines domain entities used by services and repositories.
package model

import "time"

// User represents an account. Email is stored trimmed and lower-cased.
type User struct {
	ID        int64
	Email     string // unique, case-insensitive
	PwdHash   string // PHC-encoded Argon2id
	IsAdmin   bool
	CreatedAt time.Time
}

// Session is an opaque bearer credential owned by a user.
type Session struct {
	Token     string
	UserID    int64 // FK -> users.id
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity is the live user behind a resolved session token.
type Identity struct {
	UserID  int64
	Email   string
	IsAdmin bool
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token   string
	Email   string
	IsAdmin bool
}

// MessageStatus is the lifecycle state of a support message.
type MessageStatus string

const (
	StatusPending  MessageStatus = "pending"
	StatusAnswered MessageStatus = "answered"
)

// Message is a support inquiry. AdminReply and RepliedAt are set together by a reply.
type Message struct {
	ID         int64
	UserID     int64
	UserEmail  string // author email captured at submission time
	Subject    string
	Body       string
	Status     MessageStatus
	AdminReply *string
	RepliedAt  *time.Time
	CreatedAt  time.Time
}

// NewMessage is the input for inserting a pending message.
type NewMessage struct {
	UserID    int64
	UserEmail string
	Subject   string
	Body      string
}

// Answered reports whether both reply fields are present.
func (m Message) Answered() bool {
	return m.AdminReply != nil && m.RepliedAt != nil
}

// Consistent reports whether status agrees with the reply fields.
func (m Message) Consistent() bool {
	if (m.AdminReply == nil) != (m.RepliedAt == nil) {
		return false
	}
	return (m.Status == StatusAnswered) == m.Answered()
}
