package repository

import "context"

// Repos groups repositories bound to one transaction.
type Repos interface {
	Users() UserRepository
	Sessions() SessionRepository
	Messages() MessageRepository
}

// Store runs units of work atomically.
type Store interface {
	// InTx runs fn inside a transaction: committed if fn returns nil,
	// rolled back on error or panic.
	InTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}
