package repositories

import "context"

// Store groups the repositories that share one backing database.
type Store interface {
	Users() UserRepository
	Messages() MessageRepository
	// WithinTx runs fn against a transactional view of the store. Every
	// write fn makes is committed when it returns nil and discarded
	// otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
