package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GORMStore is a Store backed by a single *gorm.DB.
type GORMStore struct {
	db       *gorm.DB
	users    *GORMUserRepository
	messages *GORMMessageRepository
}

// NewGORMStore creates a Store over db.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{
		db:       db,
		users:    NewGORMUserRepository(db),
		messages: NewGORMMessageRepository(db),
	}
}

// Users returns the user repository.
func (s *GORMStore) Users() UserRepository { return s.users }

// Messages returns the message repository.
func (s *GORMStore) Messages() MessageRepository { return s.messages }

// WithinTx runs fn inside a database transaction.
func (s *GORMStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}

var errNilDB = errors.New("nil database handle")

// Ping checks that the underlying connection is alive.
func (s *GORMStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return errNilDB
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
