package repositories

import (
	"context"

	"astromatch/internal/models"
)

// MessageRepository defines the interface for message data access.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	// GetThread returns both directions of a two-party thread, oldest first.
	// Messages with equal timestamps keep insertion order.
	GetThread(ctx context.Context, key models.PairKey) ([]models.Message, error)
	// GetByReceiver returns every message addressed to receiverID, newest first.
	GetByReceiver(ctx context.Context, receiverID string) ([]models.Message, error)
	// GetRecent returns up to limit messages, newest first.
	GetRecent(ctx context.Context, limit int) ([]models.Message, error)
	Delete(ctx context.Context, id string) error
	// DeleteByParticipant removes every message userID sent or received and
	// returns how many were removed.
	DeleteByParticipant(ctx context.Context, userID string) (int64, error)
}
