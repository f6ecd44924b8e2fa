package repositories

import (
	"context"
	"fmt"

	"astromatch/internal/models"

	"gorm.io/gorm"
)

// GORMMessageRepository is a GORM implementation of MessageRepository.
type GORMMessageRepository struct {
	db *gorm.DB
}

// NewGORMMessageRepository creates a new instance of GORMMessageRepository.
func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{
		db: db,
	}
}

// Create stores a new message.
func (r *GORMMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = newID()
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetThread retrieves both directions of the conversation between the two
// users of key, oldest first.
func (r *GORMMessageRepository) GetThread(ctx context.Context, key models.PairKey) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", key.Low, key.High, key.High, key.Low).
		Order("created_at asc").
		Order("id asc").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return msgs, nil
}

// GetByReceiver retrieves every message addressed to receiverID, newest first.
func (r *GORMMessageRepository) GetByReceiver(ctx context.Context, receiverID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("receiver_id = ?", receiverID).
		Order("created_at desc").
		Order("id desc").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get messages for receiver %s: %w", receiverID, err)
	}
	return msgs, nil
}

// GetRecent retrieves up to limit messages, newest first.
func (r *GORMMessageRepository) GetRecent(ctx context.Context, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}
	return msgs, nil
}

// Delete deletes a message by its ID.
func (r *GORMMessageRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Message{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("message with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteByParticipant deletes every message sent or received by userID.
func (r *GORMMessageRepository) DeleteByParticipant(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Delete(&models.Message{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete messages of user %s: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}
