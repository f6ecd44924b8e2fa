package services

import (
	"context"
	"errors"
	"fmt"

	"astromatch/internal/metrics"
	"astromatch/internal/models"
	"astromatch/internal/repositories"

	"github.com/rs/zerolog/log"
)

// DefaultRecentLimit is the number of messages the admin listing shows.
const DefaultRecentLimit = 50

// AdminService holds the administrative operations.
type AdminService struct {
	store  repositories.Store
	events EventPublisher
}

// NewAdminService creates a new AdminService. events may be nil.
func NewAdminService(store repositories.Store, events EventPublisher) *AdminService {
	return &AdminService{store: store, events: events}
}

// Users lists every member, newest first.
func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return withZodiac(users), nil
}

// RecentMessages returns up to limit messages, newest first, with both
// participants' usernames.
func (s *AdminService) RecentMessages(ctx context.Context, limit int) ([]models.MessageView, error) {
	if limit <= 0 || limit > 200 {
		limit = DefaultRecentLimit
	}
	msgs, err := s.store.Messages().GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ids := make([]string, 0, 2*len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.SenderID, m.ReceiverID)
	}
	users, err := resolveUsers(ctx, s.store.Users(), ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, models.MessageView{
			Message:          m,
			SenderUsername:   users[m.SenderID].Username,
			ReceiverUsername: users[m.ReceiverID].Username,
		})
	}
	return out, nil
}

// DeleteUser removes every message the user sent or received and then the
// user, as one transaction. When the user does not exist nothing is
// removed. It returns the number of messages deleted.
func (s *AdminService) DeleteUser(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		n, err := tx.Messages().DeleteByParticipant(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Users().Delete(ctx, id); err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return 0, fmt.Errorf("failed to delete user %s: %w", id, err)
	}

	metrics.UsersDeletedTotal.Inc()
	log.Info().Str("user_id", id).Int64("messages_deleted", removed).Msg("user deleted")
	publish(s.events, EventUserDeleted, map[string]any{
		"user_id":          id,
		"messages_deleted": removed,
	})
	return removed, nil
}

// DeleteMessage removes a single message.
func (s *AdminService) DeleteMessage(ctx context.Context, id string) error {
	if err := s.store.Messages().Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
		}
		return fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	publish(s.events, EventMessageDeleted, map[string]any{"message_id": id})
	return nil
}
