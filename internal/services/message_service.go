package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"astromatch/internal/metrics"
	"astromatch/internal/models"
	"astromatch/internal/repositories"
)

// MessageService handles direct messages between members.
type MessageService struct {
	userRepo    repositories.UserRepository
	messageRepo repositories.MessageRepository
	events      EventPublisher
}

// NewMessageService creates a new MessageService. events may be nil.
func NewMessageService(userRepo repositories.UserRepository, messageRepo repositories.MessageRepository, events EventPublisher) *MessageService {
	return &MessageService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		events:      events,
	}
}

// Send stores a message from senderID to receiverID. A sender that no
// longer exists has no session to send from.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, text string) (*models.Message, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", ErrInvalidInput)
	}
	if _, err := s.userRepo.GetByID(ctx, senderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: sender %s", ErrNoSession, senderID)
		}
		return nil, fmt.Errorf("failed to look up sender: %w", err)
	}
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: receiver %s", ErrUserNotFound, receiverID)
		}
		return nil, fmt.Errorf("failed to look up receiver: %w", err)
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	metrics.MessagesSentTotal.Inc()
	publish(s.events, EventMessageSent, map[string]any{
		"message_id":  msg.ID,
		"sender_id":   msg.SenderID,
		"receiver_id": msg.ReceiverID,
	})
	return msg, nil
}

// Thread returns every message between the two users, oldest first. A pair
// with no history, including one where a side was deleted, gives an empty
// list.
func (s *MessageService) Thread(ctx context.Context, userID, otherID string) ([]models.Message, error) {
	msgs, err := s.messageRepo.GetThread(ctx, models.NewPairKey(userID, otherID))
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	return msgs, nil
}

// Inbox returns the viewer's conversations with each counterpart's public
// identity filled in.
func (s *MessageService) Inbox(ctx context.Context, viewerID string) ([]models.Conversation, error) {
	msgs, err := s.messageRepo.GetByReceiver(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inbox: %w", err)
	}
	convs := AggregateConversations(msgs, viewerID)
	if len(convs) == 0 {
		return convs, nil
	}

	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.Sender.ID)
	}
	senders, err := resolveUsers(ctx, s.userRepo, ids)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		if u, ok := senders[convs[i].Sender.ID]; ok {
			convs[i].Sender = u.Summary()
		}
	}
	return convs, nil
}

// resolveUsers fetches the users behind ids with one query.
func resolveUsers(ctx context.Context, userRepo repositories.UserRepository, ids []string) (map[string]models.User, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	users, err := userRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}
