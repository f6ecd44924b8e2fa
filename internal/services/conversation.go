package services

import (
	"sort"

	"astromatch/internal/models"
)

// AggregateConversations groups the messages addressed to viewerID by
// sender. Each conversation carries the sender's latest message (the first
// one seen wins when timestamps are equal) and how many messages the sender
// wrote. Messages to anyone else are ignored.
//
// Conversations are ordered by latest message, newest first, then by
// sender ID. Only Sender.ID is filled in.
func AggregateConversations(msgs []models.Message, viewerID string) []models.Conversation {
	convs := make([]models.Conversation, 0)
	bySender := make(map[string]int)

	for _, m := range msgs {
		if m.ReceiverID != viewerID {
			continue
		}
		i, ok := bySender[m.SenderID]
		if !ok {
			bySender[m.SenderID] = len(convs)
			convs = append(convs, models.Conversation{
				Sender:      models.UserSummary{ID: m.SenderID},
				LastMessage: m,
				Count:       1,
			})
			continue
		}
		c := &convs[i]
		c.Count++
		if m.CreatedAt.After(c.LastMessage.CreatedAt) {
			c.LastMessage = m
		}
	}

	sort.Slice(convs, func(i, j int) bool {
		a, b := convs[i].LastMessage.CreatedAt, convs[j].LastMessage.CreatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return convs[i].Sender.ID < convs[j].Sender.ID
	})
	return convs
}
