package services

import "github.com/rs/zerolog/log"

// Routing keys of the domain events.
const (
	EventUserRegistered = "user.registered"
	EventUserDeleted    = "user.deleted"
	EventMessageSent    = "message.sent"
	EventMessageDeleted = "message.deleted"
)

// EventPublisher delivers domain events to interested consumers.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// publish sends an event when a publisher is configured. A failed publish
// is logged and never fails the operation that raised it.
func publish(p EventPublisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(routingKey, payload); err != nil {
		log.Warn().Err(err).Str("event", routingKey).Msg("failed to publish event")
	}
}
