package common

import (
	"geminibot/internal/events"

	"go.uber.org/zap"
)

// EventPublisher publishes events on a best-effort basis. A failed publish is
// logged and never surfaces to the caller, so bookkeeping cannot break a reply.
type EventPublisher struct {
	eventBus events.EventBus
	logger   *zap.Logger
}

// NewEventPublisher creates a new EventPublisher instance
func NewEventPublisher(eventBus events.EventBus, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{
		eventBus: eventBus,
		logger:   logger,
	}
}

// Publish sends event on topic and reports whether it was accepted.
func (p *EventPublisher) Publish(topic string, event interface{}) bool {
	if p == nil || p.eventBus == nil {
		return false
	}
	if err := p.eventBus.Publish(topic, event); err != nil {
		p.logger.Warn("Failed to publish event",
			zap.String("topic", topic),
			zap.Error(err))
		return false
	}
	return true
}
