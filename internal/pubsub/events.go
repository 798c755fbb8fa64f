// Package pubsub provides a generic publish/subscribe event broker used to
// fan out registry mutations, orchestration progress, and log entries to
// decoupled subscribers.
package pubsub

import (
	"context"
	"time"
)

// EventType identifies what a published event describes.
type EventType string

const (
	// EmittedEvent carries a plain payload delivery, e.g. a log entry.
	EmittedEvent EventType = "emitted"
	// ChangedEvent signals that a watched resource changed.
	ChangedEvent EventType = "changed"
	// FailedEvent carries a payload describing a failure.
	FailedEvent EventType = "failed"
)

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
