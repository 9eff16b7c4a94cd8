// Package pubsub provides the typed publish/subscribe channel the host uses
// to carry notifications between components that must not reference each
// other directly (the creation form and the list, the config watcher and
// the registry client).
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened to the payload.
type EventType string

const (
	CreatedEvent  EventType = "created"
	UpdatedEvent  EventType = "updated"
	DeletedEvent  EventType = "deleted"
	ReloadedEvent EventType = "reloaded"
)

// Event is a published notification with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes payloads to every current subscriber.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc[T any] func(eventType EventType, payload T)

// Publish calls f.
func (f PublisherFunc[T]) Publish(eventType EventType, payload T) {
	f(eventType, payload)
}
