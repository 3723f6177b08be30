package services

import "context"

// EventPublisher publishes domain events to the message broker for external
// delivery channels (email, SMS, push workers).
type EventPublisher interface {
	// Publish sends one event, keyed so events for the same recipient stay ordered.
	Publish(ctx context.Context, key string, event any) error

	// Close flushes and releases the underlying connection.
	Close() error
}
