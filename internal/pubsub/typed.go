package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event[T] pairs a topic name with a payload type so publishing and
// subscribing stay type-checked at the call site.
type Event[T any] struct {
	topicName string
}

// NewEvent defines a typed event for a topic. Events are declared at package
// level next to the payload structs they carry.
func NewEvent[T any](name string) Event[T] {
	return Event[T]{topicName: name}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topicName
}

// Publish sends a typed event. The compiler ensures 'payload' matches 'T'.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		Payload: data,
	})
}

// Subscribe registers a typed handler for an event. Payloads that fail to
// unmarshal are logged and dropped rather than propagated, since a malformed
// message on an internal topic should never stop the subscription.
func Subscribe[T any](ctx context.Context, s Subscriber, event Event[T], handler func(ctx context.Context, payload T) error) error {
	return s.Subscribe(ctx, event.Name(), func(ctx context.Context, msg Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			slog.Error("Dropping undecodable message", "topic", event.Name(), "error", err)
			return nil
		}
		return handler(ctx, payload)
	})
}
