package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/gridroom/gridroom-backend/pkg/protocol"
)

// Broker fans room snapshots out to every process holding a push
// connection for the room. Delivery is at-least-once and unordered;
// subscribers rely on snapshot revisions, not on the broker.
type Broker struct {
	logger *slog.Logger
	client *redis.Client
}

func NewBroker(logger *slog.Logger, client *redis.Client) *Broker {
	return &Broker{
		logger: logger.With("component", "pubsub"),
		client: client,
	}
}

// PublishSnapshot - publishes a full snapshot under the given topic.
func (that *Broker) PublishSnapshot(ctx context.Context, topic string, snapshot *protocol.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err = that.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	return nil
}

// Subscribe - delivers every message published under the topics as an
// Envelope until ctx is cancelled or the returned cancel func is called.
func (that *Broker) Subscribe(ctx context.Context, topics ...string) (<-chan protocol.Envelope, func()) {
	log := that.logger.With("method", "Subscribe")

	sub := that.client.Subscribe(ctx, topics...)
	events := make(chan protocol.Envelope)

	go func() {
		defer close(events)

		for message := range sub.Channel() {
			envelope := protocol.Envelope{
				Topic:   message.Channel,
				Payload: json.RawMessage(message.Payload),
			}

			select {
			case events <- envelope:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		if err := sub.Close(); err != nil {
			log.Error("failed to close subscription", "error", err)
		}
	}

	return events, cancel
}
