package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

const changeChannelPrefix = "changes:"

// RedisBus fans change events out across processes via redis pub/sub.
// Delivery is at-most-once per subscriber; convergence relies on the store
// remaining the source of truth.
type RedisBus struct {
	client *redis.Client
	logger *logging.Logger
}

// NewRedisBus creates a redis-backed change bus.
func NewRedisBus(client *redis.Client, logger *logging.Logger) *RedisBus {
	if client == nil {
		panic("realtime: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisBus{client: client, logger: logger.Component("realtime.bus")}
}

// Publish emits the event on the table's change channel.
func (b *RedisBus) Publish(ctx context.Context, event ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("realtime: marshal change event: %w", err)
	}
	if err := b.client.Publish(ctx, changeChannelPrefix+event.Table, data).Err(); err != nil {
		return fmt.Errorf("realtime: publish change event: %w", err)
	}
	return nil
}

// Subscribe listens on all table change channels until ctx is cancelled.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	pubsub := b.client.PSubscribe(ctx, changeChannelPrefix+"*")
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("realtime: subscribe: %w", err)
	}

	out := make(chan ChangeEvent, 16)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Error("dropping malformed change event", "error", err, "channel", msg.Channel)
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
