package docstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier fans change events out over Redis pub/sub, one channel per
// collection.
type RedisNotifier struct {
	client *redis.Client
	prefix string
}

// NewRedisNotifier builds a Redis-backed change feed.
func NewRedisNotifier(addr, password string) *RedisNotifier {
	return &RedisNotifier{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix: "docstore:",
	}
}

// Publish announces a change on the collection's channel.
func (n *RedisNotifier) Publish(ctx context.Context, ev Event) error {
	if err := n.client.Publish(ctx, n.prefix+ev.Collection, ev.ID).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Subscribe listens on the collection's channel. The returned stop function
// closes the underlying pub/sub connection, which closes the event channel.
func (n *RedisNotifier) Subscribe(ctx context.Context, collection string) (<-chan Event, func(), error) {
	pubsub := n.client.Subscribe(ctx, n.prefix+collection)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", collection, err)
	}
	events := make(chan Event)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			select {
			case events <- Event{Collection: collection, ID: msg.Payload}:
			case <-ctx.Done():
				return
			}
		}
	}()
	stop := func() { _ = pubsub.Close() }
	return events, stop, nil
}

// Close releases the client connection.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
