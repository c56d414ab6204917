package docstore

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier fans change events out through a RabbitMQ fanout exchange
// per collection, for deployments where subscribers live in other
// processes and Redis is not part of the stack.
type AMQPNotifier struct {
	conn *amqp.Connection

	mu  sync.Mutex
	pub *amqp.Channel
}

// NewAMQPNotifier dials the broker.
func NewAMQPNotifier(url string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	pub, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &AMQPNotifier{conn: conn, pub: pub}, nil
}

func exchangeName(collection string) string {
	return "docstore." + collection
}

// Publish announces a change on the collection's fanout exchange.
func (n *AMQPNotifier) Publish(ctx context.Context, ev Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	ex := exchangeName(ev.Collection)
	if err := n.pub.ExchangeDeclare(ex, "fanout", false, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	err := n.pub.PublishWithContext(ctx, ex, "", false, false, amqp.Publishing{
		ContentType: "text/plain",
		Body:        []byte(ev.ID),
	})
	if err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Subscribe binds an exclusive auto-deleted queue to the collection's
// exchange. The stop function closes the consumer channel, which closes
// the event channel.
func (n *AMQPNotifier) Subscribe(ctx context.Context, collection string) (<-chan Event, func(), error) {
	ch, err := n.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	ex := exchangeName(collection)
	if err := ch.ExchangeDeclare(ex, "fanout", false, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", ex, false, nil); err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("bind queue: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("consume: %w", err)
	}
	events := make(chan Event)
	go func() {
		defer close(events)
		for d := range deliveries {
			select {
			case events <- Event{Collection: collection, ID: string(d.Body)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	stop := func() { _ = ch.Close() }
	return events, stop, nil
}

// Close tears down the broker connection.
func (n *AMQPNotifier) Close() error {
	return n.conn.Close()
}
