package queue

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/order-notifier/internal/events"
)

var ErrDeliveriesClosed = errors.New("rabbitmq deliveries channel closed")

// Topology names the exchange and queues the consumer works with.
type Topology struct {
	Exchange   string
	Queue      string
	RoutingKey string
	DLQ        string // empty disables dead-lettering
}

type deliveryChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type publisher interface {
	PublishWithRetry(body []byte, routingKey, contentType string, strategy retry.Strategy, opts ...rabbitmq.PublishingOptions) error
}

// NotificationQueue consumes order events from RabbitMQ with manual acknowledgement.
type NotificationQueue struct {
	ch        deliveryChannel
	publisher publisher
	topology  Topology
	strategy  retry.Strategy
}

// NewNotificationQueue declares the topology on ch and returns a queue ready to consume.
func NewNotificationQueue(ch *rabbitmq.Channel, t Topology, prefetch int, strategy retry.Strategy) (*NotificationQueue, error) {
	exchange := rabbitmq.NewExchange(t.Exchange, "topic")
	if err := exchange.BindToChannel(ch); err != nil {
		return nil, fmt.Errorf("failed to bind to exchange: %w", err)
	}

	qm := rabbitmq.NewQueueManager(ch)

	if t.DLQ != "" {
		if _, err := qm.DeclareQueue(t.DLQ, rabbitmq.QueueConfig{Durable: true}); err != nil {
			return nil, fmt.Errorf("failed to declare DLQ queue: %w", err)
		}
	}

	mainQ, err := qm.DeclareQueue(t.Queue, rabbitmq.QueueConfig{Durable: true})
	if err != nil {
		return nil, fmt.Errorf("failed to declare main queue: %w", err)
	}

	if err := ch.QueueBind(mainQ.Name, t.RoutingKey, exchange.Name(), false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind the exchange to the main queue: %w", err)
	}

	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	t.Queue = mainQ.Name

	return &NotificationQueue{
		ch:        ch,
		publisher: rabbitmq.NewPublisher(ch, ""),
		topology:  t,
		strategy:  strategy,
	}, nil
}

// Consume forwards deliveries to out until ctx is done. Every delivery must be
// acknowledged through its Ack func.
func (q *NotificationQueue) Consume(ctx context.Context, out chan<- events.Delivery) error {
	msgs, err := q.ch.Consume(q.topology.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	zlog.Logger.Info().Str("queue", q.topology.Queue).Msg("consuming order events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return ErrDeliveriesClosed
			}

			select {
			case out <- toDelivery(m):
			case <-ctx.Done():
				// unacked deliveries are redelivered by the broker
				return nil
			}
		}
	}
}

func toDelivery(m amqp.Delivery) events.Delivery {
	return events.Delivery{
		Body:   m.Body,
		Source: events.SourceRabbitMQ,
		Ack: func() error {
			return m.Ack(false)
		},
	}
}

// DeadLetter republishes body to the dead-letter queue when one is configured.
func (q *NotificationQueue) DeadLetter(body []byte) error {
	if q.topology.DLQ == "" {
		return nil
	}

	if err := q.publisher.PublishWithRetry(body, q.topology.DLQ, "application/json", q.strategy); err != nil {
		return fmt.Errorf("publish to dead-letter queue: %w", err)
	}

	return nil
}
