// Package kafka consumes order events from a Kafka topic.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/order-notifier/internal/events"
)

var ErrNoBrokers = errors.New("at least one Kafka broker address is required")

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads a topic as part of a consumer group and commits offsets
// only after a message has been handled.
type Consumer struct {
	reader reader
}

// NewConsumer creates a consumer group reader for topic.
func NewConsumer(brokers []string, topic, group string) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  group,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		MaxWait:  500 * time.Millisecond,
	})

	return &Consumer{reader: r}, nil
}

// Consume forwards messages to out until ctx is done.
func (c *Consumer) Consume(ctx context.Context, out chan<- events.Delivery) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		msg := m
		d := events.Delivery{
			Body:   msg.Value,
			Source: events.SourceKafka,
			Ack: func() error {
				return c.reader.CommitMessages(context.Background(), msg)
			},
		}

		select {
		case out <- d:
		case <-ctx.Done():
			return nil
		}

		zlog.Logger.Debug().
			Str("topic", msg.Topic).
			Int("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("order event fetched")
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
