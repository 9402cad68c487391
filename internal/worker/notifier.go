package worker

import (
	"context"
	"sync"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/order-notifier/internal/events"
)

//go:generate mockgen -source=notifier.go -destination=../mocks/worker/notifier_mock.go -package=mocks

type deliverySource interface {
	Consume(ctx context.Context, out chan<- events.Delivery) error
}

type messageHandler interface {
	HandleMessage(ctx context.Context, d events.Delivery) error
}

// Notifier fans inbound order events out to a pool of workers.
type Notifier struct {
	source  deliverySource
	handler messageHandler
}

func NewNotifier(s deliverySource, h messageHandler) *Notifier {
	return &Notifier{
		source:  s,
		handler: h,
	}
}

// Run consumes until ctx is done or the source stops, and returns the source error if any.
// Every handled delivery is acknowledged, whatever the outcome. Deliveries
// picked up or interrupted during shutdown stay unacknowledged for redelivery.
func (n *Notifier) Run(ctx context.Context, workerCount int) error {
	if workerCount < 1 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	msgChan := make(chan events.Delivery, workerCount*10)

	var consumeErr error
	go func() {
		defer close(msgChan)
		if err := n.source.Consume(ctx, msgChan); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to consume messages")
			consumeErr = err
		}
	}()

	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func(id int) {
			defer wg.Done()

			zlog.Logger.Debug().Int("worker", id).Msg("worker started")

			for {
				select {
				case <-ctx.Done():
					zlog.Logger.Debug().Int("worker", id).Msg("worker shutting down")
					return
				case d, ok := <-msgChan:
					if !ok {
						zlog.Logger.Debug().Int("worker", id).Msg("channel closed, worker shutting down")
						return
					}

					if ctx.Err() != nil {
						zlog.Logger.Debug().Int("worker", id).Msg("leaving delivery for redelivery")
						return
					}

					if err := n.handler.HandleMessage(ctx, d); err != nil {
						zlog.Logger.Warn().Err(err).Str("source", d.Source).Msg("delivery left unacknowledged")
						continue
					}

					if d.Ack == nil {
						continue
					}
					if err := d.Ack(); err != nil {
						zlog.Logger.Error().Err(err).Str("source", d.Source).Msg("failed to ack message")
					}
				}
			}
		}(i)
	}

	wg.Wait()
	zlog.Logger.Info().Msg("notifier stopped")

	if ctx.Err() != nil {
		return nil
	}

	return consumeErr
}
