package notification

import (
	"context"
	"errors"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/order-notifier/internal/events"
	"github.com/aliskhannn/order-notifier/internal/metrics"
	"github.com/aliskhannn/order-notifier/internal/model"
	notifsvc "github.com/aliskhannn/order-notifier/internal/service/notification"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/rabbitmq/handlers/notification/mock.go -package=mocks
type notificationService interface {
	EnqueueIfNotDuplicate(ctx context.Context, d model.Draft) (model.Notification, error)
}

type deadLetterer interface {
	DeadLetter(body []byte) error
}

// Handler turns order events into pending notifications.
type Handler struct {
	service  notificationService
	dlq      deadLetterer
	strategy retry.Strategy
}

// NewHandler creates a message handler. dlq may be nil.
func NewHandler(svc notificationService, dlq deadLetterer, strategy retry.Strategy) *Handler {
	return &Handler{
		service:  svc,
		dlq:      dlq,
		strategy: strategy,
	}
}

// HandleMessage decodes an order.placed event and enqueues its notification.
// Application failures are logged and reported as handled, so the caller
// acknowledges the message; unrecoverable messages are dead-lettered when
// enabled. A non-nil error means handling was interrupted by ctx and the
// message must be left for redelivery.
func (h *Handler) HandleMessage(ctx context.Context, d events.Delivery) error {
	event, err := events.DecodeOrderPlaced(d.Body)
	if err != nil {
		if errors.Is(err, events.ErrUnknownPattern) {
			zlog.Logger.Debug().Err(err).Msg("ignoring event")
			metrics.EventsConsumed.WithLabelValues(d.Source, metrics.OutcomeSkipped).Inc()
			return nil
		}

		zlog.Logger.Warn().Err(err).Str("source", d.Source).Msg("failed to decode order event")
		metrics.EventsConsumed.WithLabelValues(d.Source, metrics.OutcomeInvalid).Inc()
		h.deadLetter(d)
		return nil
	}

	draft, err := event.Draft()
	if err != nil {
		zlog.Logger.Error().Err(err).Str("order_id", event.OrderID).Msg("failed to map order event")
		metrics.EventsConsumed.WithLabelValues(d.Source, metrics.OutcomeInvalid).Inc()
		h.deadLetter(d)
		return nil
	}

	var invalid error
	err = retry.Do(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := h.service.EnqueueIfNotDuplicate(ctx, draft)
		if errors.Is(err, notifsvc.ErrInvalidDraft) {
			// retrying does not fix a bad event
			invalid = err
			return nil
		}
		if err != nil {
			zlog.Logger.Warn().Err(err).Str("order_id", event.OrderID).Msg("enqueue failed, retrying")
			return err
		}

		zlog.Logger.Info().
			Str("id", n.ID.String()).
			Str("order_id", event.OrderID).
			Str("status", string(n.Status)).
			Msg("order event handled")
		return nil
	}, h.strategy)

	if err != nil && ctx.Err() != nil {
		zlog.Logger.Warn().Str("order_id", event.OrderID).Msg("order event handling interrupted")
		return ctx.Err()
	}

	switch {
	case invalid != nil:
		zlog.Logger.Warn().Err(invalid).Str("order_id", event.OrderID).Msg("order event rejected")
		metrics.EventsConsumed.WithLabelValues(d.Source, metrics.OutcomeInvalid).Inc()
		h.deadLetter(d)
	case err != nil:
		zlog.Logger.Error().Err(err).Str("order_id", event.OrderID).Msg("dropping order event after retries")
		metrics.EventsConsumed.WithLabelValues(d.Source, metrics.OutcomeError).Inc()
		h.deadLetter(d)
	default:
		metrics.EventsConsumed.WithLabelValues(d.Source, metrics.OutcomeEnqueued).Inc()
	}

	return nil
}

func (h *Handler) deadLetter(d events.Delivery) {
	if h.dlq == nil {
		return
	}

	if err := h.dlq.DeadLetter(d.Body); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to dead-letter order event")
		return
	}

	metrics.EventsConsumed.WithLabelValues(d.Source, metrics.OutcomeDeadLetter).Inc()
}
