package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/order-notifier/internal/gateway"
	"github.com/aliskhannn/order-notifier/internal/metrics"
	"github.com/aliskhannn/order-notifier/internal/model"
	notifrepo "github.com/aliskhannn/order-notifier/internal/repository/notification"
)

// BatchResult summarises one pass over pending notifications.
type BatchResult struct {
	Picked    int
	Delivered int
	Failed    int
	Skipped   int
}

// RenderMessage builds the outgoing message. The subject is the notification
// type; the body is the payload itself when it is a JSON string, otherwise its
// compact JSON encoding.
func RenderMessage(n model.Notification) gateway.Message {
	msg := gateway.Message{To: n.Recipient, Subject: n.Type}

	raw := bytes.TrimSpace(n.Payload)
	if len(raw) == 0 {
		return msg
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		msg.HTML = text
		return msg
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		msg.HTML = string(raw)
		return msg
	}
	msg.HTML = buf.String()

	return msg
}

// Dispatch claims a PENDING notification and delivers it through the gateway
// of its channel. A notification is delivered by at most one caller at a time
// and is never sent again once it reached SUCCESS.
func (s *Service) Dispatch(ctx context.Context, id uuid.UUID) (model.DispatchResult, error) {
	_, result, err := s.dispatch(ctx, id)
	return result, err
}

func (s *Service) dispatch(ctx context.Context, id uuid.UUID) (model.Notification, model.DispatchResult, error) {
	n, err := s.repo.Claim(ctx, id)
	if errors.Is(err, notifrepo.ErrTransitionConflict) {
		return n, model.DispatchResult{}, claimConflict(n)
	}
	if err != nil {
		return model.Notification{}, model.DispatchResult{}, fmt.Errorf("claim notification: %w", err)
	}

	s.cacheStatus(ctx, n.ID, n.Status)

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	start := time.Now()
	receipt, sendErr := s.gateway.Deliver(sendCtx, n.Channel, RenderMessage(n))
	cancel()
	metrics.DispatchDuration.WithLabelValues(string(n.Channel)).Observe(time.Since(start).Seconds())

	// the outcome must be recorded even if the caller is gone
	storeCtx := context.WithoutCancel(ctx)

	if sendErr != nil {
		return s.recordFailure(storeCtx, n, sendErr)
	}

	sentAt := receipt.SentAt
	if sentAt.IsZero() {
		sentAt = s.now()
	}

	updated, err := s.repo.MarkSucceeded(storeCtx, n.ID, receipt.ProviderID, sentAt)
	if err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("id", n.ID.String()).
			Str("provider_id", receipt.ProviderID).
			Msg("notification sent but success was not recorded")
		return n, model.DispatchResult{}, fmt.Errorf("record delivery: %w", err)
	}

	s.cacheStatus(storeCtx, updated.ID, updated.Status)
	metrics.Dispatched.WithLabelValues(string(n.Channel), metrics.OutcomeDelivered).Inc()
	zlog.Logger.Info().
		Str("id", updated.ID.String()).
		Str("provider_id", updated.ProviderID).
		Int("attempts", updated.Attempts).
		Msg("notification delivered")

	return updated, model.DispatchResult{
		ProviderID: receipt.ProviderID,
		PreviewURL: receipt.PreviewURL,
		SentAt:     sentAt,
	}, nil
}

func (s *Service) recordFailure(ctx context.Context, n model.Notification, sendErr error) (model.Notification, model.DispatchResult, error) {
	failure := fmt.Errorf("%w: %w", ErrDeliveryFailed, sendErr)

	updated, err := s.repo.MarkFailed(ctx, n.ID, sendErr.Error(), s.maxRetries)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("id", n.ID.String()).Msg("failed to record delivery failure")
		return n, model.DispatchResult{}, failure
	}

	s.cacheStatus(ctx, updated.ID, updated.Status)

	outcome := metrics.OutcomeRetry
	if updated.Status == model.StatusFailed {
		outcome = metrics.OutcomeFailed
	}
	metrics.Dispatched.WithLabelValues(string(n.Channel), outcome).Inc()

	zlog.Logger.Warn().
		Err(sendErr).
		Str("id", updated.ID.String()).
		Int("attempts", updated.Attempts).
		Str("status", string(updated.Status)).
		Msg("notification delivery failed")

	return updated, model.DispatchResult{}, failure
}

func claimConflict(current model.Notification) error {
	switch current.Status {
	case model.StatusSuccess:
		return ErrAlreadyDelivered
	case model.StatusFailed:
		return ErrPermanentlyFailed
	default:
		return ErrDispatchInProgress
	}
}

// skippable reports whether a dispatch error means another path owns or
// finished the notification.
func skippable(err error) bool {
	return errors.Is(err, ErrAlreadyDelivered) ||
		errors.Is(err, ErrPermanentlyFailed) ||
		errors.Is(err, ErrDispatchInProgress)
}

// ProcessPendingBatch dispatches up to size of the oldest PENDING notifications.
func (s *Service) ProcessPendingBatch(ctx context.Context, size int) (BatchResult, error) {
	pending, err := s.repo.ListPending(ctx, size)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list pending notifications: %w", err)
	}

	res := BatchResult{Picked: len(pending)}
	metrics.SweepBatch.Set(float64(len(pending)))

	for _, n := range pending {
		if ctx.Err() != nil {
			break
		}

		_, err := s.Dispatch(ctx, n.ID)
		switch {
		case err == nil:
			res.Delivered++
		case skippable(err):
			res.Skipped++
			metrics.Dispatched.WithLabelValues(string(n.Channel), metrics.OutcomeSkipped).Inc()
		case errors.Is(err, ErrDeliveryFailed):
			res.Failed++
		default:
			res.Failed++
			zlog.Logger.Error().Err(err).Str("id", n.ID.String()).Msg("failed to dispatch pending notification")
		}
	}

	return res, nil
}

// ReleaseStale returns notifications whose claim is older than claimTimeout
// to the retry cycle.
func (s *Service) ReleaseStale(ctx context.Context, claimTimeout time.Duration) (int64, error) {
	released, err := s.repo.ReleaseStale(ctx, s.now().Add(-claimTimeout), s.maxRetries)
	if err != nil {
		return 0, fmt.Errorf("release stale notifications: %w", err)
	}

	if released > 0 {
		metrics.StaleReleased.Add(float64(released))
		zlog.Logger.Warn().Int64("released", released).Msg("released stale notification claims")
	}

	return released, nil
}
