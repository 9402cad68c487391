package worker

import (
	"context"
	"time"

	"github.com/wb-go/wbf/zlog"

	notifsvc "github.com/aliskhannn/order-notifier/internal/service/notification"
)

//go:generate mockgen -source=sweeper.go -destination=../mocks/worker/sweeper_mock.go -package=mocks

type pendingProcessor interface {
	ReleaseStale(ctx context.Context, claimTimeout time.Duration) (int64, error)
	ProcessPendingBatch(ctx context.Context, size int) (notifsvc.BatchResult, error)
}

// Sweeper periodically retries PENDING notifications, oldest first.
type Sweeper struct {
	processor    pendingProcessor
	interval     time.Duration
	batchSize    int
	claimTimeout time.Duration
}

func NewSweeper(p pendingProcessor, interval time.Duration, batchSize int, claimTimeout time.Duration) *Sweeper {
	return &Sweeper{
		processor:    p,
		interval:     interval,
		batchSize:    batchSize,
		claimTimeout: claimTimeout,
	}
}

// Run sweeps once per interval until ctx is done. A slow sweep delays the
// next one; sweeps never overlap.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	zlog.Logger.Info().Dur("interval", s.interval).Int("batch", s.batchSize).Msg("sweeper started")

	for {
		select {
		case <-ctx.Done():
			zlog.Logger.Info().Msg("sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep releases expired claims, then dispatches one batch.
func (s *Sweeper) Sweep(ctx context.Context) {
	if s.claimTimeout > 0 {
		if _, err := s.processor.ReleaseStale(ctx, s.claimTimeout); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to release stale notifications")
		}
	}

	res, err := s.processor.ProcessPendingBatch(ctx, s.batchSize)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to process pending notifications")
		return
	}

	if res.Picked == 0 {
		return
	}

	zlog.Logger.Info().
		Int("picked", res.Picked).
		Int("delivered", res.Delivered).
		Int("failed", res.Failed).
		Int("skipped", res.Skipped).
		Msg("pending notifications swept")
}
