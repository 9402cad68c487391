package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	mocks "github.com/aliskhannn/order-notifier/internal/mocks/worker"
	notifsvc "github.com/aliskhannn/order-notifier/internal/service/notification"
)

func TestSweeper_Sweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockProcessor := mocks.NewMockpendingProcessor(ctrl)
	s := NewSweeper(mockProcessor, time.Minute, 10, 5*time.Minute)

	gomock.InOrder(
		mockProcessor.EXPECT().ReleaseStale(gomock.Any(), 5*time.Minute).Return(int64(1), nil),
		mockProcessor.EXPECT().ProcessPendingBatch(gomock.Any(), 10).Return(notifsvc.BatchResult{Picked: 3, Delivered: 2, Failed: 1}, nil),
	)

	s.Sweep(context.Background())
}

func TestSweeper_Sweep_ReleaseErrorDoesNotStopBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockProcessor := mocks.NewMockpendingProcessor(ctrl)
	s := NewSweeper(mockProcessor, time.Minute, 10, time.Minute)

	mockProcessor.EXPECT().ReleaseStale(gomock.Any(), time.Minute).Return(int64(0), errors.New("db down"))
	mockProcessor.EXPECT().ProcessPendingBatch(gomock.Any(), 10).Return(notifsvc.BatchResult{}, errors.New("db down"))

	s.Sweep(context.Background())
}

func TestSweeper_Sweep_NoClaimTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockProcessor := mocks.NewMockpendingProcessor(ctrl)
	s := NewSweeper(mockProcessor, time.Minute, 10, 0)

	mockProcessor.EXPECT().ProcessPendingBatch(gomock.Any(), 10).Return(notifsvc.BatchResult{}, nil)

	s.Sweep(context.Background())
}

func TestSweeper_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockProcessor := mocks.NewMockpendingProcessor(ctrl)
	s := NewSweeper(mockProcessor, 5*time.Millisecond, 10, time.Minute)

	var sweeps atomic.Int32
	mockProcessor.EXPECT().ReleaseStale(gomock.Any(), gomock.Any()).Return(int64(0), nil).AnyTimes()
	mockProcessor.EXPECT().ProcessPendingBatch(gomock.Any(), 10).
		DoAndReturn(func(context.Context, int) (notifsvc.BatchResult, error) {
			sweeps.Add(1)
			return notifsvc.BatchResult{}, nil
		}).
		MinTimes(1)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	s.Run(ctx)
	assert.GreaterOrEqual(t, sweeps.Load(), int32(1))
}
