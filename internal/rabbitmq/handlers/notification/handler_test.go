package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/order-notifier/internal/events"
	mocks "github.com/aliskhannn/order-notifier/internal/mocks/rabbitmq/handlers/notification"
	"github.com/aliskhannn/order-notifier/internal/model"
	notifsvc "github.com/aliskhannn/order-notifier/internal/service/notification"
)

const orderPlacedBody = `{"pattern":"order.placed","data":{"userId":"u1","orderId":"o1","email":"a@x.com","total":10}}`

var strategy = retry.Strategy{Attempts: 3, Delay: time.Millisecond, Backoff: 1}

func delivery(body string) events.Delivery {
	return events.Delivery{Body: []byte(body), Source: events.SourceRabbitMQ}
}

func TestHandler_HandleMessage_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMocknotificationService(ctrl)
	h := NewHandler(mockService, nil, strategy)

	mockService.EXPECT().
		EnqueueIfNotDuplicate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d model.Draft) (model.Notification, error) {
			assert.Equal(t, model.ChannelEmail, d.Channel)
			assert.Equal(t, "ORDER_PLACED", d.Type)
			assert.Equal(t, "a@x.com", d.Recipient)
			assert.Equal(t, "ORDER_CONFIRMATION", d.Template)
			return model.Notification{ID: uuid.New(), Status: model.StatusPending}, nil
		})

	assert.NoError(t, h.HandleMessage(context.Background(), delivery(orderPlacedBody)))
}

func TestHandler_HandleMessage_RetriesTransientErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMocknotificationService(ctrl)
	h := NewHandler(mockService, nil, strategy)

	gomock.InOrder(
		mockService.EXPECT().EnqueueIfNotDuplicate(gomock.Any(), gomock.Any()).
			Return(model.Notification{}, errors.New("connection reset")),
		mockService.EXPECT().EnqueueIfNotDuplicate(gomock.Any(), gomock.Any()).
			Return(model.Notification{ID: uuid.New()}, nil),
	)

	assert.NoError(t, h.HandleMessage(context.Background(), delivery(orderPlacedBody)))
}

func TestHandler_HandleMessage_InvalidDraftNotRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMocknotificationService(ctrl)
	mockDLQ := mocks.NewMockdeadLetterer(ctrl)
	h := NewHandler(mockService, mockDLQ, strategy)

	mockService.EXPECT().
		EnqueueIfNotDuplicate(gomock.Any(), gomock.Any()).
		Return(model.Notification{}, fmt.Errorf("%w: recipient is required", notifsvc.ErrInvalidDraft)).
		Times(1)
	mockDLQ.EXPECT().DeadLetter([]byte(orderPlacedBody)).Return(nil)

	assert.NoError(t, h.HandleMessage(context.Background(), delivery(orderPlacedBody)))
}

func TestHandler_HandleMessage_GivesUpAfterRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMocknotificationService(ctrl)
	mockDLQ := mocks.NewMockdeadLetterer(ctrl)
	h := NewHandler(mockService, mockDLQ, strategy)

	mockService.EXPECT().
		EnqueueIfNotDuplicate(gomock.Any(), gomock.Any()).
		Return(model.Notification{}, errors.New("db down")).
		MinTimes(1)
	mockDLQ.EXPECT().DeadLetter(gomock.Any()).Return(errors.New("broker down"))

	assert.NoError(t, h.HandleMessage(context.Background(), delivery(orderPlacedBody)))
}

func TestHandler_HandleMessage_MalformedBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMocknotificationService(ctrl)
	mockDLQ := mocks.NewMockdeadLetterer(ctrl)
	h := NewHandler(mockService, mockDLQ, strategy)

	mockDLQ.EXPECT().DeadLetter([]byte(`not json`)).Return(nil)

	assert.NoError(t, h.HandleMessage(context.Background(), delivery(`not json`)))
}

func TestHandler_HandleMessage_OtherPatternIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMocknotificationService(ctrl)
	mockDLQ := mocks.NewMockdeadLetterer(ctrl)
	h := NewHandler(mockService, mockDLQ, strategy)

	assert.NoError(t, h.HandleMessage(context.Background(), delivery(`{"pattern":"order.cancelled","data":{}}`)))
}

func TestHandler_HandleMessage_ContextCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMocknotificationService(ctrl)
	mockDLQ := mocks.NewMockdeadLetterer(ctrl)
	h := NewHandler(mockService, mockDLQ, strategy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// neither enqueued nor dead-lettered; the message stays for redelivery
	err := h.HandleMessage(ctx, delivery(orderPlacedBody))
	assert.ErrorIs(t, err, context.Canceled)
}
