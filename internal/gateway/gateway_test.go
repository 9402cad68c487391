package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mocks "github.com/aliskhannn/order-notifier/internal/mocks/gateway"
	"github.com/aliskhannn/order-notifier/internal/model"
	"github.com/aliskhannn/order-notifier/pkg/email"
)

type gatewayFunc func(ctx context.Context, msg Message) (Receipt, error)

func (f gatewayFunc) Send(ctx context.Context, msg Message) (Receipt, error) {
	return f(ctx, msg)
}

func TestRegistry_Deliver(t *testing.T) {
	r := NewRegistry()
	r.Register(model.ChannelEmail, gatewayFunc(func(_ context.Context, msg Message) (Receipt, error) {
		return Receipt{ProviderID: "id-" + msg.To}, nil
	}))

	receipt, err := r.Deliver(context.Background(), model.ChannelEmail, Message{To: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "id-a@x.com", receipt.ProviderID)
	assert.False(t, receipt.SentAt.IsZero(), "missing send time is filled in")
}

func TestRegistry_Deliver_Errors(t *testing.T) {
	r := NewRegistry()
	r.Register(model.ChannelEmail, gatewayFunc(func(context.Context, Message) (Receipt, error) {
		return Receipt{}, errors.New("mailbox full")
	}))

	_, err := r.Deliver(context.Background(), model.ChannelEmail, Message{To: "  "})
	assert.ErrorIs(t, err, ErrEmptyRecipient)

	_, err = r.Deliver(context.Background(), model.ChannelSMS, Message{To: "+100"})
	assert.ErrorIs(t, err, ErrUnsupportedChannel)

	_, err = r.Deliver(context.Background(), model.ChannelEmail, Message{To: "a@x.com"})
	assert.EqualError(t, err, "mailbox full")
}

func TestRegistry_RateLimit(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register(model.ChannelEmail, gatewayFunc(func(context.Context, Message) (Receipt, error) {
		calls++
		return Receipt{}, nil
	}), WithRateLimit(1, 1))

	_, err := r.Deliver(context.Background(), model.ChannelEmail, Message{To: "a@x.com"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = r.Deliver(ctx, model.ChannelEmail, Message{To: "a@x.com"})
	assert.Error(t, err, "second send within the same second waits past the deadline")
	assert.Equal(t, 1, calls)
}

func TestEmail_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sender := mocks.NewMockemailSender(ctrl)
	g := NewEmail(sender)

	sentAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sender.EXPECT().
		Send(gomock.Any(), email.Message{To: "a@x.com", Subject: "ORDER_PLACED", HTML: "{}"}).
		Return(email.Result{MessageID: "m-1", PreviewURL: "https://p/m-1", SentAt: sentAt}, nil)

	receipt, err := g.Send(context.Background(), Message{To: "a@x.com", Subject: "ORDER_PLACED", HTML: "{}"})
	require.NoError(t, err)
	assert.Equal(t, Receipt{ProviderID: "m-1", PreviewURL: "https://p/m-1", SentAt: sentAt}, receipt)
}

func TestTelegram_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sender := mocks.NewMockchatSender(ctrl)
	g := NewTelegram(sender)

	sender.EXPECT().Send(gomock.Any(), "777", "<b>ORDER_PLACED</b>\nbody").Return("42", nil)
	sender.EXPECT().Send(gomock.Any(), "777", "body").Return("", errors.New("chat not found"))

	receipt, err := g.Send(context.Background(), Message{To: "777", Subject: "ORDER_PLACED", HTML: "body"})
	require.NoError(t, err)
	assert.Equal(t, "42", receipt.ProviderID)

	_, err = g.Send(context.Background(), Message{To: "777", HTML: "body"})
	assert.EqualError(t, err, "chat not found")
}

func TestTelegram_Send_EscapesText(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sender := mocks.NewMockchatSender(ctrl)
	g := NewTelegram(sender)

	sender.EXPECT().
		Send(gomock.Any(), "777", "<b>A&amp;B</b>\n{&#34;note&#34;:&#34;&lt;fragile&gt;&#34;}").
		Return("43", nil)

	_, err := g.Send(context.Background(), Message{To: "777", Subject: "A&B", HTML: `{"note":"<fragile>"}`})
	require.NoError(t, err)
}
