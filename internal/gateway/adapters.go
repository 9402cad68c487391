package gateway

import (
	"context"
	"html"

	"github.com/aliskhannn/order-notifier/pkg/email"
)

//go:generate mockgen -source=adapters.go -destination=../mocks/gateway/mock.go -package=mocks

type emailSender interface {
	Send(ctx context.Context, msg email.Message) (email.Result, error)
}

type chatSender interface {
	Send(ctx context.Context, chatID, text string) (string, error)
}

// Email adapts an SMTP or Postmark client to Gateway.
type Email struct {
	sender emailSender
}

// NewEmail creates an email gateway.
func NewEmail(sender emailSender) *Email {
	return &Email{sender: sender}
}

// Send implements Gateway.
func (g *Email) Send(ctx context.Context, msg Message) (Receipt, error) {
	res, err := g.sender.Send(ctx, email.Message{
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return Receipt{}, err
	}

	return Receipt{
		ProviderID: res.MessageID,
		PreviewURL: res.PreviewURL,
		SentAt:     res.SentAt,
	}, nil
}

// Telegram adapts a Telegram bot client to Gateway. The recipient is the chat id.
type Telegram struct {
	sender chatSender
}

// NewTelegram creates a Telegram gateway.
func NewTelegram(sender chatSender) *Telegram {
	return &Telegram{sender: sender}
}

// Send implements Gateway.
func (g *Telegram) Send(ctx context.Context, msg Message) (Receipt, error) {
	text := html.EscapeString(msg.HTML)
	if msg.Subject != "" {
		text = "<b>" + html.EscapeString(msg.Subject) + "</b>\n" + text
	}

	id, err := g.sender.Send(ctx, msg.To, text)
	if err != nil {
		return Receipt{}, err
	}

	return Receipt{ProviderID: id}, nil
}
