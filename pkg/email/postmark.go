package email

import (
	"context"
	"fmt"
	"time"

	"github.com/mrz1836/postmark"
)

// PostmarkClient sends emails through the Postmark transactional API.
type PostmarkClient struct {
	client *postmark.Client
	from   string
}

// NewPostmarkClient creates a Postmark-backed sender.
func NewPostmarkClient(serverToken, accountToken, from string) (*PostmarkClient, error) {
	if serverToken == "" {
		return nil, fmt.Errorf("%w: postmark server token is required", ErrInvalidConfig)
	}
	if from == "" {
		return nil, fmt.Errorf("%w: from address is required", ErrInvalidConfig)
	}

	return &PostmarkClient{
		client: postmark.NewClient(serverToken, accountToken),
		from:   from,
	}, nil
}

// Send delivers msg and returns the Postmark message id.
func (c *PostmarkClient) Send(ctx context.Context, msg Message) (Result, error) {
	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:       c.from,
		To:         msg.To,
		Subject:    msg.Subject,
		HTMLBody:   msg.HTML,
		TrackOpens: true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return Result{}, fmt.Errorf("%w: postmark error %d: %s", ErrSendFailed, resp.ErrorCode, resp.Message)
	}

	sentAt := resp.SubmittedAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	return Result{MessageID: resp.MessageID, SentAt: sentAt}, nil
}
