// Package email sends transactional emails over SMTP or the Postmark API.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	gomail "gopkg.in/mail.v2"
)

var (
	ErrInvalidConfig = errors.New("invalid email configuration")
	ErrSendFailed    = errors.New("failed to send email")
)

const defaultDialTimeout = 10 * time.Second

// Message is a single email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Result describes an email accepted by the provider.
type Result struct {
	MessageID  string
	PreviewURL string
	SentAt     time.Time
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPClient sends emails through an SMTP relay.
type SMTPClient struct {
	dialer     dialer
	from       string
	domain     string
	previewURL string
}

// NewSMTPClient creates an SMTP client. previewURL is an optional fmt pattern
// that receives the message id, e.g. "https://ethereal.email/message/%s".
func NewSMTPClient(smtpHost string, smtpPort int, username, password, from, previewURL string) (*SMTPClient, error) {
	if smtpHost == "" {
		return nil, fmt.Errorf("%w: smtp host is required", ErrInvalidConfig)
	}

	addr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("%w: from address: %s", ErrInvalidConfig, err.Error())
	}

	d := gomail.NewDialer(smtpHost, smtpPort, username, password)
	d.Timeout = defaultDialTimeout

	return &SMTPClient{
		dialer:     d,
		from:       from,
		domain:     addr.Address[strings.LastIndex(addr.Address, "@")+1:],
		previewURL: previewURL,
	}, nil
}

// Send delivers msg. The SMTP exchange itself is not interruptible; when ctx
// ends first the call returns ctx.Err() and the exchange finishes in the background.
func (c *SMTPClient) Send(ctx context.Context, msg Message) (Result, error) {
	messageID := fmt.Sprintf("%s@%s", uuid.NewString(), c.domain)

	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", "<"+messageID+">")
	m.SetBody("text/html", msg.HTML)

	done := make(chan error, 1)
	go func() {
		done <- c.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case err := <-done:
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrSendFailed, err)
		}
	}

	res := Result{MessageID: messageID, SentAt: time.Now()}
	if c.previewURL != "" {
		res.PreviewURL = fmt.Sprintf(c.previewURL, messageID)
	}

	return res, nil
}
