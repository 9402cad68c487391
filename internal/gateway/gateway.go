// Package gateway routes outgoing notifications to the provider serving their channel.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aliskhannn/order-notifier/internal/model"
)

var (
	ErrEmptyRecipient     = errors.New("recipient is empty")
	ErrUnsupportedChannel = errors.New("unsupported channel")
)

// Message is a rendered notification ready to be handed to a provider.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Receipt is what a provider returns for an accepted message.
type Receipt struct {
	ProviderID string
	PreviewURL string
	SentAt     time.Time
}

// Gateway delivers a message through one provider.
type Gateway interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

type route struct {
	gateway Gateway
	limiter *rate.Limiter
}

// Registry maps channels to gateways.
type Registry struct {
	routes map[model.Channel]route
}

// NewRegistry creates an empty gateway registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[model.Channel]route)}
}

// RegisterOption configures a registered gateway.
type RegisterOption func(*route)

// WithRateLimit caps the number of sends per second for the gateway.
func WithRateLimit(perSecond float64, burst int) RegisterOption {
	return func(r *route) {
		if perSecond <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// Register binds a gateway to a channel, replacing any previous binding.
func (r *Registry) Register(channel model.Channel, gw Gateway, opts ...RegisterOption) {
	rt := route{gateway: gw}
	for _, opt := range opts {
		opt(&rt)
	}

	r.routes[channel] = rt
}

// Deliver sends msg through the gateway registered for channel.
func (r *Registry) Deliver(ctx context.Context, channel model.Channel, msg Message) (Receipt, error) {
	if strings.TrimSpace(msg.To) == "" {
		return Receipt{}, ErrEmptyRecipient
	}

	rt, ok := r.routes[channel]
	if !ok {
		return Receipt{}, fmt.Errorf("%w: %s", ErrUnsupportedChannel, channel)
	}

	if rt.limiter != nil {
		if err := rt.limiter.Wait(ctx); err != nil {
			return Receipt{}, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	receipt, err := rt.gateway.Send(ctx, msg)
	if err != nil {
		return Receipt{}, err
	}

	if receipt.SentAt.IsZero() {
		receipt.SentAt = time.Now()
	}

	return receipt, nil
}
