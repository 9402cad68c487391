// Package events decodes inbound order events and maps them to notification drafts.
package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aliskhannn/order-notifier/internal/model"
)

const (
	PatternOrderPlaced = "order.placed"

	TypeOrderPlaced     = "ORDER_PLACED"
	TemplateOrderPlaced = "ORDER_CONFIRMATION"
)

// Delivery sources.
const (
	SourceRabbitMQ = "rabbitmq"
	SourceKafka    = "kafka"
)

var (
	ErrMalformedEvent = errors.New("malformed event")
	ErrUnknownPattern = errors.New("unknown event pattern")
)

// OrderPlaced is emitted by the order service after an order is created.
type OrderPlaced struct {
	UserID  string `json:"userId"`
	OrderID string `json:"orderId"`
	Email   string `json:"email"`
	Total   any    `json:"total"`
}

// envelope is the {pattern, data} wrapper used by the order service transport.
type envelope struct {
	Pattern string          `json:"pattern"`
	Data    json.RawMessage `json:"data"`
}

// Delivery is one inbound message together with its acknowledgement.
type Delivery struct {
	Body   []byte
	Source string
	Ack    func() error
}

// DecodeOrderPlaced parses an order.placed event, bare or wrapped in an envelope.
func DecodeOrderPlaced(body []byte) (OrderPlaced, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return OrderPlaced{}, fmt.Errorf("%w: %s", ErrMalformedEvent, err.Error())
	}

	raw := body
	if env.Pattern != "" {
		if env.Pattern != PatternOrderPlaced {
			return OrderPlaced{}, fmt.Errorf("%w: %s", ErrUnknownPattern, env.Pattern)
		}
		raw = env.Data
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return OrderPlaced{}, fmt.Errorf("%w: empty data", ErrMalformedEvent)
	}

	var e OrderPlaced
	if err := json.Unmarshal(raw, &e); err != nil {
		return OrderPlaced{}, fmt.Errorf("%w: %s", ErrMalformedEvent, err.Error())
	}

	return e, nil
}

// Draft maps the event to an email notification draft.
func (e OrderPlaced) Draft() (model.Draft, error) {
	payload, err := json.Marshal(map[string]any{
		"orderId": e.OrderID,
		"total":   e.Total,
		"userId":  e.UserID,
	})
	if err != nil {
		return model.Draft{}, fmt.Errorf("marshal payload: %w", err)
	}

	return model.Draft{
		Channel:   model.ChannelEmail,
		Type:      TypeOrderPlaced,
		Recipient: e.Email,
		UserID:    e.UserID,
		Payload:   payload,
		Template:  TemplateOrderPlaced,
	}, nil
}
