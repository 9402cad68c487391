package dto

import (
	"encoding/json"

	"github.com/aliskhannn/order-notifier/internal/model"
)

// CreateRequest is the body of a synchronous send request.
type CreateRequest struct {
	Channel   string          `json:"channel" validate:"required,oneof=EMAIL SMS PUSH"`
	Type      string          `json:"type" validate:"required"`
	Recipient string          `json:"recipient" validate:"required"`
	UserID    string          `json:"userId"`
	Payload   json.RawMessage `json:"payload"`
	Template  string          `json:"template"`
}

// Draft converts the request to a notification draft.
func (r CreateRequest) Draft() model.Draft {
	return model.Draft{
		Channel:   model.Channel(r.Channel),
		Type:      r.Type,
		Recipient: r.Recipient,
		UserID:    r.UserID,
		Payload:   r.Payload,
		Template:  r.Template,
	}
}

// CreateResponse is returned when the notification was delivered.
type CreateResponse struct {
	Notification model.Notification   `json:"notification"`
	Result       model.DispatchResult `json:"result"`
}

// DispatchErrorResponse carries the notification state alongside a delivery error.
type DispatchErrorResponse struct {
	Error        string             `json:"error,omitempty"`
	Notification model.Notification `json:"notification"`
}

// StatusResponse is the body of a status lookup.
type StatusResponse struct {
	ID     string       `json:"id"`
	Status model.Status `json:"status"`
}
