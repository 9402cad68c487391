package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status is the delivery state of a notification.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
)

// Active reports whether a notification in this status still takes part in deduplication.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusInProgress
}

// Terminal reports whether no further mutation is allowed.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Channel selects the gateway a notification is delivered through.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
	ChannelPush  Channel = "PUSH"
)

// MaxLastErrorLen bounds the stored failure message.
const MaxLastErrorLen = 255

// Notification represents a notification record and its delivery state.
type Notification struct {
	ID         uuid.UUID       `json:"id"`                   // assigned at creation, immutable
	Channel    Channel         `json:"channel"`              // delivery channel, e.g. EMAIL
	Type       string          `json:"type"`                 // classification, e.g. ORDER_PLACED
	Recipient  string          `json:"recipient"`            // destination address
	UserID     string          `json:"userId,omitempty"`     // optional correlation id
	Payload    json.RawMessage `json:"payload"`              // template data
	Template   string          `json:"template,omitempty"`   // informational template selector
	DedupKey   string          `json:"-"`                    // hash of type, recipient and dedup fields
	Status     Status          `json:"status"`               // current delivery state
	Attempts   int             `json:"attempts"`             // delivery attempts made so far
	ProviderID string          `json:"providerId,omitempty"` // set once on SUCCESS
	SentAt     *time.Time      `json:"sentAt,omitempty"`     // set once on SUCCESS
	LastError  string          `json:"lastError,omitempty"`  // last failure, truncated
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Draft is an incoming request to create a notification.
type Draft struct {
	Channel   Channel         `json:"channel" validate:"required,oneof=EMAIL SMS PUSH"`
	Type      string          `json:"type" validate:"required"`
	Recipient string          `json:"recipient" validate:"required"`
	UserID    string          `json:"userId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Template  string          `json:"template,omitempty"`
}

// DispatchResult is what the gateway reports for a delivered notification.
type DispatchResult struct {
	ProviderID string    `json:"messageId"`
	PreviewURL string    `json:"previewUrl,omitempty"`
	SentAt     time.Time `json:"timestamp"`
}

// TruncateError cuts msg to MaxLastErrorLen characters.
func TruncateError(msg string) string {
	r := []rune(msg)
	if len(r) <= MaxLastErrorLen {
		return msg
	}

	return string(r[:MaxLastErrorLen])
}
