package notification

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aliskhannn/order-notifier/internal/model"
)

var errPayloadShape = errors.New("payload must be a JSON object or string")

// DefaultDedupFields are the payload fields that identify a notification when
// no per-type configuration exists.
var DefaultDedupFields = []string{"orderId", "total"}

// DedupKeys derives the identity of a notification draft.
type DedupKeys struct {
	defaults []string
	byType   map[string][]string
}

// NewDedupKeys creates a key builder. Empty defaults fall back to DefaultDedupFields.
func NewDedupKeys(defaults []string, byType map[string][]string) DedupKeys {
	if len(defaults) == 0 {
		defaults = DefaultDedupFields
	}

	return DedupKeys{defaults: defaults, byType: byType}
}

func (k DedupKeys) fieldsFor(typ string) []string {
	if fields, ok := k.byType[typ]; ok {
		return fields
	}

	return k.defaults
}

type dedupIdentity struct {
	Type      string         `json:"type"`
	Recipient string         `json:"recipient"`
	Fields    map[string]any `json:"fields"`
}

// Build returns a hex encoded SHA-256 over type, recipient and the configured
// payload fields that are present. Numbers compare by value, so 10 and 10.0
// produce the same key.
func (k DedupKeys) Build(d model.Draft) (string, error) {
	payload, err := decodePayload(d.Payload)
	if err != nil {
		return "", err
	}

	fields := make(map[string]any)
	if obj, ok := payload.(map[string]any); ok {
		for _, name := range k.fieldsFor(d.Type) {
			if v, present := obj[name]; present {
				fields[name] = v
			}
		}
	}

	// map keys are marshalled in sorted order
	canonical, err := json.Marshal(dedupIdentity{
		Type:      d.Type,
		Recipient: d.Recipient,
		Fields:    fields,
	})
	if err != nil {
		return "", fmt.Errorf("marshal dedup identity: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// decodePayload accepts an absent payload, a JSON object or a JSON string.
func decodePayload(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	switch v.(type) {
	case map[string]any, string:
		return v, nil
	default:
		return nil, errPayloadShape
	}
}
