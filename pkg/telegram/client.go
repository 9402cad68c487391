// Package telegram provides a small client for the Telegram Bot API.
//
// It is used to deliver PUSH notifications to a chat identified by the
// notification recipient.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.telegram.org"

var ErrAPI = errors.New("telegram API error")

// Client represents a Telegram bot client.
type Client struct {
	token  string       // bot token for authentication
	apiURL string       // Bot API base URL
	client *http.Client // HTTP client used to make requests
}

// Option configures a Client.
type Option func(*Client)

// WithAPIURL overrides the Bot API base URL.
func WithAPIURL(url string) Option {
	return func(c *Client) {
		c.apiURL = url
	}
}

// NewClient creates a new Telegram Client instance with the given bot token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:  token,
		apiURL: defaultAPIURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// sendMessageRequest represents the payload for the sendMessage method.
type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`              // chat id to send message to
	Text      string `json:"text"`                 // message text
	ParseMode string `json:"parse_mode,omitempty"` // HTML, MarkdownV2
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
		Date      int64 `json:"date"`
	} `json:"result"`
}

// Send posts text to chatID and returns the id of the created message.
func (c *Client) Send(ctx context.Context, chatID, text string) (string, error) {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.apiURL, c.token)

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", c.redact(err))
	}
	defer resp.Body.Close()

	var out sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %s", ErrAPI, resp.Status)
	}

	if resp.StatusCode != http.StatusOK || !out.OK {
		return "", fmt.Errorf("%w: %s: %s", ErrAPI, resp.Status, out.Description)
	}

	return strconv.FormatInt(out.Result.MessageID, 10), nil
}

// redact strips the bot token from the request URL carried by transport errors.
func (c *Client) redact(err error) error {
	var ue *url.Error
	if c.token != "" && errors.As(err, &ue) {
		ue.URL = strings.ReplaceAll(ue.URL, c.token, "<redacted>")
	}

	return err
}
