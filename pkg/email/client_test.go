package email

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/mail.v2"
)

type fakeDialer struct {
	sent  []*gomail.Message
	err   error
	block chan struct{}
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.block != nil {
		<-d.block
	}
	d.sent = append(d.sent, m...)
	return d.err
}

func newTestSMTPClient(t *testing.T, d dialer) *SMTPClient {
	t.Helper()

	c, err := NewSMTPClient("smtp.example.com", 587, "user", "pass", `"Shop" <no-reply@shop.test>`, "https://preview.test/%s")
	require.NoError(t, err)
	c.dialer = d

	return c
}

func TestNewSMTPClient_InvalidConfig(t *testing.T) {
	_, err := NewSMTPClient("", 587, "", "", "no-reply@shop.test", "")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSMTPClient("smtp.example.com", 587, "", "", "not an address", "")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSMTPClient_Send(t *testing.T) {
	d := &fakeDialer{}
	c := newTestSMTPClient(t, d)

	res, err := c.Send(context.Background(), Message{To: "a@x.com", Subject: "ORDER_PLACED", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	require.Len(t, d.sent, 1)
	m := d.sent[0]
	assert.Equal(t, []string{"a@x.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"ORDER_PLACED"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"<" + res.MessageID + ">"}, m.GetHeader("Message-ID"))

	assert.True(t, strings.HasSuffix(res.MessageID, "@shop.test"))
	assert.Equal(t, "https://preview.test/"+res.MessageID, res.PreviewURL)
	assert.False(t, res.SentAt.IsZero())
}

func TestSMTPClient_SendError(t *testing.T) {
	c := newTestSMTPClient(t, &fakeDialer{err: errors.New("535 auth failed")})

	_, err := c.Send(context.Background(), Message{To: "a@x.com"})
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Contains(t, err.Error(), "535 auth failed")
}

func TestSMTPClient_SendContextDone(t *testing.T) {
	d := &fakeDialer{block: make(chan struct{})}
	defer close(d.block)
	c := newTestSMTPClient(t, d)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Send(ctx, Message{To: "a@x.com"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPostmarkClient_Send(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"To":"a@x.com","SubmittedAt":"2025-01-02T03:04:05Z","MessageID":"pm-1","ErrorCode":0,"Message":"OK"}`))
	}))
	defer srv.Close()

	c, err := NewPostmarkClient("server-token", "account-token", "no-reply@shop.test")
	require.NoError(t, err)
	c.client.BaseURL = srv.URL

	res, err := c.Send(context.Background(), Message{To: "a@x.com", Subject: "ORDER_PLACED", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "pm-1", res.MessageID)
	assert.True(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC).Equal(res.SentAt))
	assert.Contains(t, gotBody, `"Subject":"ORDER_PLACED"`)
}

func TestPostmarkClient_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
	}))
	defer srv.Close()

	c, err := NewPostmarkClient("server-token", "", "no-reply@shop.test")
	require.NoError(t, err)
	c.client.BaseURL = srv.URL

	_, err = c.Send(context.Background(), Message{To: "a@x.com"})
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Contains(t, err.Error(), "300")
}

func TestNewPostmarkClient_InvalidConfig(t *testing.T) {
	_, err := NewPostmarkClient("", "", "no-reply@shop.test")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewPostmarkClient("token", "", "")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
