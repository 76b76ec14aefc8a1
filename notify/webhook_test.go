package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastery/loyaltybot/notify"
)

func newTestWebhook(url string, retries int) *notify.Webhook {
	return notify.NewWebhook(notify.WebhookConfig{
		URL:        url,
		MaxRetries: retries,
		RetryDelay: time.Millisecond,
	})
}

func TestWebhook_Send(t *testing.T) {
	// GIVEN: A bridge that accepts the message
	// WHEN: Sending
	// THEN: The JSON body carries the chat id and text

	var got struct {
		ChatID string `json:"chat_id"`
		Text   string `json:"text"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := newTestWebhook(srv.URL, 3)
	err := w.Send(context.Background(), "chat-1", "hello")

	require.NoError(t, err)
	assert.Equal(t, "chat-1", got.ChatID)
	assert.Equal(t, "hello", got.Text)
}

func TestWebhook_RetriesServerErrors(t *testing.T) {
	// GIVEN: A bridge that fails twice with 500, then accepts
	// WHEN: Sending with 3 retries
	// THEN: The third attempt succeeds

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := newTestWebhook(srv.URL, 3)
	err := w.Send(context.Background(), "chat-1", "hello")

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhook_ClientError_NoRetry(t *testing.T) {
	// A 4xx won't improve on retry; one attempt is enough.

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	w := newTestWebhook(srv.URL, 3)
	err := w.Send(context.Background(), "chat-1", "hello")

	var delErr *notify.DeliveryError
	require.ErrorAs(t, err, &delErr)
	assert.Equal(t, http.StatusNotFound, delErr.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhook_ExhaustedRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	w := newTestWebhook(srv.URL, 2)
	err := w.Send(context.Background(), "chat-1", "hello")

	var delErr *notify.DeliveryError
	require.ErrorAs(t, err, &delErr)
	assert.Equal(t, http.StatusBadGateway, delErr.Status)
	assert.Equal(t, int32(2), calls.Load())
}
