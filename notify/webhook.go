/*
Package notify provides outbound notifier implementations.

PURPOSE:
  The conversation engine sends every outbound message through a
  Notifier. This package offers:
  - Webhook: POSTs messages to a transport bridge over HTTP, with
    bounded retries
  - Logger: logs messages instead of delivering them (development)
  - Recorder: captures messages in memory (tests)

DELIVERY SEMANTICS:
  Delivery is best-effort. A failed delivery is reported to the caller
  as a DeliveryError, which the engine logs and counts but never lets
  abort a committed ledger mutation.
*/
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/roastery/loyaltybot/loyalty"
)

// Notifier delivers a text message to a chat.
type Notifier interface {
	Send(ctx context.Context, chat loyalty.ChatID, text string) error
}

// DeliveryError reports a failed outbound delivery.
type DeliveryError struct {
	Chat   loyalty.ChatID
	Status int // HTTP status, 0 when the request never completed
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delivery to %s failed: %v", e.Chat, e.Err)
	}
	return fmt.Sprintf("delivery to %s failed: status %d", e.Chat, e.Status)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// =============================================================================
// WEBHOOK NOTIFIER
// =============================================================================

// Webhook delivers messages by POSTing JSON to a transport bridge
// (the process that owns the actual chat connection).
type Webhook struct {
	url        string
	client     *http.Client
	log        *slog.Logger
	maxRetries int
	retryDelay time.Duration
}

// WebhookConfig configures a Webhook notifier.
type WebhookConfig struct {
	URL        string
	Logger     *slog.Logger
	MaxRetries int           // default 3
	RetryDelay time.Duration // default 1s
	Timeout    time.Duration // default 10s
}

// NewWebhook creates a webhook notifier.
func NewWebhook(cfg WebhookConfig) *Webhook {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Webhook{
		url:        cfg.URL,
		client:     &http.Client{Timeout: cfg.Timeout},
		log:        cfg.Logger.With("component", "notify"),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

type outboundMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Send posts the message, retrying transient failures up to MaxRetries.
func (w *Webhook) Send(ctx context.Context, chat loyalty.ChatID, text string) error {
	body, err := json.Marshal(outboundMessage{ChatID: string(chat), Text: text})
	if err != nil {
		return &DeliveryError{Chat: chat, Err: err}
	}

	var last *DeliveryError
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return &DeliveryError{Chat: chat, Err: ctx.Err()}
			case <-time.After(w.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return &DeliveryError{Chat: chat, Err: err}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			last = &DeliveryError{Chat: chat, Err: err}
			w.log.Warn("delivery attempt failed", "chat", chat, "attempt", attempt, "error", err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		last = &DeliveryError{Chat: chat, Status: resp.StatusCode}
		w.log.Warn("delivery attempt rejected", "chat", chat, "attempt", attempt, "status", resp.StatusCode)

		// Client errors won't improve on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			break
		}
	}
	return last
}

// =============================================================================
// LOGGER NOTIFIER - Development fallback
// =============================================================================

// Logger writes outbound messages to the log instead of delivering them.
// Used when no webhook URL is configured.
type Logger struct {
	Log *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{Log: logger.With("component", "notify")}
}

func (l *Logger) Send(_ context.Context, chat loyalty.ChatID, text string) error {
	l.Log.Info("outbound message", "chat", chat, "text", text)
	return nil
}
