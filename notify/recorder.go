package notify

import (
	"context"
	"sync"

	"github.com/roastery/loyaltybot/loyalty"
)

// =============================================================================
// RECORDER - In-memory notifier for tests
// =============================================================================

// Message is one recorded outbound message.
type Message struct {
	Chat loyalty.ChatID
	Text string
}

// Recorder captures outbound messages instead of delivering them. Chats
// listed in FailFor simulate delivery failures, for exercising the
// best-effort broadcast path.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	failFor  map[loyalty.ChatID]bool
}

func NewRecorder() *Recorder {
	return &Recorder{failFor: make(map[loyalty.ChatID]bool)}
}

// FailFor makes future sends to the chat return a DeliveryError.
func (r *Recorder) FailFor(chat loyalty.ChatID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor[chat] = true
}

func (r *Recorder) Send(_ context.Context, chat loyalty.ChatID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failFor[chat] {
		return &DeliveryError{Chat: chat, Status: 502}
	}
	r.messages = append(r.messages, Message{Chat: chat, Text: text})
	return nil
}

// All returns every recorded message, in send order.
func (r *Recorder) All() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// SentTo returns the texts sent to one chat, in send order.
func (r *Recorder) SentTo(chat loyalty.ChatID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, m := range r.messages {
		if m.Chat == chat {
			out = append(out, m.Text)
		}
	}
	return out
}

// Reset clears recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
