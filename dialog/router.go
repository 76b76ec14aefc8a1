/*
router.go - Command Router: text to intent, and the dispatch entry point

PURPOSE:
  Maps freeform command text (including localized aliases) to canonical
  intents, and owns the per-message dispatch order: an open dialog always
  receives the text verbatim; only idle chats get fresh intent
  resolution.

DISPATCH ORDER:
  1. Serialize on the chat's session mutex (held through the whole step,
     ledger call included).
  2. If a dialog is open: an explicit cancel closes it; any other text,
     command-shaped or not, is dialog input.
  3. Otherwise resolve the intent and hand it to the engine.

SEE ALSO:
  - engine.go: Intent execution and dialog resumption
  - catalog: Localized alias tables
*/
package dialog

import (
	"context"
	"strings"

	"github.com/roastery/loyaltybot/catalog"
	"github.com/roastery/loyaltybot/loyalty"
	"github.com/roastery/loyaltybot/metrics"
)

// Intent is a canonical command.
type Intent string

const (
	IntentUnknown        Intent = "unknown"
	IntentStart          Intent = "start"
	IntentHelp           Intent = "help"
	IntentRegister       Intent = "register"
	IntentBalance        Intent = "balance"
	IntentAddPoints      Intent = "addpoints"
	IntentRedeem         Intent = "redeem"
	IntentAddEmployee    Intent = "addemployee"
	IntentRemoveEmployee Intent = "removeemployee"
	IntentCancel         Intent = "cancel"
)

var canonical = map[string]Intent{
	"start":          IntentStart,
	"help":           IntentHelp,
	"register":       IntentRegister,
	"balance":        IntentBalance,
	"addpoints":      IntentAddPoints,
	"redeem":         IntentRedeem,
	"addemployee":    IntentAddEmployee,
	"removeemployee": IntentRemoveEmployee,
	"cancel":         IntentCancel,
}

// Router resolves intents and dispatches inbound messages.
type Router struct {
	engine  *Engine
	intents map[string]Intent // canonical names plus localized aliases
}

// NewRouter builds a router over the engine, merging the canonical
// command names with the catalog's localized aliases.
func NewRouter(engine *Engine) *Router {
	intents := make(map[string]Intent, len(canonical))
	for name, intent := range canonical {
		intents[name] = intent
	}
	for alias, name := range engine.cat.Aliases() {
		if intent, ok := canonical[name]; ok {
			intents[strings.ToLower(alias)] = intent
		}
	}
	return &Router{engine: engine, intents: intents}
}

// ResolveIntent normalizes the text (case, leading slash) and maps the
// first word to an intent. The remaining words are returned as args.
// Unrecognized text resolves to IntentUnknown.
func (r *Router) ResolveIntent(raw string) (Intent, []string) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return IntentUnknown, nil
	}

	word := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	intent, ok := r.intents[word]
	if !ok {
		return IntentUnknown, fields[1:]
	}
	return intent, fields[1:]
}

// Dispatch handles one inbound message for a chat. All handling for the
// chat is serialized on its session mutex, held for the whole step.
func (r *Router) Dispatch(ctx context.Context, chat loyalty.ChatID, text string) {
	metrics.MessagesTotal.Inc()

	e := r.engine
	s := e.session(chat)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		// Free text is always dialog input while a dialog is open; the
		// explicit cancel command is the single exception.
		if intent, _ := r.ResolveIntent(text); intent == IntentCancel {
			s.reset()
			e.say(ctx, chat, catalog.MsgCanceled)
			return
		}
		e.resume(ctx, chat, s, text)
		return
	}

	intent, args := r.ResolveIntent(text)
	metrics.IntentsTotal.WithLabelValues(string(intent)).Inc()
	e.start(ctx, chat, s, intent, args)
}
