/*
state.go - Dialog states and per-chat sessions

PURPOSE:
  Defines the finite set of dialog states and the session record the
  engine keeps per chat: current state, scratch data collected across
  turns, and the mutex that serializes all handling for that chat.

INVARIANTS:
  - Exactly one state per chat at any time.
  - Scratch data exists only while the state is non-idle; reset() clears
    it on every return to idle, so a scratch read in idle state is a
    programming error, not a valid path.
  - The session mutex is held for the whole message step, including the
    ledger call, so two messages from the same chat can never interleave
    dialog steps.
*/
package dialog

import (
	"fmt"
	"sync"
)

// State is the dialog position of a single chat.
type State int

const (
	StateIdle State = iota
	StateRegisterAwaitPhone
	StateAccrueAwaitPhone
	StateAccrueAwaitAmount
	StateRedeemAwaitPhone
	StateRedeemAwaitAmount
	StateGrantAwaitPhone
	StateRevokeAwaitPhone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRegisterAwaitPhone:
		return "register:await_phone"
	case StateAccrueAwaitPhone:
		return "accrue:await_phone"
	case StateAccrueAwaitAmount:
		return "accrue:await_amount"
	case StateRedeemAwaitPhone:
		return "redeem:await_phone"
	case StateRedeemAwaitAmount:
		return "redeem:await_amount"
	case StateGrantAwaitPhone:
		return "grant:await_phone"
	case StateRevokeAwaitPhone:
		return "revoke:await_phone"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// session is the engine's per-chat record. Access only with mu held.
type session struct {
	mu      sync.Mutex
	state   State
	scratch map[string]string
}

func newSession() *session {
	return &session{state: StateIdle}
}

// setScratch stores a value for the duration of the open dialog.
func (s *session) setScratch(key, value string) {
	if s.scratch == nil {
		s.scratch = make(map[string]string)
	}
	s.scratch[key] = value
}

// value reads scratch data. The second return is false if the value was
// never stored - callers treat that as an internal error.
func (s *session) value(key string) (string, bool) {
	v, ok := s.scratch[key]
	return v, ok
}

// reset returns the session to idle and drops all scratch data.
func (s *session) reset() {
	s.state = StateIdle
	s.scratch = nil
}
