/*
engine.go - Conversation Engine: the per-chat dialog state machine

PURPOSE:
  Turns a sequence of inbound text messages into completed operations
  against the Account Registry and the Loyalty Ledger. Multi-step flows
  (registration, accrual, redemption, employee management) collect their
  input across turns in session scratch data, then commit exactly one
  ledger operation.

STATE MACHINE:
  idle --/register--> register:await_phone --phone--> idle
  idle --/addpoints--> accrue:await_phone --phone--> accrue:await_amount
       --amount--> idle (ledger.Accrue + notifications)
  idle --/redeem--> redeem:await_phone --phone--> redeem:await_amount
       --amount in [1,max]--> idle (ledger.Redeem + notifications)
  idle --/addemployee [phone]--> grant:await_phone or immediate
  idle --/removeemployee [phone]--> revoke:await_phone or immediate

  Malformed input (bad phone, non-numeric or out-of-range amount) aborts
  the dialog back to idle; the user reissues the command. While a dialog
  is open, free text is always dialog input - the single exception is an
  explicit cancel command, which closes the dialog.

AUTHORIZATION ORDER:
  registration bypass (start/help/register/cancel/unknown) ->
  registration requirement -> role check for the intent -> execution.
  Roles are read at dispatch time and re-read at the final action, so a
  role revoked mid-dialog is caught before the ledger call.

NOTIFICATIONS:
  Completed accruals and redemptions notify the initiator, the affected
  customer, and every admin. All delivery is best-effort: a failed send
  is logged and counted, never rolled back.

SEE ALSO:
  - state.go: States and sessions
  - router.go: Intent resolution and the dispatch entry point
*/
package dialog

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/roastery/loyaltybot/catalog"
	"github.com/roastery/loyaltybot/loyalty"
	"github.com/roastery/loyaltybot/metrics"
	"github.com/roastery/loyaltybot/notify"
	"github.com/roastery/loyaltybot/rewards"
)

const scratchPhone = "phone"

// Engine drives per-chat dialogs. Create with NewEngine and feed it
// messages through a Router.
type Engine struct {
	registry *loyalty.Registry
	ledger   *loyalty.Ledger
	accounts loyalty.AccountStore
	notifier notify.Notifier
	cat      *catalog.Catalog
	redeem   rewards.RedemptionPolicy
	log      *slog.Logger

	mu       sync.Mutex
	sessions map[loyalty.ChatID]*session
}

// NewEngine wires the engine. logger may be nil.
func NewEngine(
	registry *loyalty.Registry,
	ledger *loyalty.Ledger,
	accounts loyalty.AccountStore,
	notifier notify.Notifier,
	cat *catalog.Catalog,
	redeem rewards.RedemptionPolicy,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry: registry,
		ledger:   ledger,
		accounts: accounts,
		notifier: notifier,
		cat:      cat,
		redeem:   redeem,
		log:      logger.With("component", "dialog"),
		sessions: make(map[loyalty.ChatID]*session),
	}
}

// session returns the chat's session, creating it on first contact.
func (e *Engine) session(chat loyalty.ChatID) *session {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[chat]
	if !ok {
		s = newSession()
		e.sessions[chat] = s
	}
	return s
}

// StateOf reports the chat's current dialog state.
func (e *Engine) StateOf(chat loyalty.ChatID) State {
	s := e.session(chat)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// =============================================================================
// FRESH COMMANDS (idle state)
// =============================================================================

// start handles a fresh intent for an idle chat. Called with s.mu held.
func (e *Engine) start(ctx context.Context, chat loyalty.ChatID, s *session, intent Intent, args []string) {
	// Registration bypass: these work for everyone.
	switch intent {
	case IntentStart:
		e.say(ctx, chat, catalog.MsgWelcome)
		return
	case IntentHelp:
		e.help(ctx, chat)
		return
	case IntentRegister:
		e.say(ctx, chat, catalog.MsgRegisterPrompt)
		s.state = StateRegisterAwaitPhone
		return
	case IntentCancel:
		e.say(ctx, chat, catalog.MsgNothingToCancel)
		return
	case IntentUnknown:
		e.say(ctx, chat, catalog.MsgUnknownCommand)
		return
	}

	// Everything below requires a registered chat.
	acct, err := e.registry.LookupByChat(ctx, chat)
	if errors.Is(err, loyalty.ErrAccountNotFound) {
		e.say(ctx, chat, catalog.MsgRegistrationRequired)
		return
	}
	if err != nil {
		e.internalError(ctx, chat, err)
		return
	}

	switch intent {
	case IntentBalance:
		e.say(ctx, chat, catalog.MsgBalance, acct.Balance)

	case IntentAddPoints:
		if !acct.Role.AtLeast(loyalty.RoleEmployee) {
			e.say(ctx, chat, catalog.MsgEmployeesOnly)
			return
		}
		e.say(ctx, chat, catalog.MsgAccruePromptPhone)
		s.state = StateAccrueAwaitPhone

	case IntentRedeem:
		if !acct.Role.AtLeast(loyalty.RoleEmployee) {
			e.say(ctx, chat, catalog.MsgEmployeesOnly)
			return
		}
		e.say(ctx, chat, catalog.MsgRedeemPromptPhone)
		s.state = StateRedeemAwaitPhone

	case IntentAddEmployee:
		if !acct.Role.AtLeast(loyalty.RoleAdmin) {
			e.say(ctx, chat, catalog.MsgAdminsOnly)
			return
		}
		if len(args) > 0 {
			e.finishGrant(ctx, chat, args[0], true)
			return
		}
		e.say(ctx, chat, catalog.MsgGrantPromptPhone)
		s.state = StateGrantAwaitPhone

	case IntentRemoveEmployee:
		if !acct.Role.AtLeast(loyalty.RoleAdmin) {
			e.say(ctx, chat, catalog.MsgAdminsOnly)
			return
		}
		if len(args) > 0 {
			e.finishGrant(ctx, chat, args[0], false)
			return
		}
		e.say(ctx, chat, catalog.MsgRevokePromptPhone)
		s.state = StateRevokeAwaitPhone

	default:
		e.say(ctx, chat, catalog.MsgUnknownCommand)
	}
}

// help mirrors the account's privileges: unregistered chats see how to
// register, customers see their commands plus the running promotion,
// staff and admins see their management commands.
func (e *Engine) help(ctx context.Context, chat loyalty.ChatID) {
	var b strings.Builder
	b.WriteString(e.cat.Text(catalog.MsgHelpHeader))
	b.WriteString("\n")
	b.WriteString(e.cat.Text(catalog.MsgHelpBasic))
	b.WriteString("\n")

	acct, err := e.registry.LookupByChat(ctx, chat)
	if err != nil {
		b.WriteString(e.cat.Text(catalog.MsgHelpRegister))
		e.send(ctx, chat, b.String())
		return
	}

	b.WriteString(e.cat.Text(catalog.MsgHelpBalance))
	b.WriteString("\n")
	b.WriteString(e.cat.Text(catalog.MsgPromo))
	if acct.Role.AtLeast(loyalty.RoleEmployee) {
		b.WriteString("\n")
		b.WriteString(e.cat.Text(catalog.MsgHelpEmployee))
	}
	if acct.Role.AtLeast(loyalty.RoleAdmin) {
		b.WriteString("\n")
		b.WriteString(e.cat.Text(catalog.MsgHelpAdmin))
	}
	e.send(ctx, chat, b.String())
}

// =============================================================================
// DIALOG RESUMPTION (non-idle state)
// =============================================================================

// resume feeds free text to the open dialog. Called with s.mu held. The
// switch is exhaustive over State so a new state cannot silently fall
// through.
func (e *Engine) resume(ctx context.Context, chat loyalty.ChatID, s *session, text string) {
	text = strings.TrimSpace(text)

	switch s.state {
	case StateIdle:
		// Dispatch routes idle chats to start(); reaching here is a bug.
		e.log.Error("resume invoked for idle chat", "chat", chat)
		e.say(ctx, chat, catalog.MsgInternalError)

	case StateRegisterAwaitPhone:
		e.finishRegister(ctx, chat, s, text)

	case StateAccrueAwaitPhone:
		e.collectPhone(ctx, chat, s, text, StateAccrueAwaitAmount)

	case StateAccrueAwaitAmount:
		e.finishAccrue(ctx, chat, s, text)

	case StateRedeemAwaitPhone:
		e.collectPhone(ctx, chat, s, text, StateRedeemAwaitAmount)

	case StateRedeemAwaitAmount:
		e.finishRedeem(ctx, chat, s, text)

	case StateGrantAwaitPhone:
		s.reset()
		e.finishGrant(ctx, chat, text, true)

	case StateRevokeAwaitPhone:
		s.reset()
		e.finishGrant(ctx, chat, text, false)
	}
}

// collectPhone stores the customer phone for an accrual/redemption flow
// and advances to the amount prompt. A bad phone aborts the dialog.
func (e *Engine) collectPhone(ctx context.Context, chat loyalty.ChatID, s *session, text string, next State) {
	phone, err := loyalty.NormalizePhone(text)
	if err != nil {
		s.reset()
		e.say(ctx, chat, catalog.MsgInvalidPhone)
		return
	}

	s.setScratch(scratchPhone, phone)
	s.state = next

	switch next {
	case StateAccrueAwaitAmount:
		e.say(ctx, chat, catalog.MsgAccruePromptAmount)
	case StateRedeemAwaitAmount:
		e.say(ctx, chat, catalog.MsgRedeemPromptAmount, e.redeem.Max)
	default:
		e.log.Error("collectPhone advanced to unexpected state", "state", next.String())
	}
}

func (e *Engine) finishRegister(ctx context.Context, chat loyalty.ChatID, s *session, text string) {
	defer s.reset()

	if _, err := e.registry.Register(ctx, chat, text); err != nil {
		switch {
		case errors.Is(err, loyalty.ErrInvalidPhone):
			e.say(ctx, chat, catalog.MsgInvalidPhone)
		case errors.Is(err, loyalty.ErrChatAlreadyRegistered):
			e.say(ctx, chat, catalog.MsgChatAlreadyRegistered)
		case errors.Is(err, loyalty.ErrPhoneAlreadyRegistered):
			e.say(ctx, chat, catalog.MsgPhoneAlreadyRegistered)
		default:
			e.internalError(ctx, chat, err)
		}
		return
	}

	e.say(ctx, chat, catalog.MsgRegistered)
	e.say(ctx, chat, catalog.MsgPromo)
}

func (e *Engine) finishAccrue(ctx context.Context, chat loyalty.ChatID, s *session, text string) {
	defer s.reset()

	amount, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		e.say(ctx, chat, catalog.MsgNotANumber)
		return
	}

	phone, ok := s.value(scratchPhone)
	if !ok {
		e.log.Error("accrual scratch phone missing", "chat", chat)
		e.say(ctx, chat, catalog.MsgInternalError)
		return
	}

	actor, authorized := e.requireRole(ctx, chat, loyalty.RoleEmployee)
	if !authorized {
		return
	}

	balance, err := e.ledger.Accrue(ctx, chat, phone, amount)
	if err != nil {
		metrics.LedgerOpsTotal.WithLabelValues("accrue", "error").Inc()
		e.sayLedgerError(ctx, chat, err)
		return
	}
	metrics.LedgerOpsTotal.WithLabelValues("accrue", "ok").Inc()

	e.say(ctx, chat, catalog.MsgAccrualDone, amount, phone, balance)
	if target, err := e.accounts.ByPhone(ctx, phone); err == nil {
		e.send(ctx, target.ChatID, e.cat.Text(catalog.MsgPointsReceived, amount))
	}
	e.broadcastAdmins(ctx, e.cat.Text(catalog.MsgAdminAccrualNotice, actor.Phone, amount, phone))
}

func (e *Engine) finishRedeem(ctx context.Context, chat loyalty.ChatID, s *session, text string) {
	defer s.reset()

	amount, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		e.say(ctx, chat, catalog.MsgNotANumber)
		return
	}
	if err := e.redeem.Validate(amount); err != nil {
		metrics.LedgerOpsTotal.WithLabelValues("redeem", "error").Inc()
		e.say(ctx, chat, catalog.MsgAmountRange, int64(1), e.redeem.Max)
		return
	}

	phone, ok := s.value(scratchPhone)
	if !ok {
		e.log.Error("redemption scratch phone missing", "chat", chat)
		e.say(ctx, chat, catalog.MsgInternalError)
		return
	}

	actor, authorized := e.requireRole(ctx, chat, loyalty.RoleEmployee)
	if !authorized {
		return
	}

	balance, err := e.ledger.Redeem(ctx, chat, phone, amount)
	if err != nil {
		metrics.LedgerOpsTotal.WithLabelValues("redeem", "error").Inc()
		e.sayLedgerError(ctx, chat, err)
		return
	}
	metrics.LedgerOpsTotal.WithLabelValues("redeem", "ok").Inc()

	e.say(ctx, chat, catalog.MsgRedeemDone, amount, phone, balance)
	if target, err := e.accounts.ByPhone(ctx, phone); err == nil {
		e.send(ctx, target.ChatID, e.cat.Text(catalog.MsgPointsRedeemed, amount))
	}
	e.broadcastAdmins(ctx, e.cat.Text(catalog.MsgAdminRedeemNotice, actor.Phone, amount, phone))
}

// finishGrant executes an employee grant (grant=true) or revoke.
func (e *Engine) finishGrant(ctx context.Context, chat loyalty.ChatID, text string, grant bool) {
	if _, authorized := e.requireRole(ctx, chat, loyalty.RoleAdmin); !authorized {
		return
	}

	phone, err := loyalty.NormalizePhone(text)
	if err != nil {
		e.say(ctx, chat, catalog.MsgInvalidPhone)
		return
	}

	if grant {
		err = e.ledger.GrantEmployee(ctx, phone)
	} else {
		err = e.ledger.RevokeEmployee(ctx, phone)
	}
	if err != nil {
		e.sayLedgerError(ctx, chat, err)
		return
	}

	if grant {
		e.say(ctx, chat, catalog.MsgEmployeeAdded, phone)
	} else {
		e.say(ctx, chat, catalog.MsgEmployeeRemoved, phone)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// requireRole re-reads the caller's account and checks the role at the
// moment of the final action, so a mid-dialog revocation is caught here.
func (e *Engine) requireRole(ctx context.Context, chat loyalty.ChatID, min loyalty.Role) (*loyalty.Account, bool) {
	acct, err := e.registry.LookupByChat(ctx, chat)
	if errors.Is(err, loyalty.ErrAccountNotFound) {
		e.say(ctx, chat, catalog.MsgRegistrationRequired)
		return nil, false
	}
	if err != nil {
		e.internalError(ctx, chat, err)
		return nil, false
	}
	if !acct.Role.AtLeast(min) {
		if min == loyalty.RoleAdmin {
			e.say(ctx, chat, catalog.MsgAdminsOnly)
		} else {
			e.say(ctx, chat, catalog.MsgEmployeesOnly)
		}
		return nil, false
	}
	return acct, true
}

// sayLedgerError maps a ledger error to its user-facing message.
func (e *Engine) sayLedgerError(ctx context.Context, chat loyalty.ChatID, err error) {
	switch {
	case errors.Is(err, loyalty.ErrInsufficientBalance):
		e.say(ctx, chat, catalog.MsgInsufficientBalance)
	case errors.Is(err, loyalty.ErrAccountNotFound):
		e.say(ctx, chat, catalog.MsgAccountNotFound)
	case errors.Is(err, loyalty.ErrNonPositiveAmount):
		e.say(ctx, chat, catalog.MsgAmountPositive)
	case errors.Is(err, loyalty.ErrInvalidPhone):
		e.say(ctx, chat, catalog.MsgInvalidPhone)
	default:
		e.internalError(ctx, chat, err)
	}
}

func (e *Engine) internalError(ctx context.Context, chat loyalty.ChatID, err error) {
	e.log.Error("dialog step failed", "chat", chat, "error", err)
	e.say(ctx, chat, catalog.MsgInternalError)
}

func (e *Engine) say(ctx context.Context, chat loyalty.ChatID, key catalog.Key, args ...any) {
	e.send(ctx, chat, e.cat.Text(key, args...))
}

// send delivers one outbound message. Delivery failure is logged and
// counted, never propagated: the triggering mutation has already
// committed.
func (e *Engine) send(ctx context.Context, chat loyalty.ChatID, text string) {
	if err := e.notifier.Send(ctx, chat, text); err != nil {
		metrics.DeliveryFailuresTotal.Inc()
		e.log.Warn("notification delivery failed", "chat", chat, "error", err)
	}
}

// broadcastAdmins notifies every admin, best-effort and unordered.
func (e *Engine) broadcastAdmins(ctx context.Context, text string) {
	admins, err := e.accounts.Admins(ctx)
	if err != nil {
		e.log.Error("admin broadcast failed", "error", err)
		return
	}
	for _, admin := range admins {
		e.send(ctx, admin.ChatID, text)
	}
}
