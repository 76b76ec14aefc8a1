/*
Package loyalty provides the core domain model for the loyalty-points system.

PURPOSE:
  This package contains the account model, role hierarchy, and the two
  business components that mutate it: the Account Registry (identity and
  registration invariants) and the Loyalty Ledger (the only writer of
  balances and role flags).

KEY CONCEPTS IN THIS FILE (types.go):
  - ChatID: Opaque handle for a chat conversation (unique per account)
  - Role: Ordered privilege set (customer < employee < admin)
  - Account: A registered participant with an integer point balance
  - PointsTransaction: Audit record of a single balance change

DESIGN PRINCIPLES:
  1. Integer points: Balances are whole points, never fractional
  2. Ordered roles: Privilege is a total order, not independent flags,
     so a single comparison answers "can this account do X?"
  3. Type safety: ChatID is a distinct type so chat handles and phone
     numbers cannot be mixed up at call sites

SEE ALSO:
  - registry.go: Registration and lookup
  - ledger.go: Balance and role mutation
  - store.go: Persistence interfaces
*/
package loyalty

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ChatID identifies a chat conversation. It is opaque to the core: the
// transport binding decides what it contains (a Telegram chat id, a phone
// number, a session token).
type ChatID string

// =============================================================================
// ROLES - Ordered privilege set
// =============================================================================

// Role is a totally ordered privilege level. Every registered account is at
// least a customer; employees can accrue and redeem points; admins can also
// manage employees. Ordering means an admin passes every employee check
// without separate flag juggling.
type Role int

const (
	RoleCustomer Role = iota
	RoleEmployee
	RoleAdmin
)

// AtLeast reports whether the role grants the privileges of r.
func (r Role) AtLeast(min Role) bool { return r >= min }

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleEmployee:
		return "employee"
	case RoleAdmin:
		return "admin"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole converts a stored role string back to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "customer":
		return RoleCustomer, nil
	case "employee":
		return RoleEmployee, nil
	case "admin":
		return RoleAdmin, nil
	}
	return RoleCustomer, fmt.Errorf("unknown role %q", s)
}

// =============================================================================
// ACCOUNT
// =============================================================================

// Account is a registered participant. Balance and Role are mutated only
// through the Ledger; identity fields are set once at registration.
type Account struct {
	ChatID    ChatID
	Phone     string // canonical form, see NormalizePhone
	Role      Role
	Balance   int64
	CreatedAt time.Time
}

// =============================================================================
// PHONE NUMBERS
// =============================================================================

// NormalizePhone converts a user-entered phone number to canonical form:
// a leading "+" followed by 10 to 15 digits. Spaces, dashes, dots and
// parentheses are stripped. Returns ErrInvalidPhone for anything else.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case r == '+' && i == 0:
			// leading plus is allowed, canonical form adds its own
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
			// separator noise
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
		}
	}

	n := digits.Len()
	if n < 10 || n > 15 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	return "+" + digits.String(), nil
}

// =============================================================================
// POINTS TRANSACTIONS - Audit trail of balance changes
// =============================================================================

type TxType string

const (
	TxAccrual    TxType = "accrual"
	TxRedemption TxType = "redemption"
)

// PointsTransaction records one committed balance change. The log is
// append-only: corrections are new transactions, never edits.
type PointsTransaction struct {
	ID        string // uuid
	Phone     string // target account
	ActorChat ChatID // who initiated the operation
	Type      TxType
	Amount    int64 // always positive; Type carries the direction
	Balance   int64 // balance after the change
	CreatedAt time.Time
}
