/*
errors.go - Centralized error taxonomy for the loyalty domain

PURPOSE:
  All domain error types in one place. Callers classify errors with the
  helpers at the bottom (IsValidation, IsNotFound, ...) and pick the
  user-facing message from that class; they never string-match.

ERROR CATEGORIES:
  1. Validation errors   - malformed or out-of-range input
  2. Authorization errors - role requirement not met
  3. Not-found errors    - unknown phone or chat
  4. Registration errors - uniqueness violations

SEE ALSO:
  - registry.go, ledger.go: Produce these errors
  - dialog/engine.go: Maps them to catalog messages
*/
package loyalty

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrChatAlreadyRegistered is returned when the chat handle is already
	// bound to an account.
	ErrChatAlreadyRegistered = errors.New("chat already registered")

	// ErrPhoneAlreadyRegistered is returned when the phone number is already
	// bound to a different account.
	ErrPhoneAlreadyRegistered = errors.New("phone number already registered")

	// ErrAccountNotFound is returned when a lookup by chat or phone misses.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNotRegistered is returned when an operation requires a registered
	// chat and the chat has no account.
	ErrNotRegistered = errors.New("chat is not registered")

	// ErrInvalidPhone is returned for phone numbers that cannot be
	// canonicalized.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrInvalidAmount is returned when amount text is not an integer.
	ErrInvalidAmount = errors.New("amount is not a number")

	// ErrNonPositiveAmount is returned for zero or negative amounts.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrAmountOutOfRange is returned when an amount violates a policy bound.
	ErrAmountOutOfRange = errors.New("amount out of range")

	// ErrInsufficientBalance is returned when a redemption exceeds the
	// current balance. The balance is left untouched.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNotAuthorized is returned when the caller's role does not grant
	// the operation.
	ErrNotAuthorized = errors.New("not authorized")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError reports how far a redemption overshot.
type InsufficientBalanceError struct {
	Phone     string
	Available int64
	Requested int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s: available %d, requested %d",
		e.Phone, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// AmountRangeError reports a policy-bound violation.
type AmountRangeError struct {
	Amount int64
	Min    int64
	Max    int64
}

func (e *AmountRangeError) Error() string {
	return fmt.Sprintf("amount %d outside allowed range [%d, %d]", e.Amount, e.Min, e.Max)
}

func (e *AmountRangeError) Unwrap() error { return ErrAmountOutOfRange }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation reports whether the error is caused by malformed or
// out-of-range input. The dialog aborts to idle on these.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidPhone) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNonPositiveAmount) ||
		errors.Is(err, ErrAmountOutOfRange)
}

// IsAuthorization reports whether the error is a role-requirement failure.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrNotAuthorized)
}

// IsNotFound reports whether the error indicates a missing account.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrNotRegistered)
}

// IsAlreadyRegistered reports whether the error is a registration
// uniqueness violation.
func IsAlreadyRegistered(err error) bool {
	return errors.Is(err, ErrChatAlreadyRegistered) ||
		errors.Is(err, ErrPhoneAlreadyRegistered)
}
