/*
store.go - Persistence interfaces for accounts and the transaction log

PURPOSE:
  Defines the boundary between domain logic and the database. The
  Registry and Ledger only ever talk to these interfaces; SQLite and
  in-memory implementations live in store/ and store/sqlite/.

KEY INTERFACES:
  AccountStore:   Account CRUD with uniqueness constraints and atomic
                  balance adjustment
  TransactionLog: Append-only audit trail of balance changes
  Store:          Both together (what the Ledger needs)

ATOMICITY CONTRACT:
  AdjustBalance is a single atomic read-modify-write. Two concurrent
  accruals to the same account must both land; a redemption that would
  drive the balance negative must fail without mutating. How that is
  achieved (mutex, conditional UPDATE) is the implementation's business.

APPEND-ONLY CONTRACT:
  TransactionLog has no update or delete. Corrections are new entries.

IMPLEMENTATIONS:
  - store/memory.go:        In-memory, for tests and development
  - store/sqlite/sqlite.go: Production SQLite

SEE ALSO:
  - registry.go, ledger.go: Consumers of these interfaces
*/
package loyalty

import "context"

// =============================================================================
// ACCOUNT STORE
// =============================================================================

// AccountStore persists accounts, keyed by chat handle and by phone number,
// both unique.
type AccountStore interface {
	// Create inserts a new account. Fails with ErrChatAlreadyRegistered or
	// ErrPhoneAlreadyRegistered on a uniqueness violation.
	Create(ctx context.Context, acct Account) error

	// ByChat returns the account bound to the chat handle, or
	// ErrAccountNotFound.
	ByChat(ctx context.Context, chat ChatID) (*Account, error)

	// ByPhone returns the account bound to the canonical phone number, or
	// ErrAccountNotFound.
	ByPhone(ctx context.Context, phone string) (*Account, error)

	// AdjustBalance atomically applies delta to the account's balance and
	// returns the new balance. A delta that would make the balance negative
	// fails with InsufficientBalanceError and leaves the balance unchanged.
	AdjustBalance(ctx context.Context, phone string, delta int64) (int64, error)

	// SetRole stores the account's role. Fails with ErrAccountNotFound.
	SetRole(ctx context.Context, phone string, role Role) error

	// Admins returns every admin account, in no particular order.
	Admins(ctx context.Context) ([]Account, error)
}

// =============================================================================
// TRANSACTION LOG - Append-only audit trail
// =============================================================================

// TransactionLog records committed balance changes. Append-only: no update,
// no delete.
type TransactionLog interface {
	// AppendTx adds a transaction to the log.
	AppendTx(ctx context.Context, tx PointsTransaction) error

	// TransactionsByPhone returns the target account's transactions,
	// oldest first.
	TransactionsByPhone(ctx context.Context, phone string) ([]PointsTransaction, error)
}

// Store is the full persistence surface the Ledger requires.
type Store interface {
	AccountStore
	TransactionLog
}
