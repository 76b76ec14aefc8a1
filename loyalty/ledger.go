/*
ledger.go - Loyalty Ledger: the only writer of balances and role flags

PURPOSE:
  Applies point mutations under the domain invariants: amounts are
  positive integers, balances never go negative, and every committed
  change lands in the append-only transaction log.

AUTHORIZATION:
  Role checks (caller must be employee/admin for accrue and redeem,
  admin for grant/revoke) are enforced by the Conversation Engine before
  it calls in here. The Ledger trusts its caller on roles but still
  validates the amount and the target account.

ATOMICITY:
  Balance mutation delegates to AccountStore.AdjustBalance, which is a
  single atomic read-modify-write per target account. Two employees
  accruing to the same customer concurrently both land; a redemption
  never observes a stale balance.

AUDIT TRAIL:
  A failed audit append never rolls back the committed balance change;
  it is logged and surfaced through metrics instead.

SEE ALSO:
  - registry.go: Account creation
  - dialog/engine.go: Authorization and notification around these calls
*/
package loyalty

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Ledger applies point and role mutations.
type Ledger struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// NewLedger creates a Ledger. logger may be nil.
func NewLedger(store Store, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		store: store,
		log:   logger.With("component", "ledger"),
		now:   time.Now,
	}
}

// Accrue adds amount points to the target account and returns the new
// balance. amount must be a positive integer.
func (l *Ledger) Accrue(ctx context.Context, actor ChatID, targetPhone string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrNonPositiveAmount
	}

	phone, err := NormalizePhone(targetPhone)
	if err != nil {
		return 0, err
	}

	balance, err := l.store.AdjustBalance(ctx, phone, amount)
	if err != nil {
		return 0, err
	}

	l.record(ctx, PointsTransaction{
		Phone:     phone,
		ActorChat: actor,
		Type:      TxAccrual,
		Amount:    amount,
		Balance:   balance,
	})

	l.log.Info("points accrued", "phone", phone, "amount", amount, "balance", balance, "actor", actor)
	return balance, nil
}

// Redeem subtracts amount points from the target account and returns the
// new balance. Fails with InsufficientBalanceError before any mutation if
// the balance would go negative.
func (l *Ledger) Redeem(ctx context.Context, actor ChatID, targetPhone string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrNonPositiveAmount
	}

	phone, err := NormalizePhone(targetPhone)
	if err != nil {
		return 0, err
	}

	balance, err := l.store.AdjustBalance(ctx, phone, -amount)
	if err != nil {
		return 0, err
	}

	l.record(ctx, PointsTransaction{
		Phone:     phone,
		ActorChat: actor,
		Type:      TxRedemption,
		Amount:    amount,
		Balance:   balance,
	})

	l.log.Info("points redeemed", "phone", phone, "amount", amount, "balance", balance, "actor", actor)
	return balance, nil
}

// GrantEmployee promotes the account to employee. Idempotent: an account
// that is already an employee or an admin is left untouched.
func (l *Ledger) GrantEmployee(ctx context.Context, targetPhone string) error {
	phone, err := NormalizePhone(targetPhone)
	if err != nil {
		return err
	}

	acct, err := l.store.ByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if acct.Role.AtLeast(RoleEmployee) {
		return nil
	}

	if err := l.store.SetRole(ctx, phone, RoleEmployee); err != nil {
		return err
	}
	l.log.Info("employee granted", "phone", phone)
	return nil
}

// RevokeEmployee demotes an employee back to customer. Idempotent, and an
// admin is never demoted by a revoke.
func (l *Ledger) RevokeEmployee(ctx context.Context, targetPhone string) error {
	phone, err := NormalizePhone(targetPhone)
	if err != nil {
		return err
	}

	acct, err := l.store.ByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if acct.Role != RoleEmployee {
		return nil
	}

	if err := l.store.SetRole(ctx, phone, RoleCustomer); err != nil {
		return err
	}
	l.log.Info("employee revoked", "phone", phone)
	return nil
}

// record appends an audit transaction. The balance change has already
// committed, so an append failure is logged rather than returned.
func (l *Ledger) record(ctx context.Context, tx PointsTransaction) {
	tx.ID = uuid.NewString()
	tx.CreatedAt = l.now().UTC()
	if err := l.store.AppendTx(ctx, tx); err != nil {
		l.log.Error("audit append failed", "tx", tx.ID, "phone", tx.Phone, "error", err)
	}
}
