/*
registry.go - Account Registry: identity and registration invariants

PURPOSE:
  Wraps the AccountStore with the registration rules: a chat handle maps
  to at most one account, a phone number maps to at most one account, and
  new accounts start with zero balance and customer role.

ADMIN SEEDING:
  Admin role is not grantable through the chat interface. The registry
  can be configured with a seed list of admin phone numbers; an account
  registering with a seeded phone is created as an admin. This is the
  external bootstrap mechanism.

SEE ALSO:
  - ledger.go: Balance and role mutation after registration
  - store.go: Persistence interfaces
*/
package loyalty

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Registry enforces identity invariants over the AccountStore.
type Registry struct {
	store      AccountStore
	log        *slog.Logger
	seedAdmins map[string]bool // canonical phones that register as admin
	now        func() time.Time
}

// NewRegistry creates a Registry. logger may be nil.
func NewRegistry(store AccountStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:      store,
		log:        logger.With("component", "registry"),
		seedAdmins: make(map[string]bool),
		now:        time.Now,
	}
}

// SeedAdmins marks phone numbers whose accounts are created with admin
// role. Invalid numbers in the list are skipped with a log entry.
func (r *Registry) SeedAdmins(phones []string) {
	for _, raw := range phones {
		phone, err := NormalizePhone(raw)
		if err != nil {
			r.log.Warn("skipping invalid seed admin phone", "phone", raw)
			continue
		}
		r.seedAdmins[phone] = true
	}
}

// Register creates an account for the chat with the given phone number.
// The account starts with zero balance; its role is customer unless the
// phone is on the admin seed list.
func (r *Registry) Register(ctx context.Context, chat ChatID, rawPhone string) (*Account, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	role := RoleCustomer
	if r.seedAdmins[phone] {
		role = RoleAdmin
	}

	acct := Account{
		ChatID:    chat,
		Phone:     phone,
		Role:      role,
		Balance:   0,
		CreatedAt: r.now().UTC(),
	}

	if err := r.store.Create(ctx, acct); err != nil {
		return nil, err
	}

	r.log.Info("account registered", "chat", chat, "phone", phone, "role", role.String())
	return &acct, nil
}

// LookupByChat returns the account for the chat handle. Pure read.
func (r *Registry) LookupByChat(ctx context.Context, chat ChatID) (*Account, error) {
	return r.store.ByChat(ctx, chat)
}

// LookupByPhone returns the account for the phone number, canonicalizing
// it first. Pure read.
func (r *Registry) LookupByPhone(ctx context.Context, rawPhone string) (*Account, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}
	return r.store.ByPhone(ctx, phone)
}

// IsRegistered reports whether the chat handle has an account.
func (r *Registry) IsRegistered(ctx context.Context, chat ChatID) (bool, error) {
	_, err := r.store.ByChat(ctx, chat)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
