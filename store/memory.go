// Package store provides loyalty.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/roastery/loyaltybot/loyalty"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	byChat  map[loyalty.ChatID]*loyalty.Account
	byPhone map[string]*loyalty.Account
	txs     map[string][]loyalty.PointsTransaction
}

func NewMemory() *Memory {
	return &Memory{
		byChat:  make(map[loyalty.ChatID]*loyalty.Account),
		byPhone: make(map[string]*loyalty.Account),
		txs:     make(map[string][]loyalty.PointsTransaction),
	}
}

var _ loyalty.Store = (*Memory)(nil)

// Create inserts a new account, enforcing both uniqueness constraints.
func (m *Memory) Create(_ context.Context, acct loyalty.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byChat[acct.ChatID]; ok {
		return loyalty.ErrChatAlreadyRegistered
	}
	if _, ok := m.byPhone[acct.Phone]; ok {
		return loyalty.ErrPhoneAlreadyRegistered
	}

	stored := acct
	m.byChat[acct.ChatID] = &stored
	m.byPhone[acct.Phone] = &stored
	return nil
}

func (m *Memory) ByChat(_ context.Context, chat loyalty.ChatID) (*loyalty.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.byChat[chat]
	if !ok {
		return nil, loyalty.ErrAccountNotFound
	}
	out := *acct
	return &out, nil
}

func (m *Memory) ByPhone(_ context.Context, phone string) (*loyalty.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.byPhone[phone]
	if !ok {
		return nil, loyalty.ErrAccountNotFound
	}
	out := *acct
	return &out, nil
}

// AdjustBalance applies delta under the store lock, so concurrent
// adjustments to the same account serialize and none is lost.
func (m *Memory) AdjustBalance(_ context.Context, phone string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.byPhone[phone]
	if !ok {
		return 0, loyalty.ErrAccountNotFound
	}
	if acct.Balance+delta < 0 {
		return 0, &loyalty.InsufficientBalanceError{
			Phone:     phone,
			Available: acct.Balance,
			Requested: -delta,
		}
	}
	acct.Balance += delta
	return acct.Balance, nil
}

func (m *Memory) SetRole(_ context.Context, phone string, role loyalty.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.byPhone[phone]
	if !ok {
		return loyalty.ErrAccountNotFound
	}
	acct.Role = role
	return nil
}

func (m *Memory) Admins(_ context.Context) ([]loyalty.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var admins []loyalty.Account
	for _, acct := range m.byPhone {
		if acct.Role == loyalty.RoleAdmin {
			admins = append(admins, *acct)
		}
	}
	return admins, nil
}

// AppendTx adds a transaction. Append-only.
func (m *Memory) AppendTx(_ context.Context, tx loyalty.PointsTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.txs[tx.Phone] = append(m.txs[tx.Phone], tx)
	return nil
}

func (m *Memory) TransactionsByPhone(_ context.Context, phone string) ([]loyalty.PointsTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]loyalty.PointsTransaction, len(m.txs[phone]))
	copy(result, m.txs[phone])
	return result, nil
}
