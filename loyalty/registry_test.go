package loyalty_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastery/loyaltybot/loyalty"
	"github.com/roastery/loyaltybot/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRegistry(t *testing.T) (*loyalty.Registry, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return loyalty.NewRegistry(mem, nil), mem
}

// =============================================================================
// REGISTRATION TESTS
// =============================================================================

func TestRegistry_Register_NewCustomer(t *testing.T) {
	// GIVEN: An empty registry
	// WHEN: A chat registers with a phone number
	// THEN: The account exists with customer role and zero balance

	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	acct, err := reg.Register(ctx, "chat-1", "+7 999 000-00-01")
	require.NoError(t, err)

	assert.Equal(t, loyalty.ChatID("chat-1"), acct.ChatID)
	assert.Equal(t, "+79990000001", acct.Phone)
	assert.Equal(t, loyalty.RoleCustomer, acct.Role)
	assert.Equal(t, int64(0), acct.Balance)
	assert.False(t, acct.CreatedAt.IsZero())
}

func TestRegistry_Register_DuplicateChat_Rejected(t *testing.T) {
	// GIVEN: chat-1 is already registered
	// WHEN: The same chat registers again with a different phone
	// THEN: ErrChatAlreadyRegistered

	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, "chat-1", "79990000001")
	require.NoError(t, err)

	_, err = reg.Register(ctx, "chat-1", "79990000002")
	assert.ErrorIs(t, err, loyalty.ErrChatAlreadyRegistered)
	assert.True(t, loyalty.IsAlreadyRegistered(err))
}

func TestRegistry_Register_DuplicatePhone_Rejected(t *testing.T) {
	// GIVEN: A phone number bound to chat-1
	// WHEN: chat-2 registers with the same number in a different format
	// THEN: ErrPhoneAlreadyRegistered (canonical forms collide)

	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, "chat-1", "+79990000001")
	require.NoError(t, err)

	_, err = reg.Register(ctx, "chat-2", "7 999 000 00 01")
	assert.ErrorIs(t, err, loyalty.ErrPhoneAlreadyRegistered)
}

func TestRegistry_Register_InvalidPhone_Rejected(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Register(context.Background(), "chat-1", "nope")
	assert.ErrorIs(t, err, loyalty.ErrInvalidPhone)
	assert.True(t, loyalty.IsValidation(err))
}

// =============================================================================
// ADMIN SEEDING TESTS
// =============================================================================

func TestRegistry_SeededPhone_RegistersAsAdmin(t *testing.T) {
	// GIVEN: A registry seeded with one admin phone
	// WHEN: That phone registers, and an unrelated phone registers
	// THEN: Only the seeded phone gets admin role

	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	reg.SeedAdmins([]string{"+7 999 000-00-99", "garbage"})

	admin, err := reg.Register(ctx, "chat-admin", "79990000099")
	require.NoError(t, err)
	assert.Equal(t, loyalty.RoleAdmin, admin.Role)

	cust, err := reg.Register(ctx, "chat-cust", "79990000001")
	require.NoError(t, err)
	assert.Equal(t, loyalty.RoleCustomer, cust.Role)
}

// =============================================================================
// LOOKUP TESTS
// =============================================================================

func TestRegistry_Lookups(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Register(ctx, "chat-1", "79990000001")
	require.NoError(t, err)

	byChat, err := reg.LookupByChat(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, "+79990000001", byChat.Phone)

	// Lookup canonicalizes the raw phone before hitting the store.
	byPhone, err := reg.LookupByPhone(ctx, "7 999 000 00 01")
	require.NoError(t, err)
	assert.Equal(t, loyalty.ChatID("chat-1"), byPhone.ChatID)

	_, err = reg.LookupByChat(ctx, "chat-unknown")
	assert.ErrorIs(t, err, loyalty.ErrAccountNotFound)

	ok, err := reg.IsRegistered(ctx, "chat-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reg.IsRegistered(ctx, "chat-unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}
