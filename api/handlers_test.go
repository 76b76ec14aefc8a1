/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Chat message dispatch (PostMessage)
- Account read-side (GetAccount, GetTransactions)
- Purchase quotes (QuotePurchase)
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastery/loyaltybot/api"
	"github.com/roastery/loyaltybot/catalog"
	"github.com/roastery/loyaltybot/dialog"
	"github.com/roastery/loyaltybot/loyalty"
	"github.com/roastery/loyaltybot/notify"
	"github.com/roastery/loyaltybot/rewards"
	"github.com/roastery/loyaltybot/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testAPI struct {
	mux    http.Handler
	store  *store.Memory
	ledger *loyalty.Ledger
	rec    *notify.Recorder
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	mem := store.NewMemory()
	registry := loyalty.NewRegistry(mem, nil)
	ledger := loyalty.NewLedger(mem, nil)
	rec := notify.NewRecorder()
	engine := dialog.NewEngine(registry, ledger, mem, rec, catalog.New("en"), rewards.DefaultRedemption, nil)
	router := dialog.NewRouter(engine)
	handler := api.NewHandler(registry, mem, router, engine, rewards.NewEarnPolicy("0.1"), nil)

	return &testAPI{
		mux:    api.NewRouter(handler),
		store:  mem,
		ledger: ledger,
		rec:    rec,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	a.mux.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

// =============================================================================
// CHAT MESSAGE TESTS
// =============================================================================

func TestPostMessage_RegistrationFlow(t *testing.T) {
	// GIVEN: A fresh chat
	// WHEN: Sending /register and then a phone number
	// THEN: Both are accepted and the reported state tracks the dialog

	a := newTestAPI(t)

	rr := a.do(t, http.MethodPost, "/api/messages", api.InboundMessage{ChatID: "chat-1", Text: "/register"})
	require.Equal(t, http.StatusAccepted, rr.Code)
	ack := decode[api.MessageAccepted](t, rr)
	assert.Equal(t, "register:await_phone", ack.State)

	rr = a.do(t, http.MethodPost, "/api/messages", api.InboundMessage{ChatID: "chat-1", Text: "+79990000001"})
	require.Equal(t, http.StatusAccepted, rr.Code)
	ack = decode[api.MessageAccepted](t, rr)
	assert.Equal(t, "idle", ack.State)

	// Replies went out through the notifier
	assert.NotEmpty(t, a.rec.SentTo("chat-1"))

	acct, err := a.store.ByPhone(context.Background(), "+79990000001")
	require.NoError(t, err)
	assert.Equal(t, loyalty.ChatID("chat-1"), acct.ChatID)
}

func TestPostMessage_MissingChatID(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodPost, "/api/messages", api.InboundMessage{Text: "/start"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// =============================================================================
// ACCOUNT TESTS
// =============================================================================

func seedAPIAccount(t *testing.T, a *testAPI, chat, phone string, role loyalty.Role) {
	t.Helper()
	require.NoError(t, a.store.Create(context.Background(), loyalty.Account{
		ChatID: loyalty.ChatID(chat),
		Phone:  phone,
		Role:   role,
	}))
}

func TestGetAccount(t *testing.T) {
	a := newTestAPI(t)
	seedAPIAccount(t, a, "chat-1", "+79990000001", loyalty.RoleEmployee)

	// The path form omits the plus; lookup canonicalizes it.
	rr := a.do(t, http.MethodGet, "/api/accounts/79990000001", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	dto := decode[api.AccountDTO](t, rr)
	assert.Equal(t, "chat-1", dto.ChatID)
	assert.Equal(t, "+79990000001", dto.Phone)
	assert.Equal(t, "employee", dto.Role)
	assert.Equal(t, int64(0), dto.Balance)
}

func TestGetAccount_NotFound(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodGet, "/api/accounts/79990000404", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetAccount_BadPhone(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodGet, "/api/accounts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetTransactions(t *testing.T) {
	a := newTestAPI(t)
	seedAPIAccount(t, a, "chat-1", "+79990000001", loyalty.RoleCustomer)

	ctx := context.Background()
	_, err := a.ledger.Accrue(ctx, "chat-emp", "+79990000001", 10)
	require.NoError(t, err)
	_, err = a.ledger.Redeem(ctx, "chat-emp", "+79990000001", 3)
	require.NoError(t, err)

	rr := a.do(t, http.MethodGet, "/api/accounts/79990000001/transactions", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	txs := decode[[]api.TransactionDTO](t, rr)
	require.Len(t, txs, 2)
	assert.Equal(t, "accrual", txs[0].Type)
	assert.Equal(t, int64(10), txs[0].Amount)
	assert.Equal(t, "redemption", txs[1].Type)
	assert.Equal(t, int64(7), txs[1].Balance)
}

// =============================================================================
// QUOTE TESTS
// =============================================================================

func TestQuotePurchase(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodPost, "/api/quotes/purchase", api.PurchaseQuoteRequest{Total: "125.50"})
	require.Equal(t, http.StatusOK, rr.Code)

	quote := decode[api.PurchaseQuoteResponse](t, rr)
	assert.Equal(t, int64(12), quote.Points)
}

func TestQuotePurchase_BadTotal(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodPost, "/api/quotes/purchase", api.PurchaseQuoteRequest{Total: "twelve"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// =============================================================================
// HEALTH TESTS
// =============================================================================

func TestHealth(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
