/*
handlers.go - HTTP request handlers

PURPOSE:
  Implements the REST endpoints. Chat traffic enters through
  POST /api/messages and is handed to the dialog router; the remaining
  endpoints are a read-side for operators (account lookup, transaction
  history) plus a purchase-to-points quote.

ERROR HANDLING PATTERN:
  Domain errors are classified with the loyalty helpers and mapped to
  HTTP status codes here. Handlers never leak raw store errors into
  status decisions.

SEE ALSO:
  - server.go: Route definitions and middleware
  - dialog/router.go: Where chat messages go
*/
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/roastery/loyaltybot/dialog"
	"github.com/roastery/loyaltybot/loyalty"
	"github.com/roastery/loyaltybot/rewards"
)

// Handler holds dependencies for all HTTP handlers.
type Handler struct {
	registry *loyalty.Registry
	txs      loyalty.TransactionLog
	router   *dialog.Router
	engine   *dialog.Engine
	earn     rewards.EarnPolicy
	log      *slog.Logger
}

// NewHandler creates a handler with the given dependencies. logger may
// be nil.
func NewHandler(
	registry *loyalty.Registry,
	txs loyalty.TransactionLog,
	router *dialog.Router,
	engine *dialog.Engine,
	earn rewards.EarnPolicy,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		registry: registry,
		txs:      txs,
		router:   router,
		engine:   engine,
		earn:     earn,
		log:      logger.With("component", "api"),
	}
}

// =============================================================================
// CHAT ENDPOINTS
// =============================================================================

// PostMessage accepts one inbound chat message and runs it through the
// dialog engine. Replies are delivered via the notifier; the response
// only acknowledges receipt and reports the resulting dialog state.
// POST /api/messages
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var msg InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if msg.ChatID == "" {
		writeError(w, http.StatusBadRequest, "chat_id is required", nil)
		return
	}

	chat := loyalty.ChatID(msg.ChatID)
	h.router.Dispatch(r.Context(), chat, msg.Text)

	writeJSON(w, http.StatusAccepted, MessageAccepted{
		ChatID: msg.ChatID,
		State:  h.engine.StateOf(chat).String(),
	})
}

// =============================================================================
// ACCOUNT ENDPOINTS
// =============================================================================

// GetAccount returns the account bound to a phone number.
// GET /api/accounts/{phone}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	acct, err := h.registry.LookupByPhone(r.Context(), phone)
	if err != nil {
		if loyalty.IsValidation(err) {
			writeError(w, http.StatusBadRequest, "Invalid phone number", err)
			return
		}
		if loyalty.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Account not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to look up account", err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountDTO(acct))
}

// GetTransactions returns the account's ledger entries, newest first.
// GET /api/accounts/{phone}/transactions
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	acct, err := h.registry.LookupByPhone(r.Context(), phone)
	if err != nil {
		if loyalty.IsValidation(err) {
			writeError(w, http.StatusBadRequest, "Invalid phone number", err)
			return
		}
		if loyalty.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Account not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to look up account", err)
		return
	}

	txs, err := h.txs.TransactionsByPhone(r.Context(), acct.Phone)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		dtos = append(dtos, toTransactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// QUOTE ENDPOINTS
// =============================================================================

// QuotePurchase computes how many points a purchase total earns under
// the current earn policy.
// POST /api/quotes/purchase
func (h *Handler) QuotePurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid total (use a decimal string)", err)
		return
	}

	writeJSON(w, http.StatusOK, PurchaseQuoteResponse{
		Total:  total.String(),
		Points: h.earn.PointsForPurchase(total),
	})
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func toAccountDTO(a *loyalty.Account) AccountDTO {
	return AccountDTO{
		ChatID:    string(a.ChatID),
		Phone:     a.Phone,
		Role:      a.Role.String(),
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTO(tx loyalty.PointsTransaction) TransactionDTO {
	return TransactionDTO{
		ID:        tx.ID,
		Phone:     tx.Phone,
		ActorChat: string(tx.ActorChat),
		Type:      string(tx.Type),
		Amount:    tx.Amount,
		Balance:   tx.Balance,
		CreatedAt: tx.CreatedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
