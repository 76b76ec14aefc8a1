/*
dto.go - API data transfer objects

PURPOSE:
  JSON shapes for the HTTP surface. Kept separate from the domain types
  so the wire format can evolve without touching the ledger.

SEE ALSO:
  - handlers.go: Where these are produced and consumed
*/
package api

// InboundMessage is a chat message forwarded by the transport bridge.
type InboundMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// MessageAccepted acknowledges a dispatched message. Replies travel
// through the notifier, not this response.
type MessageAccepted struct {
	ChatID string `json:"chat_id"`
	State  string `json:"state"`
}

// AccountDTO is the external view of an account.
type AccountDTO struct {
	ChatID    string `json:"chat_id"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Balance   int64  `json:"balance"`
	CreatedAt string `json:"created_at"`
}

// TransactionDTO is one ledger entry.
type TransactionDTO struct {
	ID        string `json:"id"`
	Phone     string `json:"phone"`
	ActorChat string `json:"actor_chat"`
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	Balance   int64  `json:"balance"`
	CreatedAt string `json:"created_at"`
}

// PurchaseQuoteRequest asks how many points a purchase earns.
type PurchaseQuoteRequest struct {
	Total string `json:"total"`
}

// PurchaseQuoteResponse carries the computed points.
type PurchaseQuoteResponse struct {
	Total  string `json:"total"`
	Points int64  `json:"points"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
