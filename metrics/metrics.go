// Package metrics exposes the service's Prometheus instrumentation.
//
// Counters are registered with promauto on the default registry and
// served by the API router at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesTotal counts inbound chat messages handled.
	MessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loyaltybot_messages_total",
		Help: "Inbound chat messages dispatched.",
	})

	// IntentsTotal counts resolved intents for fresh (non-dialog) messages.
	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loyaltybot_intents_total",
		Help: "Resolved command intents.",
	}, []string{"intent"})

	// LedgerOpsTotal counts ledger operations by outcome.
	LedgerOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loyaltybot_ledger_ops_total",
		Help: "Ledger operations by type and result.",
	}, []string{"op", "result"})

	// DeliveryFailuresTotal counts outbound notifications that could not
	// be delivered. Deliveries are best-effort; failures never roll back
	// a ledger mutation.
	DeliveryFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loyaltybot_delivery_failures_total",
		Help: "Outbound notification delivery failures.",
	})
)
