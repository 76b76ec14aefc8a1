/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the operator dashboard

ROUTE GROUPS:
  /api/messages             Inbound chat traffic
  /api/accounts/*           Account read-side
  /api/quotes/*             Purchase-to-points quotes
  /metrics                  Prometheus scrape endpoint
  /healthz                  Liveness probe

SECURITY NOTE:
  No authentication middleware. The server is meant to sit behind the
  transport bridge on a private network.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/loyaltybot/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/messages", h.PostMessage)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{phone}", h.GetAccount)
			r.Get("/{phone}/transactions", h.GetTransactions)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/purchase", h.QuotePurchase)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", h.Health)

	return r
}
