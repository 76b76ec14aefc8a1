/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the loyalty bot service. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags (cobra)
  2. Load TOML configuration
  3. Initialize SQLite store
  4. Wire registry, ledger, dialog engine and notifier
  5. Start HTTP server with graceful shutdown

COMMANDS:
  loyaltybot serve [--config loyaltybot.toml]
  loyaltybot version

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with defaults (in-memory database, log notifier)
  ./loyaltybot serve

  # Run with a config file
  ./loyaltybot serve --config ./loyaltybot.toml

SEE ALSO:
  - config/config.go: Configuration file format
  - api/server.go: Router configuration
  - dialog/engine.go: Conversation handling
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roastery/loyaltybot/api"
	"github.com/roastery/loyaltybot/catalog"
	"github.com/roastery/loyaltybot/config"
	"github.com/roastery/loyaltybot/dialog"
	"github.com/roastery/loyaltybot/loyalty"
	"github.com/roastery/loyaltybot/notify"
	"github.com/roastery/loyaltybot/rewards"
	"github.com/roastery/loyaltybot/store/sqlite"
)

const version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "loyaltybot",
	Short: "Chat-based loyalty points service",
	Long: `loyaltybot runs the loyalty points service: customers register by
phone number, staff accrue and redeem points through short chat dialogs,
and admins manage employee access. Chat traffic arrives over HTTP from a
transport bridge; replies go back through a webhook notifier.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to TOML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Storage
	store, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// Domain services
	registry := loyalty.NewRegistry(store, logger)
	registry.SeedAdmins(cfg.Bot.SeedAdmins)
	ledger := loyalty.NewLedger(store, logger)

	// Outbound messages
	var notifier notify.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhook(notify.WebhookConfig{
			URL:        cfg.Notify.WebhookURL,
			Logger:     logger,
			MaxRetries: cfg.Notify.MaxRetries,
		})
	} else {
		logger.Warn("no webhook_url configured, logging outbound messages instead")
		notifier = notify.NewLogger(logger)
	}

	// Conversation engine
	cat := catalog.New(cfg.Bot.Locale)
	redeem := rewards.RedemptionPolicy{Max: cfg.Rewards.RedeemMax}
	engine := dialog.NewEngine(registry, ledger, store, notifier, cat, redeem, logger)
	router := dialog.NewRouter(engine)

	// HTTP surface
	earn := rewards.NewEarnPolicy(cfg.Rewards.EarnRate)
	handler := api.NewHandler(registry, store, router, engine, earn, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr, "locale", cfg.Bot.Locale)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
