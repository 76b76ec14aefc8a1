/*
Package config loads the service configuration.

PURPOSE:
  TOML file over compiled defaults. Every knob has a default that runs
  out of the box with an in-memory database and a logging notifier, so
  `loyaltybot serve` works with no config file at all.

FILE LAYOUT (loyaltybot.toml):

  [server]
  host = "127.0.0.1"
  port = 8080

  [storage]
  path = "loyalty.db"        # ":memory:" for ephemeral

  [bot]
  locale = "ru"
  seed_admins = ["+79990000001"]

  [rewards]
  redeem_max = 30
  earn_rate = "0.1"          # points per currency unit

  [notify]
  webhook_url = ""           # empty: log outbound messages instead
  max_retries = 3
*/
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Bot     BotConfig     `toml:"bot"`
	Rewards RewardsConfig `toml:"rewards"`
	Notify  NotifyConfig  `toml:"notify"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type StorageConfig struct {
	Path string `toml:"path"`
}

type BotConfig struct {
	Locale     string   `toml:"locale"`
	SeedAdmins []string `toml:"seed_admins"`
}

type RewardsConfig struct {
	RedeemMax int64  `toml:"redeem_max"`
	EarnRate  string `toml:"earn_rate"`
}

type NotifyConfig struct {
	WebhookURL string `toml:"webhook_url"`
	MaxRetries int    `toml:"max_retries"`
}

// DefaultConfig returns the compiled-in defaults.
func DefaultConfig() Config {
	return Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: StorageConfig{Path: ":memory:"},
		Bot:     BotConfig{Locale: "en"},
		Rewards: RewardsConfig{RedeemMax: 30, EarnRate: "0.1"},
		Notify:  NotifyConfig{MaxRetries: 3},
	}
}

// Load reads the TOML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if cfg.Rewards.RedeemMax <= 0 {
		return Config{}, fmt.Errorf("rewards.redeem_max must be positive, got %d", cfg.Rewards.RedeemMax)
	}
	return cfg, nil
}
