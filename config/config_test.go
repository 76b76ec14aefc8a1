package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastery/loyaltybot/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":memory:", cfg.Storage.Path)
	assert.Equal(t, "en", cfg.Bot.Locale)
	assert.Equal(t, int64(30), cfg.Rewards.RedeemMax)
	assert.Equal(t, "0.1", cfg.Rewards.EarnRate)
	assert.Empty(t, cfg.Notify.WebhookURL)
}

func TestLoad_EmptyPath_ReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loyaltybot.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090

[bot]
locale = "ru"
seed_admins = ["+79990000099"]

[rewards]
redeem_max = 50

[notify]
webhook_url = "http://bridge:9000/send"
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host) // untouched default
	assert.Equal(t, "ru", cfg.Bot.Locale)
	assert.Equal(t, []string{"+79990000099"}, cfg.Bot.SeedAdmins)
	assert.Equal(t, int64(50), cfg.Rewards.RedeemMax)
	assert.Equal(t, "http://bridge:9000/send", cfg.Notify.WebhookURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_NonPositiveRedeemMax_Rejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[rewards]\nredeem_max = 0\n"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}
