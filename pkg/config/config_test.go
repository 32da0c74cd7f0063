package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadParsesDurationsAndSizes(t *testing.T) {
	path := writeConfig(t, `
server:
  address: "127.0.0.1"
  port: 9090
  db_path: "/tmp/cw"
chat:
  bot_delay: "1500ms"
  history_limit: 50
  max_message_bytes: "64KB"
feed:
  limit: 200
security:
  session:
    ttl: "12h"
retention:
  enabled: true
  cron: "0 2 * * *"
  keep: 50
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, 1500*time.Millisecond, cfg.Chat.BotDelay.Duration())
	assert.Equal(t, int64(64000), cfg.Chat.MaxMessageBytes.Int64())
	assert.Equal(t, 12*time.Hour, cfg.Security.Session.TTL.Duration())
	assert.Equal(t, 50, cfg.Retention.Keep)
}

func TestLoadNumericDurationMeansSeconds(t *testing.T) {
	path := writeConfig(t, "chat:\n  bot_delay: 2\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Chat.BotDelay.Duration())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestAddrDefaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CRIMEWATCH_ADDR", "10.1.2.3:7070")
	t.Setenv("CRIMEWATCH_DB_PATH", "/var/lib/cw")
	t.Setenv("CRIMEWATCH_SESSION_SECRET", "sekrit")
	t.Setenv("CRIMEWATCH_ADMIN_KEYS", "k1, k2")
	t.Setenv("CRIMEWATCH_BOT_DELAY", "750ms")

	var cfg Config
	require.True(t, LoadEnvOverrides(&cfg))
	assert.Equal(t, "10.1.2.3", cfg.Server.Address)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/var/lib/cw", cfg.Server.DBPath)
	assert.Equal(t, "sekrit", cfg.Security.Session.Secret)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Security.AdminKeys)
	assert.Equal(t, 750*time.Millisecond, cfg.Chat.BotDelay.Duration())
}

func TestLoadEffectivePrecedence(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n  db_path: \"/from/file\"\n")

	// file only
	eff, err := LoadEffective(Flags{Config: path, Set: map[string]bool{"config": true}})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", eff.Addr)
	assert.Equal(t, "/from/file", eff.DBPath)
	assert.Equal(t, "config", eff.Source)

	// env beats file
	t.Setenv("CRIMEWATCH_ADDR", ":9100")
	eff, err = LoadEffective(Flags{Config: path, Set: map[string]bool{"config": true}})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9100", eff.Addr)
	assert.Equal(t, "env", eff.Source)

	// flags beat env
	eff, err = LoadEffective(Flags{
		Addr:   ":9200",
		Config: path,
		Set:    map[string]bool{"config": true, "addr": true},
	})
	require.NoError(t, err)
	assert.Equal(t, ":9200", eff.Addr)
	assert.Equal(t, "flags", eff.Source)
}

func TestRuntimeConfigAccessors(t *testing.T) {
	SetRuntime(nil)
	assert.Empty(t, SessionSecret())
	assert.Equal(t, 24*time.Hour, SessionTTL())
	assert.False(t, IsAdminKey("k1"))

	SetRuntime(&RuntimeConfig{
		SessionSecret: "s",
		SessionTTL:    time.Hour,
		AdminKeys:     map[string]struct{}{"k1": {}},
	})
	t.Cleanup(func() { SetRuntime(nil) })
	assert.Equal(t, "s", SessionSecret())
	assert.Equal(t, time.Hour, SessionTTL())
	assert.True(t, IsAdminKey("k1"))
	assert.False(t, IsAdminKey("k2"))
}
