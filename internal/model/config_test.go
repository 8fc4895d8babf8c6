package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	def := DefaultAppConfig()
	assert.Equal(t, def.Location, cfg.Location)
	assert.Equal(t, def.AI, cfg.AI)
	assert.Equal(t, 60000, cfg.Location.IntervalMs)
	assert.Equal(t, "911", cfg.Display.EmergencyNumber)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
user:
  name: "  Alex  "
location:
  source: static
  static_lat: 51.5
  interval_ms: -1
ai:
  provider: anthropic
display:
  emergency_number: "112"
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Alex", cfg.User.Name)
	assert.Equal(t, "static", cfg.Location.Source)
	assert.InDelta(t, 51.5, cfg.Location.StaticLat, 1e-9)
	assert.Equal(t, 60000, cfg.Location.IntervalMs, "out of range values fall back")
	assert.Equal(t, "anthropic", cfg.AI.Provider)
	assert.Zero(t, cfg.AI.MaxTokens, "provider default")
	assert.Equal(t, "112", cfg.Display.EmergencyNumber)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SAFESIGNAL_AI_PROVIDER", "anthropic")
	t.Setenv("SAFESIGNAL_CONNECTIVITY_INTERVAL_SEC", "30")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.AI.Provider)
	assert.Equal(t, 30, cfg.Connectivity.IntervalSec)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user: [unclosed"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultAppConfig()
	cfg.User.Name = "Alex"
	cfg.Display.EmergencyNumber = "999"

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Alex", loaded.User.Name)
	assert.Equal(t, "999", loaded.Display.EmergencyNumber)
}

func TestConfigDurations(t *testing.T) {
	cfg := DefaultAppConfig()
	assert.Equal(t, "1m0s", cfg.LocationInterval().String())
	assert.Equal(t, "10s", cfg.LocationTimeout().String())
	assert.Equal(t, "5s", cfg.ConnectivityInterval().String())
	assert.Equal(t, "20s", cfg.AI.Timeout().String())
}
