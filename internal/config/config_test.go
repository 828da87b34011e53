package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "martchat", cfg.Name)
	assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	assert.Equal(t, int64(3000), cfg.Cart.BaseShippingFee)
	assert.Equal(t, int64(30000), cfg.Cart.FreeShippingThreshold)
	assert.Equal(t, 5*time.Second, cfg.CartSyncDelay())
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  base_url: https://mart.example.com
  timeout: 10s
cart:
  sync_delay: 2s
  base_shipping_fee: 2500
logging:
  debug_mode: true
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://mart.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.ServerTimeout())
	assert.Equal(t, 2*time.Second, cfg.CartSyncDelay())
	assert.Equal(t, int64(2500), cfg.Cart.BaseShippingFee)
	assert.True(t, cfg.Logging.DebugMode)
	// Unspecified sections keep defaults.
	assert.Equal(t, "csrftoken", cfg.Server.CSRFCookie)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.BaseURL = "http://127.0.0.1:9000"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", loaded.Server.BaseURL)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("MARTCHAT_SERVER_URL wins over file", func(t *testing.T) {
		t.Setenv("MARTCHAT_SERVER_URL", "http://env.example.com")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://env.example.com", cfg.Server.BaseURL)
	})

	t.Run("MARTCHAT_USER_ID sets identity override", func(t *testing.T) {
		t.Setenv("MARTCHAT_USER_ID", "user-42")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "user-42", cfg.Server.UserID)
	})

	t.Run("MARTCHAT_DEBUG enables debug logging", func(t *testing.T) {
		t.Setenv("MARTCHAT_DEBUG", "1")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("empty env leaves config untouched", func(t *testing.T) {
		t.Setenv("MARTCHAT_SERVER_URL", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	})
}

func TestDurationFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Timeout = "not-a-duration"
	cfg.Cart.SyncDelay = "-3s"

	assert.Equal(t, 30*time.Second, cfg.ServerTimeout())
	assert.Equal(t, 5*time.Second, cfg.CartSyncDelay())
}
