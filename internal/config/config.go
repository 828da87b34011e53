package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all martchat configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Backend server
	Server ServerConfig `yaml:"server"`

	// Cart behaviour
	Cart CartConfig `yaml:"cart"`

	// Local storage
	Storage StorageConfig `yaml:"storage"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// UI settings
	UI UIConfig `yaml:"ui"`
}

// ServerConfig configures the chatbot backend connection.
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`

	// UserID overrides identity resolution when set (normally resolved from
	// the local store or generated as a guest id).
	UserID string `yaml:"user_id"`

	// CSRFCookie is the cookie name the anti-forgery token is read from.
	CSRFCookie string `yaml:"csrf_cookie"`
}

// CartConfig configures the optimistic cart mirror. The pricing constants
// must match the server's pricing function; divergence shows up as a wrong
// total between a quantity edit and the next sync.
type CartConfig struct {
	// SyncDelay is the debounce window for quantity updates.
	SyncDelay string `yaml:"sync_delay"`

	// BaseShippingFee in won, charged on any non-empty cart.
	BaseShippingFee int64 `yaml:"base_shipping_fee"`

	// FreeShippingThreshold in won, used when the server snapshot carries no
	// membership threshold.
	FreeShippingThreshold int64 `yaml:"free_shipping_threshold"`
}

// StorageConfig configures the local SQLite mirror of client state.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`

	// HandoffDir is watched for pending cross-process messages.
	HandoffDir string `yaml:"handoff_dir"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme        string `yaml:"theme"` // light, dark, auto
	SidebarWidth int    `yaml:"sidebar_width"`
	PageSize     int    `yaml:"page_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "martchat",
		Version: "1.0.0",

		Server: ServerConfig{
			BaseURL:    "http://localhost:8000",
			Timeout:    "30s",
			CSRFCookie: "csrftoken",
		},

		Cart: CartConfig{
			SyncDelay:             "5s",
			BaseShippingFee:       3000,
			FreeShippingThreshold: 30000,
		},

		Storage: StorageConfig{
			DatabasePath: filepath.Join(defaultHome(), "martchat.db"),
			HandoffDir:   filepath.Join(defaultHome(), "handoff"),
		},

		Logging: LoggingConfig{
			Level: "info",
		},

		UI: UIConfig{
			Theme:        "auto",
			SidebarWidth: 36,
			PageSize:     5,
		},
	}
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() string {
	return filepath.Join(defaultHome(), "config.yaml")
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".martchat"
	}
	return filepath.Join(home, ".martchat")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides lets environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("MARTCHAT_SERVER_URL"); url != "" {
		c.Server.BaseURL = url
	}
	if id := os.Getenv("MARTCHAT_USER_ID"); id != "" {
		c.Server.UserID = id
	}
	if path := os.Getenv("MARTCHAT_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if os.Getenv("MARTCHAT_DEBUG") == "1" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// ServerTimeout parses the configured request timeout, defaulting to 30s.
func (c *Config) ServerTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// CartSyncDelay parses the configured debounce window, defaulting to 5s.
func (c *Config) CartSyncDelay() time.Duration {
	d, err := time.ParseDuration(c.Cart.SyncDelay)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}
