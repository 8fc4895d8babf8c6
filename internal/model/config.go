package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// UserConfig holds the identity used when skipping the login screen.
type UserConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
}

// LocationConfig controls the location observer.
type LocationConfig struct {
	// Source is one of "ip", "static" or "demo".
	Source string `mapstructure:"source" yaml:"source"`

	IntervalMs int `mapstructure:"interval_ms" yaml:"interval_ms"`
	TimeoutMs  int `mapstructure:"timeout_ms" yaml:"timeout_ms"`

	// IPURL is the IP geolocation endpoint used by the "ip" source.
	IPURL string `mapstructure:"ip_url" yaml:"ip_url"`

	StaticLat float64 `mapstructure:"static_lat" yaml:"static_lat"`
	StaticLng float64 `mapstructure:"static_lng" yaml:"static_lng"`
}

// ConnectivityConfig controls the connectivity probe.
type ConnectivityConfig struct {
	ProbeURL    string `mapstructure:"probe_url" yaml:"probe_url"`
	IntervalSec int    `mapstructure:"interval_sec" yaml:"interval_sec"`
}

// AIConfig holds settings for the safety message generator.
type AIConfig struct {
	// Provider is "gemini" or "anthropic".
	Provider string `mapstructure:"provider" yaml:"provider"`
	Model    string `mapstructure:"model" yaml:"model"`

	// MaxTokens caps the reply length; 0 uses the provider default.
	MaxTokens  int `mapstructure:"max_tokens" yaml:"max_tokens"`
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// StorageConfig selects where the durable offline flag lives.
type StorageConfig struct {
	Path     string `mapstructure:"path" yaml:"path"`
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	MapsURL         string `mapstructure:"maps_url" yaml:"maps_url"`
	EmergencyNumber string `mapstructure:"emergency_number" yaml:"emergency_number"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	User         UserConfig         `mapstructure:"user" yaml:"user"`
	Location     LocationConfig     `mapstructure:"location" yaml:"location"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity" yaml:"connectivity"`
	AI           AIConfig           `mapstructure:"ai" yaml:"ai"`
	Storage      StorageConfig      `mapstructure:"storage" yaml:"storage"`
	Display      DisplayConfig      `mapstructure:"display" yaml:"display"`
	Log          LogConfig          `mapstructure:"log" yaml:"log"`
}

// LocationInterval returns the polling interval as a duration.
func (c *AppConfig) LocationInterval() time.Duration {
	return time.Duration(c.Location.IntervalMs) * time.Millisecond
}

// LocationTimeout returns the per-attempt location timeout.
func (c *AppConfig) LocationTimeout() time.Duration {
	return time.Duration(c.Location.TimeoutMs) * time.Millisecond
}

// ConnectivityInterval returns how often the connectivity probe runs.
func (c *AppConfig) ConnectivityInterval() time.Duration {
	return time.Duration(c.Connectivity.IntervalSec) * time.Second
}

// Timeout returns the request timeout for the text generation service.
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// ConfigDir returns ~/.config/safesignal, or the working directory when
// the home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "safesignal")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/safesignal/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		Location: LocationConfig{
			Source:     "ip",
			IntervalMs: 60000,
			TimeoutMs:  10000,
			IPURL:      "http://ip-api.com/json",
		},
		Connectivity: ConnectivityConfig{
			ProbeURL:    "https://clients3.google.com/generate_204",
			IntervalSec: 5,
		},
		AI: AIConfig{
			Provider:   "gemini",
			TimeoutSec: 20,
		},
		Storage: StorageConfig{
			Path: filepath.Join(dir, "safesignal.db"),
		},
		Display: DisplayConfig{
			MapsURL:         DefaultMapsURL,
			EmergencyNumber: "911",
		},
		Log: LogConfig{
			Path:  filepath.Join(dir, "safesignal.log"),
			Level: "info",
		},
	}
}

// setDefaults registers every default so missing keys resolve and
// SAFESIGNAL_* environment variables can override them.
func setDefaults(v *viper.Viper, cfg *AppConfig) {
	v.SetDefault("user.name", cfg.User.Name)
	v.SetDefault("location.source", cfg.Location.Source)
	v.SetDefault("location.interval_ms", cfg.Location.IntervalMs)
	v.SetDefault("location.timeout_ms", cfg.Location.TimeoutMs)
	v.SetDefault("location.ip_url", cfg.Location.IPURL)
	v.SetDefault("location.static_lat", cfg.Location.StaticLat)
	v.SetDefault("location.static_lng", cfg.Location.StaticLng)
	v.SetDefault("connectivity.probe_url", cfg.Connectivity.ProbeURL)
	v.SetDefault("connectivity.interval_sec", cfg.Connectivity.IntervalSec)
	v.SetDefault("ai.provider", cfg.AI.Provider)
	v.SetDefault("ai.model", cfg.AI.Model)
	v.SetDefault("ai.max_tokens", cfg.AI.MaxTokens)
	v.SetDefault("ai.timeout_sec", cfg.AI.TimeoutSec)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.redis_url", cfg.Storage.RedisURL)
	v.SetDefault("display.maps_url", cfg.Display.MapsURL)
	v.SetDefault("display.emergency_number", cfg.Display.EmergencyNumber)
	v.SetDefault("log.path", cfg.Log.Path)
	v.SetDefault("log.level", cfg.Log.Level)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults (plus environment overrides) are
// returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("safesignal")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultAppConfig())

	if err := v.ReadInConfig(); err != nil {
		_, missingFile := err.(*os.PathError)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !missingFile && !notFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	normalize(cfg)
	return cfg, nil
}

// normalize replaces out-of-range values with defaults.
func normalize(cfg *AppConfig) {
	def := DefaultAppConfig()
	if cfg.Location.IntervalMs <= 0 {
		cfg.Location.IntervalMs = def.Location.IntervalMs
	}
	if cfg.Location.TimeoutMs <= 0 {
		cfg.Location.TimeoutMs = def.Location.TimeoutMs
	}
	if cfg.Connectivity.IntervalSec <= 0 {
		cfg.Connectivity.IntervalSec = def.Connectivity.IntervalSec
	}
	if cfg.AI.MaxTokens < 0 {
		cfg.AI.MaxTokens = 0
	}
	if cfg.AI.TimeoutSec <= 0 {
		cfg.AI.TimeoutSec = def.AI.TimeoutSec
	}
	if cfg.Display.MapsURL == "" {
		cfg.Display.MapsURL = def.Display.MapsURL
	}
	if cfg.Display.EmergencyNumber == "" {
		cfg.Display.EmergencyNumber = def.Display.EmergencyNumber
	}
	cfg.User.Name = strings.TrimSpace(cfg.User.Name)
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("user", cfg.User)
	v.Set("location", cfg.Location)
	v.Set("connectivity", cfg.Connectivity)
	v.Set("ai", cfg.AI)
	v.Set("storage", cfg.Storage)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
