// Package config loads the draft-claw configuration from a TOML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DRAFT_CLAW_"

// Config represents the application configuration.
type Config struct {
	App      AppConfig      `toml:"app"`
	Database DatabaseConfig `toml:"database"`
	Capture  CaptureConfig  `toml:"capture"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Upload   UploadConfig   `toml:"upload"`
	API      APIConfig      `toml:"api"`
	Commands CommandsConfig `toml:"commands"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool   `toml:"debug_mode" env:"DEBUG"`
	LogFormat string `toml:"log_format" env:"LOG_FORMAT"` // "console" or "json"
	DataDir   string `toml:"data_dir" env:"DATA_DIR"`
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path        string `toml:"path" env:"DB_PATH"`
	BusyTimeout string `toml:"busy_timeout"`
	AutoMigrate bool   `toml:"auto_migrate"`
}

// CaptureConfig contains capture loop settings.
type CaptureConfig struct {
	InboxDir      string `toml:"inbox_dir" env:"INBOX_DIR"`
	PollInterval  string `toml:"poll_interval"` // e.g. "1s"
	Settle        string `toml:"settle"`        // minimum file age before a scan reads it
	UseFsnotify   bool   `toml:"use_fsnotify"`
	Lenient       bool   `toml:"lenient"`        // accept partially resolved packs
	KeepProcessed bool   `toml:"keep_processed"` // move handled files instead of removing them
	GameID        string `toml:"game_id" env:"GAME_ID"`
}

// CatalogConfig locates the card data and rating sheet.
type CatalogConfig struct {
	CardDataPath string `toml:"card_data_path" env:"CARD_DATA"`
	RatingPath   string `toml:"rating_path" env:"RATINGS"`
	RatingFormat string `toml:"rating_format"`
}

// UploadConfig contains screenshot upload settings. An empty endpoint
// disables uploads.
type UploadConfig struct {
	Endpoint string `toml:"endpoint" env:"UPLOAD_ENDPOINT"`
	ClientID string `toml:"client_id" env:"UPLOAD_CLIENT_ID"`
	Interval string `toml:"interval"` // minimum spacing between uploads
	Burst    int    `toml:"burst"`
	Timeout  string `toml:"timeout"`
}

// APIConfig contains REST API settings.
type APIConfig struct {
	Host           string   `toml:"host" env:"API_HOST"`
	Port           int      `toml:"port" env:"API_PORT"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// CommandsConfig contains chat command settings.
type CommandsConfig struct {
	Prefix        string   `toml:"prefix"`
	CardPrefix    string   `toml:"card_prefix"`
	Channels      []string `toml:"channels"`
	ChannelPrefix string   `toml:"channel_prefix"`
	UserInterval  string   `toml:"user_interval"`
	UserBurst     int      `toml:"user_burst"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			LogFormat: "console",
		},
		Database: DatabaseConfig{
			BusyTimeout: "5s",
			AutoMigrate: true,
		},
		Capture: CaptureConfig{
			PollInterval: "1s",
			Settle:       "250ms",
			UseFsnotify:  true,
		},
		Catalog: CatalogConfig{
			RatingFormat: "14.0",
		},
		Upload: UploadConfig{
			Interval: "10s",
			Burst:    1,
			Timeout:  "30s",
		},
		API: APIConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*"},
		},
		Commands: CommandsConfig{
			Prefix:        "!draft",
			CardPrefix:    "!card",
			ChannelPrefix: "draft",
			UserInterval:  "2s",
			UserBurst:     3,
		},
	}
}

// DefaultDir returns ~/.draft-claw.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".draft-claw"), nil
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration at path. A missing file yields the
// defaults. Environment overrides are applied last and empty paths are
// filled in under the data directory.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DRAFT_CLAW_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

func (c *Config) resolvePaths() error {
	if c.App.DataDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return err
		}
		c.App.DataDir = dir
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.App.DataDir, "draft.db")
	}
	if c.Capture.InboxDir == "" {
		c.Capture.InboxDir = filepath.Join(c.App.DataDir, "inbox")
	}
	return nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	durations := map[string]string{
		"database.busy_timeout":  c.Database.BusyTimeout,
		"capture.poll_interval":  c.Capture.PollInterval,
		"capture.settle":         c.Capture.Settle,
		"upload.interval":        c.Upload.Interval,
		"upload.timeout":         c.Upload.Timeout,
		"commands.user_interval": c.Commands.UserInterval,
	}
	for key, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
	}

	switch c.App.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.App.LogFormat)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port: %d", c.API.Port)
	}
	if c.Upload.Burst < 1 {
		return fmt.Errorf("upload burst must be at least 1: %d", c.Upload.Burst)
	}
	if c.Commands.UserBurst < 1 {
		return fmt.Errorf("command burst must be at least 1: %d", c.Commands.UserBurst)
	}
	if c.Commands.Prefix == "" {
		return errors.New("command prefix cannot be empty")
	}
	return nil
}

// PollInterval returns the capture poll interval.
func (c *Config) PollInterval() time.Duration {
	return mustDuration(c.Capture.PollInterval, time.Second)
}

// SettleDelay returns how old an inbox file must be before it is read.
func (c *Config) SettleDelay() time.Duration {
	return mustDuration(c.Capture.Settle, 250*time.Millisecond)
}

// BusyTimeout returns the SQLite busy timeout.
func (c *Config) BusyTimeout() time.Duration {
	return mustDuration(c.Database.BusyTimeout, 5*time.Second)
}

// UploadInterval returns the minimum spacing between uploads.
func (c *Config) UploadInterval() time.Duration {
	return mustDuration(c.Upload.Interval, 10*time.Second)
}

// UploadTimeout returns the HTTP timeout for one upload.
func (c *Config) UploadTimeout() time.Duration {
	return mustDuration(c.Upload.Timeout, 30*time.Second)
}

// UserInterval returns the per-user command spacing.
func (c *Config) UserInterval() time.Duration {
	return mustDuration(c.Commands.UserInterval, 2*time.Second)
}

// mustDuration parses s, falling back when it is invalid. Validate reports
// the invalid value.
func mustDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
