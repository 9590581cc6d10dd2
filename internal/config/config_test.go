package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay())
	assert.Equal(t, "127.0.0.1", cfg.API.Host)
	assert.Equal(t, "!draft", cfg.Commands.Prefix)
	assert.Equal(t, "14.0", cfg.Catalog.RatingFormat)
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DRAFT_CLAW_DATA_DIR", dir)

	cfg, err := LoadFrom(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.App.DataDir)
	assert.Equal(t, filepath.Join(dir, "draft.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(dir, "inbox"), cfg.Capture.InboxDir)
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[app]
data_dir = "` + filepath.ToSlash(dir) + `"
debug_mode = true

[capture]
poll_interval = "250ms"
settle = "1s"
game_id = "fromfile"

[api]
port = 9000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("DRAFT_CLAW_GAME_ID", "fromenv1")
	t.Setenv("DRAFT_CLAW_UPLOAD_CLIENT_ID", "client")
	t.Setenv("DRAFT_CLAW_API_HOST", "0.0.0.0")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.True(t, cfg.App.DebugMode)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, "fromenv1", cfg.Capture.GameID)
	assert.Equal(t, "client", cfg.Upload.ClientID)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, "0.0.0.0", cfg.API.Host)
	assert.Equal(t, time.Second, cfg.SettleDelay())
	// untouched sections keep their defaults
	assert.Equal(t, "!card", cfg.Commands.CardPrefix)
	assert.True(t, cfg.Capture.UseFsnotify)
}

func TestLoadFromInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[app\n"), 0o644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DRAFT_CLAW_DATA_DIR", dir)
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Commands.Channels = []string{"general"}
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"general"}, loaded.Commands.Channels)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad poll interval", func(c *Config) { c.Capture.PollInterval = "soon" }},
		{"bad settle", func(c *Config) { c.Capture.Settle = "later" }},
		{"bad log format", func(c *Config) { c.App.LogFormat = "xml" }},
		{"bad port", func(c *Config) { c.API.Port = 70000 }},
		{"zero upload burst", func(c *Config) { c.Upload.Burst = 0 }},
		{"empty prefix", func(c *Config) { c.Commands.Prefix = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
