package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.neynar.com", cfg.Neynar.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Neynar.UserTimeout)
	assert.Equal(t, 15*time.Second, cfg.Neynar.FollowingTimeout)
	assert.Equal(t, 100, cfg.Neynar.FollowingLimit)

	assert.Equal(t, 8080, cfg.Server.Port)

	assert.Equal(t, 5, cfg.RateLimit.ScanRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.ScanWindow)
	assert.Equal(t, 50, cfg.RateLimit.BatchSize)
	assert.Equal(t, 100*time.Millisecond, cfg.RateLimit.BatchPause)

	assert.Equal(t, "info", cfg.Logging.Level)

	// Defaults must pass their own validation
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NEYNAR_API_KEY", "test-key")
	t.Setenv("NEYNAR_SIGNER_UUID", "test-signer")
	t.Setenv("FCUNFOLLOW_PORT", "9090")
	t.Setenv("FCUNFOLLOW_SCANS_PER_MINUTE", "7")
	t.Setenv("FCUNFOLLOW_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "test-key", cfg.Neynar.APIKey)
	assert.Equal(t, "test-signer", cfg.Neynar.SignerUUID)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 7, cfg.RateLimit.ScanRequests)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Neynar.HasCredentials())
}

func TestLoadFromEnvInvalidPort(t *testing.T) {
	t.Setenv("FCUNFOLLOW_PORT", "not-a-number")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	// Keeps the default
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
neynar:
  api_key: file-key
  base_url: https://neynar.example.com
server:
  port: 3000
rate_limit:
  scan_requests: 2
  batch_size: 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "file-key", cfg.Neynar.APIKey)
	assert.Equal(t, "https://neynar.example.com", cfg.Neynar.BaseURL)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 2, cfg.RateLimit.ScanRequests)
	assert.Equal(t, 25, cfg.RateLimit.BatchSize)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("neynar: ["), 0600))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing credentials still valid",
			mutate:  func(c *Config) { c.Neynar.APIKey = ""; c.Neynar.SignerUUID = "" },
			wantErr: false,
		},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "zero scan budget",
			mutate:  func(c *Config) { c.RateLimit.ScanRequests = 0 },
			wantErr: true,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.RateLimit.MaxRetries = -1 },
			wantErr: true,
		},
		{
			name:    "empty base URL",
			mutate:  func(c *Config) { c.Neynar.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.RateLimit.BatchSize = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"api-key":          "flag-key",
		"port":             4000,
		"scans-per-minute": 9,
		"log-level":        "warn",
	})

	assert.Equal(t, "flag-key", cfg.Neynar.APIKey)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, 9, cfg.RateLimit.ScanRequests)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")

	cfg := DefaultConfig()
	cfg.Neynar.APIKey = "persisted"
	cfg.Server.Port = 8123
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "persisted", loaded.Neynar.APIKey)
	assert.Equal(t, 8123, loaded.Server.Port)
}
