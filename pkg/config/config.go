package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the unfollow service
type Config struct {
	// Neynar API credentials and endpoints
	Neynar NeynarConfig `yaml:"neynar" json:"neynar"`

	// HTTP server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Rate limiting for the scan endpoint and upstream pacing
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// NeynarConfig holds upstream API configuration
type NeynarConfig struct {
	APIKey     string `yaml:"api_key" json:"api_key"`
	SignerUUID string `yaml:"signer_uuid" json:"signer_uuid"`
	BaseURL    string `yaml:"base_url" json:"base_url"`

	// Per-call timeouts for the two upstream fetch shapes
	UserTimeout      time.Duration `yaml:"user_timeout" json:"user_timeout"`
	FollowingTimeout time.Duration `yaml:"following_timeout" json:"following_timeout"`

	// FollowingLimit is the page size requested from the following endpoint
	FollowingLimit int `yaml:"following_limit" json:"following_limit"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `yaml:"host" json:"host"`
	Port           int           `yaml:"port" json:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins" json:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" json:"write_timeout"`
	PublicURL      string        `yaml:"public_url" json:"public_url"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// ScanRequests is how many scans one client may start per window
	ScanRequests int           `yaml:"scan_requests" json:"scan_requests"`
	ScanWindow   time.Duration `yaml:"scan_window" json:"scan_window"`

	// Upstream bulk-hydration pacing
	BatchSize  int           `yaml:"batch_size" json:"batch_size"`
	BatchPause time.Duration `yaml:"batch_pause" json:"batch_pause"`

	MaxRetries int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Neynar: NeynarConfig{
			BaseURL:          "https://api.neynar.com",
			UserTimeout:      10 * time.Second,
			FollowingTimeout: 15 * time.Second,
			FollowingLimit:   100,
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			PublicURL:      "https://unfollow.vercel.app",
		},
		RateLimit: RateLimitConfig{
			ScanRequests: 5,
			ScanWindow:   time.Minute,
			BatchSize:    50,
			BatchPause:   100 * time.Millisecond,
			MaxRetries:   3,
			RetryDelay:   time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Neynar credentials
	if apiKey := os.Getenv("NEYNAR_API_KEY"); apiKey != "" {
		c.Neynar.APIKey = apiKey
	}
	if signer := os.Getenv("NEYNAR_SIGNER_UUID"); signer != "" {
		c.Neynar.SignerUUID = signer
	}
	if baseURL := os.Getenv("FCUNFOLLOW_NEYNAR_BASE_URL"); baseURL != "" {
		c.Neynar.BaseURL = baseURL
	}

	// Server
	if host := os.Getenv("FCUNFOLLOW_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("FCUNFOLLOW_PORT"); port != "" {
		var val int
		fmt.Sscanf(port, "%d", &val)
		if val > 0 {
			c.Server.Port = val
		}
	}
	if origins := os.Getenv("FCUNFOLLOW_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}
	if publicURL := os.Getenv("FCUNFOLLOW_PUBLIC_URL"); publicURL != "" {
		c.Server.PublicURL = publicURL
	}

	// Rate limiting
	if scans := os.Getenv("FCUNFOLLOW_SCANS_PER_MINUTE"); scans != "" {
		var val int
		fmt.Sscanf(scans, "%d", &val)
		if val > 0 {
			c.RateLimit.ScanRequests = val
		}
	}
	if batch := os.Getenv("FCUNFOLLOW_BATCH_SIZE"); batch != "" {
		var val int
		fmt.Sscanf(batch, "%d", &val)
		if val > 0 {
			c.RateLimit.BatchSize = val
		}
	}

	// Logging level
	if logLevel := os.Getenv("FCUNFOLLOW_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".fcunfollow.yaml",
		".fcunfollow.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "fcunfollow", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "fcunfollow", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".fcunfollow.yaml"),
		filepath.Join(os.Getenv("HOME"), ".fcunfollow.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
//
// Neynar credentials are deliberately not validated here: the server must
// boot without them and report their absence per request instead.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, errors.New("server port must be between 1 and 65535"))
	}

	if c.RateLimit.ScanRequests <= 0 {
		errs = append(errs, errors.New("scan requests per window must be positive"))
	}
	if c.RateLimit.ScanWindow <= 0 {
		errs = append(errs, errors.New("scan window must be positive"))
	}
	if c.RateLimit.BatchSize <= 0 {
		errs = append(errs, errors.New("batch size must be positive"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	if c.Neynar.BaseURL == "" {
		errs = append(errs, errors.New("neynar base URL is required"))
	}
	if c.Neynar.FollowingLimit <= 0 {
		errs = append(errs, errors.New("following page limit must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if apiKey, ok := flags["api-key"].(string); ok && apiKey != "" {
		c.Neynar.APIKey = apiKey
	}
	if signer, ok := flags["signer-uuid"].(string); ok && signer != "" {
		c.Neynar.SignerUUID = signer
	}
	if port, ok := flags["port"].(int); ok && port > 0 {
		c.Server.Port = port
	}
	if scans, ok := flags["scans-per-minute"].(int); ok && scans > 0 {
		c.RateLimit.ScanRequests = scans
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".fcunfollow.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Addr returns the host:port the server should bind to
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HasCredentials reports whether both upstream credentials are present
func (c *NeynarConfig) HasCredentials() bool {
	return c.APIKey != "" && c.SignerUUID != ""
}
