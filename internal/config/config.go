// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/loom-http/config.toml",
	"configs/config.toml",
}

// Flags holds the global command-line flags parsed by Kong.
type Flags struct {
	Config   string `kong:"short='c',help='Path to TOML config file.',env='LOOM_HTTP_CONFIG'"`
	LogLevel string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
	Timeout  int    `kong:"help='Transport timeout in seconds (overrides config).',env='LOOM_HTTP_TIMEOUT'"`
	Host     string `kong:"help='Listen host for serve (overrides config).',env='HOST'"`
	Port     int    `kong:"short='p',help='Listen port for serve (overrides config).',env='PORT'"`
}

// Config is the top-level application configuration.
type Config struct {
	Client  ClientConfig  `toml:"client"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`

	filePath string // resolved config file path (unexported)
}

// ClientConfig holds outbound transport settings.
type ClientConfig struct {
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	DialTimeoutSeconds int    `toml:"dial_timeout_seconds"`
	MaxRedirects       int    `toml:"max_redirects"`
	BodyMemoryLimit    int64  `toml:"body_memory_limit"` // bytes kept in memory before a body spills to disk
	UserAgent          string `toml:"user_agent"`
}

// ServerConfig holds settings for the inspect server.
type ServerConfig struct {
	Host         string          `toml:"host"`
	Port         int             `toml:"port"` // 0 means "use default" (8080)
	BodyMaxBytes int64           `toml:"body_max_bytes"`
	RateLimit    RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig controls per-IP request rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load reads the TOML config file and applies flag overrides.
// An explicit path (via --config or LOOM_HTTP_CONFIG) must exist. Without one,
// /etc/loom-http/config.toml then configs/config.toml are tried, and built-in
// defaults are used when neither exists.
func Load(flags *Flags) (*Config, error) {
	path := flags.Config
	if path == "" {
		path = findConfig()
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.filePath = path
	}

	cfg.applyFlags(flags)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// Default returns a validated configuration built from defaults only.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

// applyFlags overrides config values with non-zero flags.
func (c *Config) applyFlags(flags *Flags) {
	if flags.LogLevel != "" {
		c.Log.Level = flags.LogLevel
	}
	if flags.Timeout != 0 {
		c.Client.TimeoutSeconds = flags.Timeout
	}
	if flags.Host != "" {
		c.Server.Host = flags.Host
	}
	if flags.Port != 0 {
		c.Server.Port = flags.Port
	}
}

func (c *Config) validate() error {
	// Numeric bounds.
	if c.Client.TimeoutSeconds < 0 {
		return fmt.Errorf("client.timeout_seconds must be non-negative; got %d", c.Client.TimeoutSeconds)
	}
	if c.Client.DialTimeoutSeconds < 0 {
		return fmt.Errorf("client.dial_timeout_seconds must be non-negative; got %d", c.Client.DialTimeoutSeconds)
	}
	if c.Client.MaxRedirects < 0 {
		return fmt.Errorf("client.max_redirects must be non-negative; got %d", c.Client.MaxRedirects)
	}
	if c.Client.BodyMemoryLimit < 0 {
		return fmt.Errorf("client.body_memory_limit must be non-negative; got %d", c.Client.BodyMemoryLimit)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0–65535; got %d", c.Server.Port)
	}
	if c.Server.BodyMaxBytes < 0 {
		return fmt.Errorf("server.body_max_bytes must be non-negative; got %d", c.Server.BodyMaxBytes)
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", c.Server.RateLimit.RequestsPerSecond)
	}

	// Log fields.
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "":
		// valid
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "":
		// valid
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	// Metrics path validation (only when metrics are enabled).
	if c.Metrics.Enabled && c.Metrics.Path != "" {
		p := c.Metrics.Path
		if p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		for _, reserved := range []string{"/inspect", "/healthz", "/status"} {
			if p == reserved || strings.HasPrefix(p, reserved+"/") {
				return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
			}
		}
	}

	return nil
}

// setDefaults fills zero-valued fields with sensible defaults.
// For integer fields zero means "unset" because TOML cannot distinguish between
// an explicit 0 and an omitted key.
func (c *Config) setDefaults() {
	if c.Client.TimeoutSeconds == 0 {
		c.Client.TimeoutSeconds = 30
	}
	if c.Client.DialTimeoutSeconds == 0 {
		c.Client.DialTimeoutSeconds = 10
	}
	if c.Client.MaxRedirects == 0 {
		c.Client.MaxRedirects = 10
	}
	if c.Client.BodyMemoryLimit == 0 {
		c.Client.BodyMemoryLimit = 2 * 1024 * 1024 // 2 MB
	}
	if c.Client.UserAgent == "" {
		c.Client.UserAgent = "loom-http/1.0"
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BodyMaxBytes == 0 {
		c.Server.BodyMaxBytes = 10 * 1024 * 1024 // 10 MB
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FilePath returns the config file that was loaded, or "" when running on defaults.
func (c *Config) FilePath() string {
	return c.filePath
}

// WarnPermissions logs a warning if the config file is readable by group or others.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}
