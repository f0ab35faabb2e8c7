package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// flagsWithPath returns a Flags struct pointing at the given config file.
func flagsWithPath(path string) *Flags {
	return &Flags{Config: path}
}

// writeConfig writes data to a config.toml inside a fresh temp dir.
func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
[client]
timeout_seconds = 60
dial_timeout_seconds = 5
max_redirects = 3
body_memory_limit = 1024
user_agent = "tester/2.0"

[server]
host = "0.0.0.0"
port = 9000
body_max_bytes = 5242880

[log]
level = "debug"
format = "text"
`)

	cfg, err := Load(flagsWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Client.TimeoutSeconds != 60 {
		t.Errorf("Client.TimeoutSeconds = %d, want %d", cfg.Client.TimeoutSeconds, 60)
	}
	if cfg.Client.DialTimeoutSeconds != 5 {
		t.Errorf("Client.DialTimeoutSeconds = %d, want %d", cfg.Client.DialTimeoutSeconds, 5)
	}
	if cfg.Client.MaxRedirects != 3 {
		t.Errorf("Client.MaxRedirects = %d, want %d", cfg.Client.MaxRedirects, 3)
	}
	if cfg.Client.BodyMemoryLimit != 1024 {
		t.Errorf("Client.BodyMemoryLimit = %d, want %d", cfg.Client.BodyMemoryLimit, 1024)
	}
	if cfg.Client.UserAgent != "tester/2.0" {
		t.Errorf("Client.UserAgent = %q, want %q", cfg.Client.UserAgent, "tester/2.0")
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9000)
	}
	if cfg.Server.BodyMaxBytes != 5242880 {
		t.Errorf("Server.BodyMaxBytes = %d, want %d", cfg.Server.BodyMaxBytes, 5242880)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "text")
	}
	if cfg.FilePath() != path {
		t.Errorf("FilePath() = %q, want %q", cfg.FilePath(), path)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "verbose"
`)

	_, err := Load(flagsWithPath(path))
	if err == nil {
		t.Fatal("Load() expected error for invalid log level, got nil")
	}
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	path := writeConfig(t, `
[log]
format = "xml"
`)

	_, err := Load(flagsWithPath(path))
	if err == nil {
		t.Fatal("Load() expected error for invalid log format, got nil")
	}
	if !strings.Contains(err.Error(), "log.format") {
		t.Errorf("error = %q, want mention of log.format", err)
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeConfig(t, "[client\ntimeout_seconds = ")

	_, err := Load(flagsWithPath(path))
	if err == nil {
		t.Fatal("Load() expected parse error, got nil")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("error = %q, want mention of parse", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "# empty\n")

	cfg, err := Load(flagsWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	assertDefaults(t, cfg)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assertDefaults(t, cfg)
	if cfg.FilePath() != "" {
		t.Errorf("FilePath() = %q, want empty", cfg.FilePath())
	}
}

func assertDefaults(t *testing.T, cfg *Config) {
	t.Helper()
	if cfg.Client.TimeoutSeconds != 30 {
		t.Errorf("default Client.TimeoutSeconds = %d, want %d", cfg.Client.TimeoutSeconds, 30)
	}
	if cfg.Client.DialTimeoutSeconds != 10 {
		t.Errorf("default Client.DialTimeoutSeconds = %d, want %d", cfg.Client.DialTimeoutSeconds, 10)
	}
	if cfg.Client.MaxRedirects != 10 {
		t.Errorf("default Client.MaxRedirects = %d, want %d", cfg.Client.MaxRedirects, 10)
	}
	if cfg.Client.BodyMemoryLimit != 2*1024*1024 {
		t.Errorf("default Client.BodyMemoryLimit = %d, want %d", cfg.Client.BodyMemoryLimit, 2*1024*1024)
	}
	if cfg.Client.UserAgent != "loom-http/1.0" {
		t.Errorf("default Client.UserAgent = %q, want %q", cfg.Client.UserAgent, "loom-http/1.0")
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("default Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Server.BodyMaxBytes != 10*1024*1024 {
		t.Errorf("default Server.BodyMaxBytes = %d, want %d", cfg.Server.BodyMaxBytes, 10*1024*1024)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("default Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("default Metrics.Path = %q, want %q", cfg.Metrics.Path, "/metrics")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(flagsWithPath("/nonexistent/config.toml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}

func TestLoad_NoConfigFallsBackToDefaults(t *testing.T) {
	orig := configSearchPaths
	configSearchPaths = []string{"/nonexistent/a.toml", "/nonexistent/b.toml"}
	t.Cleanup(func() { configSearchPaths = orig })

	cfg, err := Load(&Flags{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertDefaults(t, cfg)
}

func TestLoad_FlagOverrides(t *testing.T) {
	path := writeConfig(t, `
[client]
timeout_seconds = 60

[server]
host = "0.0.0.0"
port = 8000

[log]
level = "info"
`)

	flags := &Flags{
		Config:   path,
		LogLevel: "debug",
		Timeout:  5,
		Host:     "127.0.0.1",
		Port:     3000,
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Client.TimeoutSeconds != 5 {
		t.Errorf("Client.TimeoutSeconds = %d, want %d (flag override)", cfg.Client.TimeoutSeconds, 5)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q (flag override)", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want %d (flag override)", cfg.Server.Port, 3000)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q (flag override)", cfg.Log.Level, "debug")
	}
}

func TestLoad_NegativeValues(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"port", "[server]\nport = -1\n", "server.port"},
		{"port too large", "[server]\nport = 70000\n", "server.port"},
		{"body_max_bytes", "[server]\nbody_max_bytes = -1\n", "server.body_max_bytes"},
		{"timeout", "[client]\ntimeout_seconds = -5\n", "client.timeout_seconds"},
		{"dial timeout", "[client]\ndial_timeout_seconds = -1\n", "client.dial_timeout_seconds"},
		{"max redirects", "[client]\nmax_redirects = -2\n", "client.max_redirects"},
		{"body memory limit", "[client]\nbody_memory_limit = -1\n", "client.body_memory_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(flagsWithPath(writeConfig(t, tt.data)))
			if err == nil {
				t.Fatalf("Load() expected error for %s, got nil", tt.name)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestLoad_RateLimitConfig_Enabled(t *testing.T) {
	path := writeConfig(t, `
[server.rate_limit]
enabled = true
requests_per_second = 50.0
`)

	cfg, err := Load(flagsWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Server.RateLimit.Enabled {
		t.Error("expected RateLimit.Enabled = true")
	}
	if cfg.Server.RateLimit.RequestsPerSecond != 50.0 {
		t.Errorf("RateLimit.RequestsPerSecond = %v, want 50.0", cfg.Server.RateLimit.RequestsPerSecond)
	}
}

func TestLoad_RateLimitConfig_Disabled(t *testing.T) {
	cfg, err := Load(flagsWithPath(writeConfig(t, "[server]\nport = 8081\n")))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.RateLimit.Enabled {
		t.Error("expected RateLimit.Enabled = false by default")
	}
}

func TestLoad_RateLimitConfig_BadValue(t *testing.T) {
	path := writeConfig(t, `
[server.rate_limit]
enabled = true
requests_per_second = 0
`)

	_, err := Load(flagsWithPath(path))
	if err == nil {
		t.Fatal("Load() expected error for rate limit enabled with requests_per_second=0, got nil")
	}
	if !strings.Contains(err.Error(), "requests_per_second") {
		t.Errorf("error = %q, want mention of requests_per_second", err)
	}
}

func TestWarnPermissions_Loose(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on Windows")
	}
	path := writeConfig(t, "# test")

	cfg := &Config{filePath: path}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg.WarnPermissions(logger)

	if !strings.Contains(buf.String(), "readable by group/others") {
		t.Errorf("expected permission warning, got: %q", buf.String())
	}
}

func TestWarnPermissions_Strict(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on Windows")
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("# test"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{filePath: path}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg.WarnPermissions(logger)

	if buf.Len() != 0 {
		t.Errorf("expected no warning for 0600 file, got: %q", buf.String())
	}
}

func TestWarnPermissions_NoFile(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	Default().WarnPermissions(logger)

	if buf.Len() != 0 {
		t.Errorf("expected no warning without a config file, got: %q", buf.String())
	}
}

func TestFindConfigInPaths_Found(t *testing.T) {
	path := writeConfig(t, "[client]\ntimeout_seconds = 5\n")

	got := findConfigInPaths([]string{path})
	if got != path {
		t.Errorf("findConfigInPaths() = %q, want %q", got, path)
	}
}

func TestFindConfigInPaths_NotFound(t *testing.T) {
	got := findConfigInPaths([]string{"/nonexistent/a.toml", "/nonexistent/b.toml"})
	if got != "" {
		t.Errorf("findConfigInPaths() = %q, want empty", got)
	}
}

func TestFindConfigInPaths_Priority(t *testing.T) {
	path1 := writeConfig(t, "[client]\ntimeout_seconds = 5\n")
	path2 := writeConfig(t, "[client]\ntimeout_seconds = 6\n")

	got := findConfigInPaths([]string{path1, path2})
	if got != path1 {
		t.Errorf("findConfigInPaths() = %q, want first match %q", got, path1)
	}
}

func TestLoad_MetricsPathDefault(t *testing.T) {
	cfg, err := Load(flagsWithPath(writeConfig(t, "[metrics]\nenabled = true\n")))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/metrics")
	}
}

func TestLoad_MetricsPathNoLeadingSlash(t *testing.T) {
	path := writeConfig(t, `
[metrics]
enabled = true
path = "metrics"
`)

	_, err := Load(flagsWithPath(path))
	if err == nil {
		t.Fatal("Load() expected error for metrics.path without leading slash, got nil")
	}
	if !strings.Contains(err.Error(), "metrics.path") {
		t.Errorf("error = %q, want mention of metrics.path", err)
	}
}

func TestLoad_MetricsPathConflictsWithRoute(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"inspect exact", "/inspect"},
		{"inspect sub", "/inspect/metrics"},
		{"healthz", "/healthz"},
		{"status", "/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := writeConfig(t, `
[metrics]
enabled = true
path = "`+tt.path+`"
`)

			_, err := Load(flagsWithPath(cfgPath))
			if err == nil {
				t.Fatalf("Load() expected error for metrics.path=%q conflicting with route, got nil", tt.path)
			}
			if !strings.Contains(err.Error(), "conflicts") {
				t.Errorf("error = %q, want mention of conflict", err)
			}
		})
	}
}

func TestLoad_MetricsPathValid(t *testing.T) {
	path := writeConfig(t, `
[metrics]
enabled = true
path = "/custom-metrics"
`)

	cfg, err := Load(flagsWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Metrics.Path != "/custom-metrics" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/custom-metrics")
	}
}

func TestLoad_MetricsDisabledSkipsPathValidation(t *testing.T) {
	path := writeConfig(t, `
[metrics]
enabled = false
path = "bad-no-slash"
`)

	_, err := Load(flagsWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v; disabled metrics should skip path validation", err)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	sc := &ServerConfig{Host: "127.0.0.1", Port: 3000}
	want := "127.0.0.1:3000"
	if got := sc.Addr(); got != want {
		t.Errorf("Addr() = %q, want %q", got, want)
	}
}
