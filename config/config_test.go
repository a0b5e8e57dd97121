package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// TestAppConfig is an example of how an application would embed Config
type TestAppConfig struct {
	Shoot          Config `toml:"shoot"`
	TemplateDir    string `toml:"template_dir" env:"TEMPLATE_DIR"`
	MaxConnections int    `toml:"max_connections" env:"MAX_CONNECTIONS"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader("test.toml")
	if loader == nil {
		t.Fatal("NewLoader returned nil")
	}
	if loader.configPath != "test.toml" {
		t.Errorf("expected configPath to be 'test.toml', got %s", loader.configPath)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	path := writeConfig(t, `
template_dir = "templates"
max_connections = 100

[shoot.server]
http_port = 8080
health_port = 9090
log_level = "debug"
environment = "production"

[shoot.pipeline]
middleware = ["logging", "tracing", "auth"]
auth_secret = "s3cret"
trace_system = "html"
`)

	var config TestAppConfig
	if err := NewLoader(path).Load(&config); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	server := config.Shoot.Server
	if server.HTTPPort != 8080 || server.HealthPort != 9090 {
		t.Errorf("unexpected ports %d/%d", server.HTTPPort, server.HealthPort)
	}
	if server.LogLevel != "debug" {
		t.Errorf("expected LogLevel to be 'debug', got %s", server.LogLevel)
	}
	if server.Environment != "production" {
		t.Errorf("expected Environment to be 'production', got %s", server.Environment)
	}

	pipeline := config.Shoot.Pipeline
	if !slices.Equal(pipeline.Middleware, []string{"logging", "tracing", "auth"}) {
		t.Errorf("unexpected middleware %v", pipeline.Middleware)
	}
	if pipeline.AuthSecret != "s3cret" {
		t.Errorf("expected AuthSecret 's3cret', got %s", pipeline.AuthSecret)
	}
	if pipeline.TraceSystem != "html" {
		t.Errorf("expected TraceSystem 'html', got %s", pipeline.TraceSystem)
	}

	if config.TemplateDir != "templates" {
		t.Errorf("expected TemplateDir to be 'templates', got %s", config.TemplateDir)
	}
	if config.MaxConnections != 100 {
		t.Errorf("expected MaxConnections to be 100, got %d", config.MaxConnections)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
max_connections = 50

[shoot.server]
log_level = "info"
health_port = 8080
environment = "development"

[shoot.pipeline]
middleware = ["logging"]
`)

	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("MAX_CONNECTIONS", "200")
	t.Setenv("SHOOT_MIDDLEWARE", "tracing, logging ,")

	var config TestAppConfig
	if err := NewLoader(path).Load(&config); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if config.Shoot.Server.LogLevel != "error" {
		t.Errorf("expected LogLevel to be 'error' (from env), got %s", config.Shoot.Server.LogLevel)
	}
	if config.MaxConnections != 200 {
		t.Errorf("expected MaxConnections to be 200 (from env), got %d", config.MaxConnections)
	}
	if !slices.Equal(config.Shoot.Pipeline.Middleware, []string{"tracing", "logging"}) {
		t.Errorf("expected middleware from env, got %v", config.Shoot.Pipeline.Middleware)
	}

	// Fields without env vars keep TOML values
	if config.Shoot.Server.HealthPort != 8080 {
		t.Errorf("expected HealthPort to be 8080 (from TOML), got %d", config.Shoot.Server.HealthPort)
	}
	if config.Shoot.Server.Environment != "development" {
		t.Errorf("expected Environment to be 'development' (from TOML), got %s", config.Shoot.Server.Environment)
	}
}

func TestEnvEmptyKeepsTOMLValue(t *testing.T) {
	path := writeConfig(t, `
[server]
log_level = "warn"
http_port = 8080

[pipeline]
middleware = ["logging"]
`)
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("SHOOT_MIDDLEWARE", "")

	var config Config
	if err := NewLoader(path).Load(&config); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if config.Server.LogLevel != "warn" {
		t.Errorf("expected LogLevel 'warn' from TOML, got %s", config.Server.LogLevel)
	}
	if config.Server.HTTPPort != 8080 {
		t.Errorf("expected HTTPPort 8080 from TOML, got %d", config.Server.HTTPPort)
	}
	if !slices.Equal(config.Pipeline.Middleware, []string{"logging"}) {
		t.Errorf("expected middleware from TOML, got %v", config.Pipeline.Middleware)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	var config TestAppConfig
	if err := NewLoader("/nonexistent/path/config.toml").Load(&config); err != nil {
		t.Fatalf("expected no error for non-existent file, got: %v", err)
	}
	if config.Shoot.Server.LogLevel != "" {
		t.Errorf("expected empty LogLevel for non-existent file, got %s", config.Shoot.Server.LogLevel)
	}
}

func TestLoadWithInvalidTOML(t *testing.T) {
	path := writeConfig(t, `
[shoot
this is not valid TOML
`)

	var config TestAppConfig
	if err := NewLoader(path).Load(&config); err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestLoadRejectsBadTargets(t *testing.T) {
	loader := NewLoader("test.toml")

	if err := loader.Load(nil); err == nil {
		t.Error("expected error for nil config, got nil")
	}

	var config TestAppConfig
	if err := loader.Load(config); err == nil {
		t.Error("expected error for non-pointer config, got nil")
	}

	var s string
	if err := loader.Load(&s); err == nil {
		t.Error("expected error for pointer to non-struct, got nil")
	}
}

func TestEnvOverrideInvalidInt(t *testing.T) {
	path := writeConfig(t, `
[server]
health_port = 9090
`)
	t.Setenv("HEALTH_PORT", "not_a_number")

	var config Config
	if err := NewLoader(path).Load(&config); err == nil {
		t.Fatal("expected error for invalid int in env var, got nil")
	}
}

func TestEnvOverrideWithoutTOMLFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_PORT", "5555")
	t.Setenv("HEALTH_PORT", "4444")
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("SHOOT_AUTH_SECRET", "from-env")

	var config Config
	if err := NewLoader("/nonexistent/config.toml").Load(&config); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if config.Server.LogLevel != "debug" {
		t.Errorf("expected LogLevel to be 'debug' (from env), got %s", config.Server.LogLevel)
	}
	if config.Server.HTTPPort != 5555 {
		t.Errorf("expected HTTPPort to be 5555 (from env), got %d", config.Server.HTTPPort)
	}
	if config.Server.HealthPort != 4444 {
		t.Errorf("expected HealthPort to be 4444 (from env), got %d", config.Server.HealthPort)
	}
	if config.Server.Environment != "test" {
		t.Errorf("expected Environment to be 'test' (from env), got %s", config.Server.Environment)
	}
	if config.Pipeline.AuthSecret != "from-env" {
		t.Errorf("expected AuthSecret from env, got %s", config.Pipeline.AuthSecret)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		cfg := BaseConfig{LogLevel: tt.level}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNomadPorts(t *testing.T) {
	cfg := BaseConfig{HTTPPort: 8080, HealthPort: 9090}

	if got := cfg.GetHTTPPort(); got != 8080 {
		t.Errorf("expected configured HTTP port, got %d", got)
	}

	t.Setenv("NOMAD_PORT_http", "23456")
	t.Setenv("NOMAD_PORT_health", "bogus")

	if got := cfg.GetHTTPPort(); got != 23456 {
		t.Errorf("expected Nomad HTTP port 23456, got %d", got)
	}
	if got := cfg.GetHealthPort(); got != 9090 {
		t.Errorf("expected fallback health port 9090, got %d", got)
	}
}
