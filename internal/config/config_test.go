package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
	if err.Error() != "database_url is required (env: DATABASE_URL)" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != 6161 {
		t.Errorf("expected HTTPPort 6161, got %d", cfg.HTTPPort)
	}
	if cfg.OTELEndpoint != "localhost:4317" {
		t.Errorf("expected OTELEndpoint localhost:4317, got %s", cfg.OTELEndpoint)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel info, got %s", cfg.LogLevel)
	}
	if cfg.TraceSampleRatio != 1 {
		t.Errorf("expected TraceSampleRatio 1, got %v", cfg.TraceSampleRatio)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("expected unlimited RateLimit, got %v", cfg.RateLimit)
	}
	if cfg.PushTimeout != 2*time.Minute {
		t.Errorf("expected PushTimeout 2m, got %v", cfg.PushTimeout)
	}
	if len(cfg.PushCommand) != 0 {
		t.Errorf("expected no PushCommand, got %v", cfg.PushCommand)
	}
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://custom/db")
	t.Setenv("PORT", "9999")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317")
	t.Setenv("API_USER", "admin")
	t.Setenv("API_PASSWORD", "secret")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("PUSH_COMMAND", "hg push --force")
	t.Setenv("PUSH_TIMEOUT", "30s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://custom/db" {
		t.Errorf("expected DatabaseURL from env, got %s", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != 9999 {
		t.Errorf("expected HTTPPort 9999, got %d", cfg.HTTPPort)
	}
	if cfg.OTELEndpoint != "otel-collector:4317" {
		t.Errorf("expected OTELEndpoint otel-collector:4317, got %s", cfg.OTELEndpoint)
	}
	if cfg.APIUser != "admin" || cfg.APIPassword != "secret" {
		t.Errorf("unexpected credentials %s/%s", cfg.APIUser, cfg.APIPassword)
	}
	if cfg.RateLimit != 2.5 || cfg.RateLimitBurst != 5 {
		t.Errorf("unexpected rate limit %v/%d", cfg.RateLimit, cfg.RateLimitBurst)
	}
	if len(cfg.PushCommand) != 3 || cfg.PushCommand[0] != "hg" || cfg.PushCommand[2] != "--force" {
		t.Errorf("unexpected PushCommand %v", cfg.PushCommand)
	}
	if cfg.PushTimeout != 30*time.Second {
		t.Errorf("expected PushTimeout 30s, got %v", cfg.PushTimeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero push timeout", map[string]string{"PUSH_TIMEOUT": "0s"}},
		{"sample ratio above one", map[string]string{"TRACE_SAMPLE_RATIO": "1.5"}},
		{"user without password", map[string]string{"API_USER": "admin"}},
		{"negative rate limit", map[string]string{"RATE_LIMIT": "-1"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/test")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "layerplane-test-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	configContent := `
database_url: "postgres://config-file/db"
port: 7777
metadata_repo: /srv/metadata
push_command: "hg push"
`
	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	tmpFile.Close()

	// Clear env vars that would override
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://config-file/db" {
		t.Errorf("expected DatabaseURL from config file, got %s", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != 7777 {
		t.Errorf("expected HTTPPort 7777, got %d", cfg.HTTPPort)
	}
	if cfg.MetadataRepo != "/srv/metadata" {
		t.Errorf("expected MetadataRepo /srv/metadata, got %s", cfg.MetadataRepo)
	}
	if len(cfg.PushCommand) != 2 {
		t.Errorf("expected two argument PushCommand, got %v", cfg.PushCommand)
	}
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "layerplane-test-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	configContent := `
database_url: "postgres://from-file/db"
port: 7777
`
	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	tmpFile.Close()

	t.Setenv("DATABASE_URL", "postgres://from-env/db")
	t.Setenv("PORT", "8888")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://from-env/db" {
		t.Errorf("expected DatabaseURL from env, got %s", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != 8888 {
		t.Errorf("expected HTTPPort 8888 from env, got %d", cfg.HTTPPort)
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	_, err := Load("/nonexistent/path/to/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent config file")
	}
}
