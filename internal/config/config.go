// Package config loads the controller configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port for the controller
	HTTPPort int

	// OTLP gRPC collector address
	OTELEndpoint string

	// Fraction of requests traced
	TraceSampleRatio float64

	LogLevel string

	// Basic auth credentials. Auth is disabled when APIUser is empty.
	APIUser     string
	APIPassword string

	// Requests per second per client, 0 means unlimited
	RateLimit      float64
	RateLimitBurst int

	// Directory the metadata repository is checked out in
	MetadataRepo string

	// Command run in MetadataRepo after a metadata batch
	PushCommand []string
	PushTimeout time.Duration
}

var envBindings = map[string]string{
	"database_url":       "DATABASE_URL",
	"port":               "PORT",
	"otel_endpoint":      "OTEL_EXPORTER_OTLP_ENDPOINT",
	"trace_sample_ratio": "TRACE_SAMPLE_RATIO",
	"log_level":          "LOG_LEVEL",
	"api_user":           "API_USER",
	"api_password":       "API_PASSWORD",
	"rate_limit":         "RATE_LIMIT",
	"rate_limit_burst":   "RATE_LIMIT_BURST",
	"metadata_repo":      "METADATA_REPO",
	"push_command":       "PUSH_COMMAND",
	"push_timeout":       "PUSH_TIMEOUT",
}

// Load reads configuration from path (or layerplane.yaml in the working
// directory when path is empty). Environment variables override the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 6161)
	v.SetDefault("otel_endpoint", "localhost:4317")
	v.SetDefault("trace_sample_ratio", 1.0)
	v.SetDefault("log_level", "info")
	v.SetDefault("rate_limit", 0)
	v.SetDefault("rate_limit_burst", 1)
	v.SetDefault("metadata_repo", "./metadata")
	v.SetDefault("push_timeout", 2*time.Minute)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("layerplane")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		DatabaseURL:      v.GetString("database_url"),
		HTTPPort:         v.GetInt("port"),
		OTELEndpoint:     v.GetString("otel_endpoint"),
		TraceSampleRatio: v.GetFloat64("trace_sample_ratio"),
		LogLevel:         v.GetString("log_level"),
		APIUser:          v.GetString("api_user"),
		APIPassword:      v.GetString("api_password"),
		RateLimit:        v.GetFloat64("rate_limit"),
		RateLimitBurst:   v.GetInt("rate_limit_burst"),
		MetadataRepo:     v.GetString("metadata_repo"),
		PushCommand:      strings.Fields(v.GetString("push_command")),
		PushTimeout:      v.GetDuration("push_timeout"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database_url is required (env: DATABASE_URL)")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (env: PORT), got %d", c.HTTPPort)
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return fmt.Errorf("trace_sample_ratio must be between 0 and 1 (env: TRACE_SAMPLE_RATIO), got %v", c.TraceSampleRatio)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative (env: RATE_LIMIT)")
	}
	if c.RateLimit > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("rate_limit_burst must be at least 1 (env: RATE_LIMIT_BURST)")
	}
	if c.APIUser != "" && c.APIPassword == "" {
		return fmt.Errorf("api_password is required when api_user is set (env: API_PASSWORD)")
	}
	if c.PushTimeout <= 0 {
		return fmt.Errorf("push_timeout must be positive (env: PUSH_TIMEOUT)")
	}
	return nil
}
