package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every runtime setting. Values come from TRACKER_*
// environment variables, optionally overlaid by a YAML file named in
// TRACKER_CONFIG_FILE. Environment wins over the file.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	HealthAddr string `yaml:"health_addr"`
	LogLevel   string `yaml:"log_level"`

	DatabaseURL      string `yaml:"database_url"`
	DatabaseMaxOpen  int    `yaml:"database_max_open"`
	DatabaseMaxIdle  int    `yaml:"database_max_idle"`
	RedisAddr        string `yaml:"redis_addr"`
	RedisPassword    string `yaml:"redis_password"`
	RateLimitEnabled bool   `yaml:"rate_limit_enabled"`

	TokenSecret   string        `yaml:"token_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	AuditFilePath string        `yaml:"audit_file_path"`

	AuditRetentionDays int    `yaml:"audit_retention_days"`
	AuditSweepSchedule string `yaml:"audit_sweep_schedule"`

	OIDCEnabled      bool   `yaml:"oidc_enabled"`
	OIDCIssuerURL    string `yaml:"oidc_issuer_url"`
	OIDCClientID     string `yaml:"oidc_client_id"`
	OIDCClientSecret string `yaml:"oidc_client_secret"`
	OIDCRedirectURL  string `yaml:"oidc_redirect_url"`

	OTelEnabled  bool   `yaml:"otel_enabled"`
	OTelEndpoint string `yaml:"otel_endpoint"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:         ":8080",
		HealthAddr:         ":8081",
		LogLevel:           "info",
		DatabaseMaxOpen:    25,
		DatabaseMaxIdle:    5,
		RedisAddr:          "localhost:6379",
		RateLimitEnabled:   true,
		TokenTTL:           15 * time.Minute,
		AuditRetentionDays: 90,
		AuditSweepSchedule: "0 3 * * *",
		OTelEndpoint:       "localhost:4317",
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("TRACKER_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "TRACKER_LISTEN_ADDR")
	setString(&c.HealthAddr, "TRACKER_HEALTH_ADDR")
	setString(&c.LogLevel, "TRACKER_LOG_LEVEL")
	setString(&c.DatabaseURL, "TRACKER_DATABASE_URL")
	setInt(&c.DatabaseMaxOpen, "TRACKER_DATABASE_MAX_OPEN")
	setInt(&c.DatabaseMaxIdle, "TRACKER_DATABASE_MAX_IDLE")
	setString(&c.RedisAddr, "TRACKER_REDIS_ADDR")
	setString(&c.RedisPassword, "TRACKER_REDIS_PASSWORD")
	setBool(&c.RateLimitEnabled, "TRACKER_RATE_LIMIT_ENABLED")
	setString(&c.TokenSecret, "TRACKER_TOKEN_SECRET")
	setDuration(&c.TokenTTL, "TRACKER_TOKEN_TTL")
	setString(&c.AuditFilePath, "TRACKER_AUDIT_FILE_PATH")
	setInt(&c.AuditRetentionDays, "TRACKER_AUDIT_RETENTION_DAYS")
	setString(&c.AuditSweepSchedule, "TRACKER_AUDIT_SWEEP_SCHEDULE")
	setBool(&c.OIDCEnabled, "TRACKER_OIDC_ENABLED")
	setString(&c.OIDCIssuerURL, "TRACKER_OIDC_ISSUER_URL")
	setString(&c.OIDCClientID, "TRACKER_OIDC_CLIENT_ID")
	setString(&c.OIDCClientSecret, "TRACKER_OIDC_CLIENT_SECRET")
	setString(&c.OIDCRedirectURL, "TRACKER_OIDC_REDIRECT_URL")
	setBool(&c.OTelEnabled, "TRACKER_OTEL_ENABLED")
	setString(&c.OTelEndpoint, "TRACKER_OTEL_ENDPOINT")
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("TRACKER_TOKEN_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("TRACKER_DATABASE_URL is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.AuditRetentionDays <= 0 {
		return fmt.Errorf("audit retention days must be positive")
	}
	if c.OIDCEnabled {
		if c.OIDCIssuerURL == "" || c.OIDCClientID == "" || c.OIDCClientSecret == "" || c.OIDCRedirectURL == "" {
			return fmt.Errorf("OIDC is enabled but issuer, client id, client secret and redirect url are not all set")
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
