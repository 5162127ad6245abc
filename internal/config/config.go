// Package config defines the top-level configuration for the refresh engine
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by FLIPRADAR_* environment
// variables.
type Config struct {
	Supabase SupabaseConfig `toml:"supabase"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Refresh  RefreshConfig  `toml:"refresh"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// SupabaseConfig holds PostgreSQL / Supabase connection parameters.
type SupabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters. Redis is optional; when
// Enabled is false the engine runs without the estimate cache, the rate
// limiter, and live event fan-out.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for snapshot
// exports. Optional; exports return an error when disabled.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// RefreshConfig holds the default refresh pass parameters. A refresh request
// may override any of them per call.
type RefreshConfig struct {
	// User is the account a one-shot refresh run operates on. Only used in
	// refresh mode; the server resolves the user from the auth token.
	User          string   `toml:"user"`
	PlatformsBuy  []string `toml:"platforms_buy"`
	PlatformsSell []string `toml:"platforms_sell"`
	MinROI        float64  `toml:"min_roi"`
	MinNetMargin  float64  `toml:"min_net_margin"`
	Limit         int      `toml:"limit"`
	IncludeDemo   bool     `toml:"include_demo"`
}

// ServerConfig holds HTTP server parameters. AuthTokens maps bearer tokens
// to the owner ID each token acts as.
type ServerConfig struct {
	Enabled          bool              `toml:"enabled"`
	Port             int               `toml:"port"`
	CORSOrigins      []string          `toml:"cors_origins"`
	AuthTokens       map[string]string `toml:"auth_tokens"`
	RateLimitPerMin  int               `toml:"rate_limit_per_min"`
	RateLimitEnabled bool              `toml:"rate_limit_enabled"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Supabase: SupabaseConfig{
			DSN:           "",
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "flipradar-exports",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Refresh: RefreshConfig{
			PlatformsBuy:  []string{"wallapop", "vinted"},
			PlatformsSell: []string{"ebay"},
			MinROI:        0.10,
			MinNetMargin:  10.0,
			Limit:         200,
			IncludeDemo:   false,
		},
		Server: ServerConfig{
			Enabled:          true,
			Port:             8000,
			CORSOrigins:      []string{"http://localhost:3000", "http://localhost:5173"},
			AuthTokens:       map[string]string{},
			RateLimitPerMin:  120,
			RateLimitEnabled: true,
		},
		Notify: NotifyConfig{
			Events: []string{"refresh_completed", "refresh_failed", "demo_loaded", "export_completed"},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server":  true,
	"refresh": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, refresh)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Supabase
	if strings.TrimSpace(c.Supabase.DSN) == "" {
		if c.Supabase.Host == "" {
			errs = append(errs, "supabase: host must not be empty (or set supabase.dsn)")
		}
		if c.Supabase.Port <= 0 || c.Supabase.Port > 65535 {
			errs = append(errs, fmt.Sprintf("supabase: port must be 1-65535, got %d", c.Supabase.Port))
		}
		if c.Supabase.Database == "" {
			errs = append(errs, "supabase: database must not be empty")
		}
	}
	if c.Supabase.PoolMaxConns < 1 {
		errs = append(errs, "supabase: pool_max_conns must be >= 1")
	}
	if c.Supabase.PoolMinConns < 0 {
		errs = append(errs, "supabase: pool_min_conns must be >= 0")
	}
	if c.Supabase.PoolMinConns > c.Supabase.PoolMaxConns {
		errs = append(errs, "supabase: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	// Refresh
	if strings.ToLower(c.Mode) == "refresh" && strings.TrimSpace(c.Refresh.User) == "" {
		errs = append(errs, "refresh: user must be set when mode is refresh")
	}
	if c.Refresh.MinROI < 0 {
		errs = append(errs, "refresh: min_roi must be >= 0")
	}
	if c.Refresh.Limit < 1 {
		errs = append(errs, "refresh: limit must be >= 1")
	}
	for _, p := range c.Refresh.PlatformsBuy {
		if !knownPlatform(p) {
			errs = append(errs, fmt.Sprintf("refresh: unknown buy platform %q", p))
		}
	}
	for _, p := range c.Refresh.PlatformsSell {
		if !knownPlatform(p) {
			errs = append(errs, fmt.Sprintf("refresh: unknown sell platform %q", p))
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if len(c.Server.AuthTokens) == 0 {
			errs = append(errs, "server: at least one auth token must be configured")
		}
		for token, owner := range c.Server.AuthTokens {
			if strings.TrimSpace(token) == "" || strings.TrimSpace(owner) == "" {
				errs = append(errs, "server: auth_tokens entries must map a non-empty token to a non-empty owner id")
				break
			}
		}
		if c.Server.RateLimitEnabled && c.Server.RateLimitPerMin < 1 {
			errs = append(errs, "server: rate_limit_per_min must be >= 1 when rate limiting is enabled")
		}
	}

	// Notify channels need their credentials in pairs.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

var knownPlatforms = map[string]bool{
	"wallapop": true,
	"vinted":   true,
	"ebay":     true,
	"catawiki": true,
	"miravia":  true,
}

func knownPlatform(p string) bool {
	return knownPlatforms[strings.ToLower(p)]
}
