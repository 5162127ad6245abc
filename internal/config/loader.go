package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies FLIPRADAR_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known FLIPRADAR_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Supabase ──
	setStr(&cfg.Supabase.DSN, "FLIPRADAR_SUPABASE_DSN")
	setStr(&cfg.Supabase.DSN, "FLIPRADAR_SUPABASE_URL") // compatibility alias
	setStr(&cfg.Supabase.Host, "FLIPRADAR_SUPABASE_HOST")
	setInt(&cfg.Supabase.Port, "FLIPRADAR_SUPABASE_PORT")
	setStr(&cfg.Supabase.Database, "FLIPRADAR_SUPABASE_DATABASE")
	setStr(&cfg.Supabase.User, "FLIPRADAR_SUPABASE_USER")
	setStr(&cfg.Supabase.Password, "FLIPRADAR_SUPABASE_PASSWORD")
	setStr(&cfg.Supabase.SSLMode, "FLIPRADAR_SUPABASE_SSLMODE")
	setInt(&cfg.Supabase.PoolMaxConns, "FLIPRADAR_SUPABASE_POOL_MAX_CONNS")
	setInt(&cfg.Supabase.PoolMinConns, "FLIPRADAR_SUPABASE_POOL_MIN_CONNS")
	setBool(&cfg.Supabase.RunMigrations, "FLIPRADAR_SUPABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "FLIPRADAR_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "FLIPRADAR_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "FLIPRADAR_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "FLIPRADAR_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "FLIPRADAR_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "FLIPRADAR_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "FLIPRADAR_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "FLIPRADAR_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "FLIPRADAR_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "FLIPRADAR_S3_REGION")
	setStr(&cfg.S3.Bucket, "FLIPRADAR_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "FLIPRADAR_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "FLIPRADAR_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "FLIPRADAR_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "FLIPRADAR_S3_FORCE_PATH_STYLE")

	// ── Refresh ──
	setStr(&cfg.Refresh.User, "FLIPRADAR_REFRESH_USER")
	setStringSlice(&cfg.Refresh.PlatformsBuy, "FLIPRADAR_REFRESH_PLATFORMS_BUY")
	setStringSlice(&cfg.Refresh.PlatformsSell, "FLIPRADAR_REFRESH_PLATFORMS_SELL")
	setFloat64(&cfg.Refresh.MinROI, "FLIPRADAR_REFRESH_MIN_ROI")
	setFloat64(&cfg.Refresh.MinNetMargin, "FLIPRADAR_REFRESH_MIN_NET_MARGIN")
	setInt(&cfg.Refresh.Limit, "FLIPRADAR_REFRESH_LIMIT")
	setBool(&cfg.Refresh.IncludeDemo, "FLIPRADAR_REFRESH_INCLUDE_DEMO")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "FLIPRADAR_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "FLIPRADAR_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "FLIPRADAR_SERVER_CORS_ORIGINS")
	setTokenMap(&cfg.Server.AuthTokens, "FLIPRADAR_SERVER_AUTH_TOKENS")
	setInt(&cfg.Server.RateLimitPerMin, "FLIPRADAR_SERVER_RATE_LIMIT_PER_MIN")
	setBool(&cfg.Server.RateLimitEnabled, "FLIPRADAR_SERVER_RATE_LIMIT_ENABLED")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "FLIPRADAR_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "FLIPRADAR_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "FLIPRADAR_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "FLIPRADAR_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "FLIPRADAR_MODE")
	setStr(&cfg.LogLevel, "FLIPRADAR_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

// setTokenMap parses "token:owner" pairs separated by commas, e.g.
// "tok-abc:user-1,tok-def:user-2".
func setTokenMap(dst *map[string]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parsed := make(map[string]string)
	for _, pair := range strings.Split(v, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, owner, ok := strings.Cut(pair, ":")
		token = strings.TrimSpace(token)
		owner = strings.TrimSpace(owner)
		if !ok || token == "" || owner == "" {
			continue
		}
		parsed[token] = owner
	}
	if len(parsed) > 0 {
		*dst = parsed
	}
}
