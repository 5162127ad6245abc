package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidalvarezc/flipradar/internal/config"
)

func validConfig() config.Config {
	cfg := config.Defaults()
	cfg.Server.AuthTokens = map[string]string{"tok-abc": "owner-1"}
	return cfg
}

func TestDefaultsValidateWithTokens(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []string{"wallapop", "vinted"}, cfg.Refresh.PlatformsBuy)
	assert.Equal(t, []string{"ebay"}, cfg.Refresh.PlatformsSell)
	assert.Equal(t, 0.10, cfg.Refresh.MinROI)
	assert.Equal(t, 10.0, cfg.Refresh.MinNetMargin)
	assert.Equal(t, 200, cfg.Refresh.Limit)
	assert.False(t, cfg.Refresh.IncludeDemo)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown mode", func(c *config.Config) { c.Mode = "batch" }},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "trace" }},
		{"missing db host", func(c *config.Config) { c.Supabase.Host = "" }},
		{"bad server port", func(c *config.Config) { c.Server.Port = 0 }},
		{"no auth tokens", func(c *config.Config) { c.Server.AuthTokens = nil }},
		{"unknown buy platform", func(c *config.Config) { c.Refresh.PlatformsBuy = []string{"craigslist"} }},
		{"zero refresh limit", func(c *config.Config) { c.Refresh.Limit = 0 }},
		{"telegram token without chat", func(c *config.Config) { c.Notify.TelegramToken = "t" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
mode = "refresh"
log_level = "debug"

[supabase]
host = "db.internal"
password = "secret"

[refresh]
platforms_sell = ["ebay", "catawiki"]
min_roi = 0.25

[server]
port = 9090

[server.auth_tokens]
"tok-abc" = "owner-1"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "refresh", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "db.internal", cfg.Supabase.Host)
	assert.Equal(t, []string{"ebay", "catawiki"}, cfg.Refresh.PlatformsSell)
	assert.Equal(t, 0.25, cfg.Refresh.MinROI)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "owner-1", cfg.Server.AuthTokens["tok-abc"])

	// Untouched fields keep their defaults.
	assert.Equal(t, []string{"wallapop", "vinted"}, cfg.Refresh.PlatformsBuy)
	assert.Equal(t, 200, cfg.Refresh.Limit)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server.auth_tokens]
"tok-file" = "owner-file"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("FLIPRADAR_SUPABASE_PASSWORD", "env-secret")
	t.Setenv("FLIPRADAR_REFRESH_MIN_ROI", "0.3")
	t.Setenv("FLIPRADAR_REFRESH_PLATFORMS_BUY", "wallapop, miravia")
	t.Setenv("FLIPRADAR_SERVER_AUTH_TOKENS", "tok-env:owner-env")
	t.Setenv("FLIPRADAR_MODE", "refresh")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Supabase.Password)
	assert.Equal(t, 0.3, cfg.Refresh.MinROI)
	assert.Equal(t, []string{"wallapop", "miravia"}, cfg.Refresh.PlatformsBuy)
	assert.Equal(t, map[string]string{"tok-env": "owner-env"}, cfg.Server.AuthTokens)
	assert.Equal(t, "refresh", cfg.Mode)
}

func TestRedactedConfigHidesSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Supabase.Password = "db-pass"
	cfg.Redis.Password = "redis-pass"
	cfg.S3.SecretKey = "s3-secret"
	cfg.Notify.TelegramToken = "tg-token"

	red := config.RedactedConfig(&cfg)

	assert.Equal(t, "***", red.Supabase.Password)
	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "***", red.S3.SecretKey)
	assert.Equal(t, "***", red.Notify.TelegramToken)
	assert.NotContains(t, red.Server.AuthTokens, "tok-abc")

	// The original is untouched.
	assert.Equal(t, "db-pass", cfg.Supabase.Password)
	assert.Equal(t, "owner-1", cfg.Server.AuthTokens["tok-abc"])
}
