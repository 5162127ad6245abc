package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	// Supabase
	out.Supabase = cfg.Supabase
	redact(&out.Supabase.DSN)
	redact(&out.Supabase.Password)

	// Redis
	out.Redis = cfg.Redis
	redact(&out.Redis.Password)

	// S3
	out.S3 = cfg.S3
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)

	// Notify
	out.Notify = cfg.Notify
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Auth tokens are secrets themselves; re-key the map by owner with a
	// placeholder value so the owner list stays visible but tokens do not.
	if cfg.Server.AuthTokens != nil {
		out.Server.AuthTokens = make(map[string]string, len(cfg.Server.AuthTokens))
		for _, owner := range cfg.Server.AuthTokens {
			out.Server.AuthTokens[owner] = redacted
		}
	}

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
	}
	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = make([]string, len(cfg.Server.CORSOrigins))
		copy(out.Server.CORSOrigins, cfg.Server.CORSOrigins)
	}
	if cfg.Refresh.PlatformsBuy != nil {
		out.Refresh.PlatformsBuy = make([]string, len(cfg.Refresh.PlatformsBuy))
		copy(out.Refresh.PlatformsBuy, cfg.Refresh.PlatformsBuy)
	}
	if cfg.Refresh.PlatformsSell != nil {
		out.Refresh.PlatformsSell = make([]string, len(cfg.Refresh.PlatformsSell))
		copy(out.Refresh.PlatformsSell, cfg.Refresh.PlatformsSell)
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
