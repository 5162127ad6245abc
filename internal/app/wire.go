package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/davidalvarezc/flipradar/internal/blob/s3"
	"github.com/davidalvarezc/flipradar/internal/cache/redis"
	"github.com/davidalvarezc/flipradar/internal/config"
	"github.com/davidalvarezc/flipradar/internal/domain"
	"github.com/davidalvarezc/flipradar/internal/export"
	"github.com/davidalvarezc/flipradar/internal/notify"
	"github.com/davidalvarezc/flipradar/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency the application modes
// need. It is constructed by Wire and torn down by the returned cleanup
// function. The Redis and S3 backed fields are nil when the corresponding
// section is disabled.
type Dependencies struct {
	// Stores
	Listings domain.ListingStore
	Products domain.ProductStore
	Matches  domain.MatchStore
	Sales    domain.ObservedSaleStore
	Settings domain.SettingsStore
	Fees     domain.FeeStore
	Opps     domain.OpportunityStore

	// Redis backed, optional
	Estimates   domain.EstimateCache
	RateLimiter domain.RateLimiter
	SignalBus   domain.SignalBus

	// S3 backed, optional
	BlobWriter  domain.BlobWriter
	BlobReader  domain.BlobReader
	Snapshotter *export.Snapshotter

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// PostgreSQL carries all persistent state; both modes need it.
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Supabase.DSN,
		Host:     cfg.Supabase.Host,
		Port:     cfg.Supabase.Port,
		Database: cfg.Supabase.Database,
		User:     cfg.Supabase.User,
		Password: cfg.Supabase.Password,
		SSLMode:  cfg.Supabase.SSLMode,
		MaxConns: cfg.Supabase.PoolMaxConns,
		MinConns: cfg.Supabase.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Supabase.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.Listings = postgres.NewListingStore(pool)
	deps.Products = postgres.NewProductStore(pool)
	deps.Matches = postgres.NewMatchStore(pool)
	deps.Sales = postgres.NewSaleStore(pool)
	deps.Settings = postgres.NewSettingsStore(pool)
	deps.Fees = postgres.NewFeeStore(pool)
	deps.Opps = postgres.NewOpportunityStore(pool)

	// Redis is optional: without it the engine recomputes estimates on
	// every pass, the API runs unthrottled, and the WebSocket feed stays
	// silent.
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Estimates = redis.NewEstimateCache(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.SignalBus = redis.NewSignalBus(redisClient)
	}

	// S3 is optional: without it snapshot exports return 503.
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.BlobReader = s3blob.NewReader(s3Client)
		deps.Snapshotter = export.NewSnapshotter(deps.Opps, deps.BlobWriter, logger)
	}

	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
