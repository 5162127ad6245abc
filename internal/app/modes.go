package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davidalvarezc/flipradar/internal/config"
	"github.com/davidalvarezc/flipradar/internal/demo"
	"github.com/davidalvarezc/flipradar/internal/domain"
	"github.com/davidalvarezc/flipradar/internal/engine"
	"github.com/davidalvarezc/flipradar/internal/server"
	"github.com/davidalvarezc/flipradar/internal/server/handler"
	"github.com/davidalvarezc/flipradar/internal/server/ws"
)

// buildEngine assembles the refresh engine over the wired stores, attaching
// the optional Redis extras when present.
func (a *App) buildEngine(deps *Dependencies) *engine.Engine {
	eng := engine.New(engine.Stores{
		Listings: deps.Listings,
		Products: deps.Products,
		Matches:  deps.Matches,
		Sales:    deps.Sales,
		Settings: deps.Settings,
		Fees:     deps.Fees,
		Opps:     deps.Opps,
	}, a.logger)
	if deps.Estimates != nil {
		eng = eng.WithEstimateCache(deps.Estimates)
	}
	if deps.SignalBus != nil {
		eng = eng.WithSignalBus(deps.SignalBus)
	}
	return eng
}

// ServerMode runs the HTTP and WebSocket API until the context is cancelled.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode",
		slog.Int("port", a.cfg.Server.Port),
	)

	eng := a.buildEngine(deps)
	seeder := demo.NewSeeder(deps.Listings, deps.Products, deps.Matches, deps.Sales, a.logger)

	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(a.logger),
		Listings:      handler.NewListingHandler(deps.Listings, eng, a.logger),
		Sales:         handler.NewSaleHandler(deps.Sales, deps.Products, deps.Estimates, a.logger),
		Settings:      handler.NewSettingsHandler(deps.Settings, deps.Fees, a.logger),
		Refresh:       handler.NewRefreshHandler(eng, a.cfg.Refresh, deps.Notifier, a.logger),
		Opportunities: handler.NewOpportunityHandler(deps.Opps, deps.Products, snapshotterOrNil(deps), deps.BlobReader, deps.Notifier, a.logger),
		Demo:          handler.NewDemoHandler(seeder, deps.Notifier, a.logger),
	}

	var hub *ws.Hub
	if deps.SignalBus != nil {
		hub = ws.NewHub(deps.SignalBus, a.logger)
	}

	var limiter domain.RateLimiter
	rateLimit := 0
	if a.cfg.Server.RateLimitEnabled && deps.RateLimiter != nil {
		limiter = deps.RateLimiter
		rateLimit = a.cfg.Server.RateLimitPerMin
	}

	srv := server.NewServer(server.Config{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		AuthTokens:      a.cfg.Server.AuthTokens,
		RateLimit:       rateLimit,
		RateLimitWindow: time.Minute,
	}, handlers, hub, limiter, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	if hub != nil {
		g.Go(func() error {
			return hub.Run(ctx)
		})
	}

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}

// RefreshMode runs one refresh pass for the configured user and exits. It is
// meant for cron-style scheduling next to a long-running server instance.
func (a *App) RefreshMode(ctx context.Context, deps *Dependencies) error {
	userID := a.cfg.Refresh.User
	a.logger.InfoContext(ctx, "starting refresh mode",
		slog.String("user_id", userID),
	)

	eng := a.buildEngine(deps)
	req := refreshRequest(a.cfg.Refresh)

	res, err := eng.Refresh(ctx, userID, req)
	if err != nil {
		if nerr := deps.Notifier.RefreshFailed(ctx, userID, err); nerr != nil {
			a.logger.WarnContext(ctx, "refresh failure notification failed",
				slog.String("error", nerr.Error()),
			)
		}
		return fmt.Errorf("app: refresh: %w", err)
	}

	a.logger.InfoContext(ctx, "refresh pass finished",
		slog.Int("updated", res.Updated),
		slog.Int("considered", res.Considered),
		slog.Int("skipped", res.Skipped),
	)
	if err := deps.Notifier.RefreshCompleted(ctx, userID, res.Updated, res.Considered, res.Skipped); err != nil {
		a.logger.WarnContext(ctx, "refresh notification failed",
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// refreshRequest converts the configured refresh defaults into an engine
// request. Platform names were validated with the rest of the config.
func refreshRequest(cfg config.RefreshConfig) engine.RefreshRequest {
	return engine.RefreshRequest{
		PlatformsBuy:  toPlatforms(cfg.PlatformsBuy),
		PlatformsSell: toPlatforms(cfg.PlatformsSell),
		MinROI:        cfg.MinROI,
		MinNetMargin:  cfg.MinNetMargin,
		Limit:         cfg.Limit,
		IncludeDemo:   cfg.IncludeDemo,
	}
}

func toPlatforms(names []string) []domain.Platform {
	out := make([]domain.Platform, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Platform(strings.ToLower(n)))
	}
	return out
}

// snapshotterOrNil keeps the handler's exporter interface nil when S3 is
// disabled, so the export endpoint reports the feature as unavailable.
func snapshotterOrNil(deps *Dependencies) handler.SnapshotExporter {
	if deps.Snapshotter == nil {
		return nil
	}
	return deps.Snapshotter
}
