// Package server exposes the refresh engine over an HTTP and WebSocket API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/davidalvarezc/flipradar/internal/domain"
	"github.com/davidalvarezc/flipradar/internal/server/handler"
	"github.com/davidalvarezc/flipradar/internal/server/middleware"
	"github.com/davidalvarezc/flipradar/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	// AuthTokens maps bearer tokens to owner IDs.
	AuthTokens map[string]string
	// RateLimit is requests per window per client; zero disables limiting.
	RateLimit       int
	RateLimitWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server registers.
type Handlers struct {
	Health        *handler.HealthHandler
	Listings      *handler.ListingHandler
	Sales         *handler.SaleHandler
	Settings      *handler.SettingsHandler
	Refresh       *handler.RefreshHandler
	Opportunities *handler.OpportunityHandler
	Demo          *handler.DemoHandler
}

// Server is the HTTP + WebSocket API server for the refresh engine.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered on the ServeMux and
// the middleware chain wired: CORS, then auth, then request logging, then
// rate limiting. limiter may be nil to disable rate limiting.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check. Exempt from auth via skipForHealth below.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Listing import and queries.
	mux.HandleFunc("POST /api/listings", handlers.Listings.ImportListing)
	mux.HandleFunc("POST /api/listings/batch", handlers.Listings.ImportBatch)
	mux.HandleFunc("GET /api/listings", handlers.Listings.ListListings)

	// Observed sales.
	mux.HandleFunc("POST /api/sales", handlers.Sales.RecordSale)
	mux.HandleFunc("GET /api/sales", handlers.Sales.ListSales)

	// Cost settings and fee schedule.
	mux.HandleFunc("GET /api/settings", handlers.Settings.GetSettings)
	mux.HandleFunc("PUT /api/settings", handlers.Settings.PutSettings)
	mux.HandleFunc("GET /api/fees", handlers.Settings.GetFees)
	mux.HandleFunc("PUT /api/fees", handlers.Settings.PutFees)

	// Refresh trigger.
	mux.HandleFunc("POST /api/refresh", handlers.Refresh.Refresh)

	// Scored opportunities and snapshot exports.
	mux.HandleFunc("GET /api/opportunities", handlers.Opportunities.ListOpportunities)
	mux.HandleFunc("POST /api/opportunities/export", handlers.Opportunities.ExportOpportunities)
	mux.HandleFunc("GET /api/opportunities/exports", handlers.Opportunities.ListExports)
	mux.HandleFunc("GET /api/opportunities/exports/{name}", handlers.Opportunities.DownloadExport)

	// Demo dataset loader.
	mux.HandleFunc("POST /api/demo/load", handlers.Demo.LoadDemo)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first. Auth runs before rate
	// limiting and logging so both see the resolved owner identity; only the
	// auth-exempt health endpoint falls back to IP keying.
	var h http.Handler = mux
	if limiter != nil && cfg.RateLimit > 0 {
		h = middleware.RateLimit(limiter, cfg.RateLimit, cfg.RateLimitWindow)(h)
	}
	h = middleware.Logging(logger)(h)
	h = skipForHealth(middleware.Auth(cfg.AuthTokens))(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Handler returns the fully composed middleware chain. It is what the HTTP
// server serves and what tests exercise requests against.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// skipForHealth exempts the health endpoint from a middleware so load
// balancers can check liveness without credentials.
func skipForHealth(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/health" {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
