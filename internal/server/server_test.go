package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidalvarezc/flipradar/internal/config"
	"github.com/davidalvarezc/flipradar/internal/demo"
	"github.com/davidalvarezc/flipradar/internal/engine"
	"github.com/davidalvarezc/flipradar/internal/server/handler"
	"github.com/davidalvarezc/flipradar/internal/store/memory"
)

// capturingLimiter records every key it is asked about and always allows.
type capturingLimiter struct {
	keys []string
}

func (l *capturingLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return true, nil
}

func newTestServer(limiter *capturingLimiter) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	listings := memory.NewListingStore()
	products := memory.NewProductStore()
	matches := memory.NewMatchStore()
	sales := memory.NewSaleStore()
	settings := memory.NewSettingsStore()
	fees := memory.NewFeeStore()
	opps := memory.NewOpportunityStore()

	eng := engine.New(engine.Stores{
		Listings: listings,
		Products: products,
		Matches:  matches,
		Sales:    sales,
		Settings: settings,
		Fees:     fees,
		Opps:     opps,
	}, logger)
	seeder := demo.NewSeeder(listings, products, matches, sales, logger)

	handlers := Handlers{
		Health:        handler.NewHealthHandler(logger),
		Listings:      handler.NewListingHandler(listings, eng, logger),
		Sales:         handler.NewSaleHandler(sales, products, nil, logger),
		Settings:      handler.NewSettingsHandler(settings, fees, logger),
		Refresh:       handler.NewRefreshHandler(eng, config.Defaults().Refresh, nil, logger),
		Opportunities: handler.NewOpportunityHandler(opps, products, nil, nil, nil, logger),
		Demo:          handler.NewDemoHandler(seeder, nil, logger),
	}

	cfg := Config{
		Port:            0,
		AuthTokens:      map[string]string{"tok-1": "owner-1"},
		RateLimit:       100,
		RateLimitWindow: time.Minute,
	}
	return NewServer(cfg, handlers, nil, limiter, logger)
}

func TestChainKeysLimiterByOwner(t *testing.T) {
	limiter := &capturingLimiter{}
	srv := newTestServer(limiter)

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "api:owner-1", limiter.keys[0])
}

func TestChainRejectsBeforeLimiting(t *testing.T) {
	limiter := &capturingLimiter{}
	srv := newTestServer(limiter)

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, limiter.keys)
}

func TestChainKeysHealthByClientIP(t *testing.T) {
	limiter := &capturingLimiter{}
	srv := newTestServer(limiter)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "api:ip:203.0.113.9", limiter.keys[0])
}
