// Package engine implements the opportunity refresh pipeline: resolving
// listings to canonical products, estimating resale prices from observed
// sales, applying the cost model, scoring, and persisting the resulting
// opportunities.
package engine

import (
	"log/slog"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// Stores bundles the persistence interfaces the engine depends on. All of
// them are required.
type Stores struct {
	Listings domain.ListingStore
	Products domain.ProductStore
	Matches  domain.MatchStore
	Sales    domain.ObservedSaleStore
	Settings domain.SettingsStore
	Fees     domain.FeeStore
	Opps     domain.OpportunityStore
}

// Engine runs the refresh pipeline. It holds no long-lived mutable state;
// per-call state (settings, fee table) is loaded once per refresh invocation
// and treated as read-only for its duration.
type Engine struct {
	stores    Stores
	estimates domain.EstimateCache // optional
	bus       domain.SignalBus     // optional
	logger    *slog.Logger
}

// New creates an Engine over the given stores.
func New(stores Stores, logger *slog.Logger) *Engine {
	return &Engine{
		stores: stores,
		logger: logger.With(slog.String("component", "engine")),
	}
}

// WithEstimateCache attaches an optional sell-price estimate cache. The
// engine behaves identically without one.
func (e *Engine) WithEstimateCache(c domain.EstimateCache) *Engine {
	e.estimates = c
	return e
}

// WithSignalBus attaches an optional signal bus; refresh results and
// opportunity upserts are published to it for live consumers.
func (e *Engine) WithSignalBus(bus domain.SignalBus) *Engine {
	e.bus = bus
	return e
}
