package engine_test

import (
	"io"
	"log/slog"

	"github.com/davidalvarezc/flipradar/internal/engine"
	"github.com/davidalvarezc/flipradar/internal/store/memory"
)

// testStores bundles the in-memory fakes behind one harness so tests can
// seed data and assert on persisted state.
type testStores struct {
	listings *memory.ListingStore
	products *memory.ProductStore
	matches  *memory.MatchStore
	sales    *memory.SaleStore
	settings *memory.SettingsStore
	fees     *memory.FeeStore
	opps     *memory.OpportunityStore
}

func newTestEngine() (*engine.Engine, *testStores) {
	ts := &testStores{
		listings: memory.NewListingStore(),
		products: memory.NewProductStore(),
		matches:  memory.NewMatchStore(),
		sales:    memory.NewSaleStore(),
		settings: memory.NewSettingsStore(),
		fees:     memory.NewFeeStore(),
		opps:     memory.NewOpportunityStore(),
	}

	e := engine.New(engine.Stores{
		Listings: ts.listings,
		Products: ts.products,
		Matches:  ts.matches,
		Sales:    ts.sales,
		Settings: ts.settings,
		Fees:     ts.fees,
		Opps:     ts.opps,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return e, ts
}
