package engine_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidalvarezc/flipradar/internal/domain"
	"github.com/davidalvarezc/flipradar/internal/engine"
	"github.com/davidalvarezc/flipradar/internal/store/memory"
)

func importListing(t *testing.T, ts *testStores, l domain.Listing) domain.Listing {
	t.Helper()
	out, err := ts.listings.Upsert(context.Background(), l)
	require.NoError(t, err)
	return out
}

func TestResolveProduct_CreatesProductAndMatch(t *testing.T) {
	e, ts := newTestEngine()
	l := importListing(t, ts, domain.Listing{
		UserID:   "u1",
		Platform: domain.PlatformWallapop,
		URL:      "https://example.com/xm4",
		Title:    "Sony WH-1000XM4 como nuevos",
		Price:    120,
		Category: "headphones",
	})

	product, err := e.ResolveProduct(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, "Sony WH-1000XM4 como nuevos", product.CanonicalName)
	assert.Equal(t, "headphones", product.Category)
	assert.Equal(t, domain.LiquidityMedium, product.LiquidityClass)

	match, err := ts.matches.GetByListing(context.Background(), "u1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, match.ProductID)
	assert.Equal(t, domain.MatchMethodAutoTitle, match.Method)
	assert.InDelta(t, 0.7, match.Confidence, 1e-9)
}

func TestResolveProduct_LinksToExistingProductByExactName(t *testing.T) {
	e, ts := newTestEngine()
	existing, err := ts.products.Insert(context.Background(), domain.Product{
		UserID:         "u1",
		CanonicalName:  "Apple AirPods Pro 2",
		LiquidityClass: domain.LiquidityHigh,
	})
	require.NoError(t, err)

	l := importListing(t, ts, domain.Listing{
		UserID:   "u1",
		Platform: domain.PlatformVinted,
		URL:      "https://example.com/airpods",
		Title:    "Apple AirPods Pro 2",
		Price:    140,
	})

	product, err := e.ResolveProduct(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, product.ID)
	assert.Equal(t, domain.LiquidityHigh, product.LiquidityClass)
}

func TestResolveProduct_StableAcrossTitleChanges(t *testing.T) {
	e, ts := newTestEngine()
	l := importListing(t, ts, domain.Listing{
		UserID:   "u1",
		Platform: domain.PlatformWallapop,
		URL:      "https://example.com/lego",
		Title:    "LEGO 75257",
		Price:    85,
	})

	first, err := e.ResolveProduct(context.Background(), l)
	require.NoError(t, err)

	// Re-imported listing with a new title keeps its original match.
	l.Title = "LEGO 75257 Millennium Falcon REBAJADO"
	l = importListing(t, ts, l)

	second, err := e.ResolveProduct(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestResolveProduct_TruncatesLongTitles(t *testing.T) {
	e, ts := newTestEngine()
	long := strings.Repeat("x", 300)
	l := importListing(t, ts, domain.Listing{
		UserID:   "u1",
		Platform: domain.PlatformWallapop,
		URL:      "https://example.com/long",
		Title:    long,
		Price:    10,
	})

	product, err := e.ResolveProduct(context.Background(), l)
	require.NoError(t, err)
	assert.Len(t, product.CanonicalName, domain.CanonicalNameMax)

	// A second listing sharing the same 120-char prefix consolidates.
	l2 := importListing(t, ts, domain.Listing{
		UserID:   "u1",
		Platform: domain.PlatformVinted,
		URL:      "https://example.com/long2",
		Title:    long + "yyy",
		Price:    12,
	})
	p2, err := e.ResolveProduct(context.Background(), l2)
	require.NoError(t, err)
	assert.Equal(t, product.ID, p2.ID)
}

func TestResolveProduct_DanglingMatchIsNotFound(t *testing.T) {
	e, ts := newTestEngine()
	l := importListing(t, ts, domain.Listing{
		UserID:   "u1",
		Platform: domain.PlatformWallapop,
		URL:      "https://example.com/ghost",
		Title:    "Ghost product",
		Price:    50,
	})

	product, err := e.ResolveProduct(context.Background(), l)
	require.NoError(t, err)
	require.NoError(t, ts.products.Delete(context.Background(), "u1", product.ID))

	_, err = e.ResolveProduct(context.Background(), l)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveProduct_ScopedByOwner(t *testing.T) {
	e, ts := newTestEngine()
	_, err := ts.products.Insert(context.Background(), domain.Product{
		UserID:        "other",
		CanonicalName: "Shared Title",
	})
	require.NoError(t, err)

	l := importListing(t, ts, domain.Listing{
		UserID:   "u1",
		Platform: domain.PlatformWallapop,
		URL:      "https://example.com/shared",
		Title:    "Shared Title",
		Price:    30,
	})

	product, err := e.ResolveProduct(context.Background(), l)
	require.NoError(t, err)
	assert.Equal(t, "u1", product.UserID, "must not link to another owner's product")
}

// contendedProductStore simulates a concurrent import winning the insert:
// the first Insert commits a product for the same name out of band and
// reports a conflict.
type contendedProductStore struct {
	*memory.ProductStore
	conflicted bool
}

func (s *contendedProductStore) Insert(ctx context.Context, p domain.Product) (domain.Product, error) {
	if !s.conflicted {
		s.conflicted = true
		if _, err := s.ProductStore.Insert(ctx, p); err != nil {
			return domain.Product{}, err
		}
		return domain.Product{}, domain.ErrAlreadyExists
	}
	return s.ProductStore.Insert(ctx, p)
}

func TestResolveProduct_LinksToWinnerOnInsertConflict(t *testing.T) {
	ts := &testStores{
		listings: memory.NewListingStore(),
		products: memory.NewProductStore(),
		matches:  memory.NewMatchStore(),
		sales:    memory.NewSaleStore(),
		settings: memory.NewSettingsStore(),
		fees:     memory.NewFeeStore(),
		opps:     memory.NewOpportunityStore(),
	}
	contended := &contendedProductStore{ProductStore: ts.products}
	e := engine.New(engine.Stores{
		Listings: ts.listings,
		Products: contended,
		Matches:  ts.matches,
		Sales:    ts.sales,
		Settings: ts.settings,
		Fees:     ts.fees,
		Opps:     ts.opps,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	l := importListing(t, ts, domain.Listing{
		UserID:   "u1",
		Platform: domain.PlatformWallapop,
		URL:      "https://example.com/contended",
		Title:    "Contended Title",
		Price:    40,
	})

	product, err := e.ResolveProduct(context.Background(), l)
	require.NoError(t, err)
	assert.True(t, contended.conflicted)

	winner, err := ts.products.GetByCanonicalName(context.Background(), "u1", "Contended Title")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, product.ID, "must link to the product that won the insert")

	match, err := ts.matches.GetByListing(context.Background(), "u1", l.ID)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, match.ProductID)
}
