package demo_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidalvarezc/flipradar/internal/demo"
	"github.com/davidalvarezc/flipradar/internal/domain"
	"github.com/davidalvarezc/flipradar/internal/store/memory"
)

type seederFixture struct {
	listings *memory.ListingStore
	products *memory.ProductStore
	matches  *memory.MatchStore
	sales    *memory.SaleStore
	seeder   *demo.Seeder
}

func newSeederFixture() *seederFixture {
	f := &seederFixture{
		listings: memory.NewListingStore(),
		products: memory.NewProductStore(),
		matches:  memory.NewMatchStore(),
		sales:    memory.NewSaleStore(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.seeder = demo.NewSeeder(f.listings, f.products, f.matches, f.sales, logger)
	return f
}

func TestLoadSeedsFullDataset(t *testing.T) {
	f := newSeederFixture()
	ctx := context.Background()

	res, err := f.seeder.Load(ctx, "owner-1", false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Products)
	assert.Equal(t, 3, res.Listings)
	assert.Equal(t, 15, res.ObservedSales)

	listings, err := f.listings.ListRecent(ctx, "owner-1", domain.ListingFilter{IncludeDemo: true})
	require.NoError(t, err)
	require.Len(t, listings, 3)
	for _, l := range listings {
		assert.True(t, l.IsDemo)
		assert.Equal(t, "EUR", l.Currency)

		match, err := f.matches.GetByListing(ctx, "owner-1", l.ID)
		require.NoError(t, err)
		assert.Equal(t, 1.0, match.Confidence)
		assert.Equal(t, domain.MatchMethodDemo, match.Method)
	}

	p, err := f.products.GetByCanonicalName(ctx, "owner-1", "Sony WH-1000XM4")
	require.NoError(t, err)
	assert.Equal(t, domain.LiquidityMedium, p.LiquidityClass)
	assert.True(t, p.IsDemo)

	lego, err := f.products.GetByCanonicalName(ctx, "owner-1", "LEGO 75257 Millennium Falcon")
	require.NoError(t, err)
	assert.Equal(t, domain.LiquidityLow, lego.LiquidityClass)

	sales, err := f.sales.ListRecent(ctx, "owner-1", domain.SaleFilter{
		ProductID:   p.ID,
		Platform:    domain.PlatformEbay,
		IncludeDemo: true,
	})
	require.NoError(t, err)
	require.Len(t, sales, 5)
	// Newest sale carries the first configured price.
	assert.Equal(t, 179.0, sales[0].SoldPrice)
}

func TestLoadRefusesRealData(t *testing.T) {
	f := newSeederFixture()
	ctx := context.Background()

	_, err := f.listings.Upsert(ctx, domain.Listing{
		UserID:   "owner-1",
		Platform: domain.PlatformWallapop,
		URL:      "https://wallapop.example/real-1",
		Title:    "Nintendo Switch OLED",
		Price:    210,
		Currency: "EUR",
	})
	require.NoError(t, err)

	_, err = f.seeder.Load(ctx, "owner-1", false)
	require.ErrorIs(t, err, domain.ErrDemoConflict)

	// force overrides the conflict check.
	res, err := f.seeder.Load(ctx, "owner-1", true)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Listings)
}

func TestLoadIsRerunSafe(t *testing.T) {
	f := newSeederFixture()
	ctx := context.Background()

	_, err := f.seeder.Load(ctx, "owner-1", false)
	require.NoError(t, err)
	res, err := f.seeder.Load(ctx, "owner-1", false)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Products)

	// Listings are keyed on (user, platform, url) and get reused, not
	// duplicated.
	listings, err := f.listings.ListRecent(ctx, "owner-1", domain.ListingFilter{IncludeDemo: true})
	require.NoError(t, err)
	assert.Len(t, listings, 3)
}

func TestLoadScopesToOwner(t *testing.T) {
	f := newSeederFixture()
	ctx := context.Background()

	_, err := f.seeder.Load(ctx, "owner-1", false)
	require.NoError(t, err)

	listings, err := f.listings.ListRecent(ctx, "owner-2", domain.ListingFilter{IncludeDemo: true})
	require.NoError(t, err)
	assert.Empty(t, listings)
}
