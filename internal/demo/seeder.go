// Package demo seeds a small, self-consistent sample dataset so a fresh
// account can run a refresh pass and see scored opportunities immediately.
package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// Seeder loads demo products, listings, and sale evidence for one owner.
// Demo rows are flagged so the engine can exclude them by default, and the
// loader refuses to mix demo data into an account that already holds real
// listings unless forced.
type Seeder struct {
	listings domain.ListingStore
	products domain.ProductStore
	matches  domain.MatchStore
	sales    domain.ObservedSaleStore
	logger   *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewSeeder creates a Seeder over the given stores.
func NewSeeder(
	listings domain.ListingStore,
	products domain.ProductStore,
	matches domain.MatchStore,
	sales domain.ObservedSaleStore,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		listings: listings,
		products: products,
		matches:  matches,
		sales:    sales,
		logger:   logger,
		now:      time.Now,
	}
}

// Result counts the rows the seeder inserted.
type Result struct {
	Products      int `json:"products"`
	Listings      int `json:"listings"`
	ObservedSales int `json:"observed_sales"`
}

type demoProduct struct {
	name      string
	category  string
	liquidity domain.LiquidityClass
}

type demoListing struct {
	platform  domain.Platform
	url       string
	title     string
	price     float64
	shipping  float64
	category  string
	condition domain.Condition
	product   int // index into demoProducts
}

var demoProducts = []demoProduct{
	{"Sony WH-1000XM4", "headphones", domain.LiquidityMedium},
	{"Apple AirPods Pro 2", "headphones", domain.LiquidityMedium},
	{"LEGO 75257 Millennium Falcon", "collectibles", domain.LiquidityLow},
}

var demoListings = []demoListing{
	{domain.PlatformWallapop, "https://example.com/wallapop-xm4", "Sony WH-1000XM4 como nuevos", 120, 6, "headphones", domain.ConditionLikeNew, 0},
	{domain.PlatformVinted, "https://example.com/vinted-airpods", "AirPods Pro 2", 140, 5, "headphones", domain.ConditionGood, 1},
	{domain.PlatformWallapop, "https://example.com/wallapop-lego", "LEGO 75257 Millennium Falcon", 85, 7, "collectibles", domain.ConditionGood, 2},
}

// demoSales holds completed ebay prices per product, newest first, spaced two
// days apart.
var demoSales = [][]float64{
	{179, 185, 189, 199, 205},
	{185, 195, 199, 210, 215},
	{135, 140, 145, 150, 160},
}

// Load inserts the demo dataset for userID. Returns ErrDemoConflict when the
// owner already has real listings and force is false. Re-running is safe:
// products and listings are keyed on their natural uniqueness and reused.
func (s *Seeder) Load(ctx context.Context, userID string, force bool) (Result, error) {
	hasReal, err := s.listings.HasReal(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("demo: check real listings: %w", err)
	}
	if hasReal && !force {
		return Result{}, domain.ErrDemoConflict
	}

	productIDs := make([]string, len(demoProducts))
	for i, dp := range demoProducts {
		id, err := s.ensureProduct(ctx, userID, dp)
		if err != nil {
			return Result{}, err
		}
		productIDs[i] = id
	}

	for _, dl := range demoListings {
		shipping := dl.shipping
		listing, err := s.listings.Upsert(ctx, domain.Listing{
			UserID:        userID,
			Platform:      dl.platform,
			URL:           dl.url,
			Title:         dl.title,
			Price:         dl.price,
			Currency:      "EUR",
			ShippingPrice: &shipping,
			Category:      dl.category,
			Condition:     dl.condition,
			IsDemo:        true,
		})
		if err != nil {
			return Result{}, fmt.Errorf("demo: upsert listing %s: %w", dl.url, err)
		}

		match := domain.ListingProductMatch{
			ListingID:  listing.ID,
			ProductID:  productIDs[dl.product],
			UserID:     userID,
			Confidence: domain.MatchConfidenceManual,
			Method:     domain.MatchMethodDemo,
		}
		if err := s.matches.Upsert(ctx, match); err != nil {
			return Result{}, fmt.Errorf("demo: upsert match for %s: %w", listing.ID, err)
		}
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	salesInserted := 0
	for i, prices := range demoSales {
		for j, price := range prices {
			_, err := s.sales.Insert(ctx, domain.ObservedSale{
				UserID:    userID,
				Platform:  domain.PlatformEbay,
				ProductID: productIDs[i],
				SoldPrice: price,
				SoldAt:    today.AddDate(0, 0, -2*j),
				Condition: domain.ConditionGood,
				IsDemo:    true,
			})
			if err != nil {
				return Result{}, fmt.Errorf("demo: insert sale: %w", err)
			}
			salesInserted++
		}
	}

	res := Result{
		Products:      len(demoProducts),
		Listings:      len(demoListings),
		ObservedSales: salesInserted,
	}
	s.logger.Info("demo data loaded",
		slog.String("user_id", userID),
		slog.Int("products", res.Products),
		slog.Int("listings", res.Listings),
		slog.Int("observed_sales", res.ObservedSales),
	)
	return res, nil
}

// ensureProduct returns the existing product ID for the canonical name or
// inserts a fresh demo product.
func (s *Seeder) ensureProduct(ctx context.Context, userID string, dp demoProduct) (string, error) {
	existing, err := s.products.GetByCanonicalName(ctx, userID, dp.name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("demo: lookup product %q: %w", dp.name, err)
	}

	created, err := s.products.Insert(ctx, domain.Product{
		UserID:         userID,
		CanonicalName:  dp.name,
		Category:       dp.category,
		Aliases:        []string{},
		LiquidityClass: dp.liquidity,
		IsDemo:         true,
	})
	if err != nil {
		return "", fmt.Errorf("demo: insert product %q: %w", dp.name, err)
	}
	return created.ID, nil
}
