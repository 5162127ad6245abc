package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

const (
	// maxSaleSamples bounds how many recent observed sales feed one estimate.
	maxSaleSamples = 50
	// minMedianSamples is the evidence threshold below which the estimator
	// falls back to the fixed markup.
	minMedianSamples = 5
	// fallbackMarkup is applied to the buy price when too few observations
	// exist. Estimates produced this way carry no empirical support and are
	// tagged EstimateBasisMarkup.
	fallbackMarkup = 1.35

	estimateTTL = 15 * time.Minute
)

// EstimateSellPrice derives an expected resale price for a (product, sell
// platform) pair from up to maxSaleSamples most recent observed sales. With
// at least minMedianSamples observations it returns their median; the median
// is used over the mean so a single anomalous sale cannot dominate the
// estimate. Otherwise it returns buyPrice * fallbackMarkup.
func (e *Engine) EstimateSellPrice(ctx context.Context, userID, productID string, sellPlatform domain.Platform, buyPrice float64, includeDemo bool) (domain.Estimate, error) {
	// Demo rows would poison shared cache entries, so only cache the
	// production path.
	cacheable := e.estimates != nil && !includeDemo

	if cacheable {
		est, err := e.estimates.Get(ctx, userID, productID, sellPlatform)
		if err == nil {
			return est, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			e.logger.WarnContext(ctx, "estimate cache read failed",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}

	sales, err := e.stores.Sales.ListRecent(ctx, userID, domain.SaleFilter{
		ProductID:   productID,
		Platform:    sellPlatform,
		IncludeDemo: includeDemo,
		Limit:       maxSaleSamples,
	})
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("engine: list observed sales for product %s: %w", productID, err)
	}

	if len(sales) < minMedianSamples {
		return domain.Estimate{
			Price:   buyPrice * fallbackMarkup,
			Basis:   domain.EstimateBasisMarkup,
			Samples: len(sales),
		}, nil
	}

	prices := make([]float64, len(sales))
	for i, s := range sales {
		prices[i] = s.SoldPrice
	}

	est := domain.Estimate{
		Price:   median(prices),
		Basis:   domain.EstimateBasisMedian,
		Samples: len(sales),
	}

	if cacheable {
		if err := e.estimates.Set(ctx, userID, productID, sellPlatform, est, estimateTTL); err != nil {
			e.logger.WarnContext(ctx, "estimate cache write failed",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}

	return est, nil
}

// median returns the middle value of prices, averaging the two central
// values for even-length input. It sorts a copy; the caller's slice order is
// irrelevant to the result.
func median(prices []float64) float64 {
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
