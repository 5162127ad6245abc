package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// RefreshRequest parameterizes one refresh pass.
type RefreshRequest struct {
	PlatformsBuy  []domain.Platform
	PlatformsSell []domain.Platform
	MinROI        float64
	MinNetMargin  float64
	Limit         int
	IncludeDemo   bool
}

// RefreshResult summarizes a completed refresh pass. Updated counts rows
// written, not candidates considered.
type RefreshResult struct {
	Updated    int
	Considered int
	Skipped    int
}

// Refresh re-evaluates the owner's eligible listings against every requested
// sell platform and upserts the surviving opportunities.
//
// Missing owner settings abort the whole refresh; it is a configuration
// error, not a retryable one. A listing whose matched product has vanished
// is reported and skipped, since that inconsistency is local to the record.
// Any other store failure is fatal for the pass. Candidates below the margin
// or ROI thresholds are dropped without a write, so a persisted opportunity
// always satisfies the thresholds of the request that produced it.
func (e *Engine) Refresh(ctx context.Context, userID string, req RefreshRequest) (RefreshResult, error) {
	settings, err := e.stores.Settings.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrSettingsNotFound) {
			return RefreshResult{}, fmt.Errorf("engine: refresh for user %s: %w", userID, domain.ErrSettingsNotFound)
		}
		return RefreshResult{}, fmt.Errorf("engine: load settings: %w", err)
	}

	feeRows, err := e.stores.Fees.ListByUser(ctx, userID)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("engine: load platform fees: %w", err)
	}
	fees := domain.NewFeeTable(feeRows)

	listings, err := e.stores.Listings.ListRecent(ctx, userID, domain.ListingFilter{
		Platforms:   req.PlatformsBuy,
		IncludeDemo: req.IncludeDemo,
		Limit:       req.Limit,
	})
	if err != nil {
		return RefreshResult{}, fmt.Errorf("engine: load listings: %w", err)
	}

	var res RefreshResult
	for _, l := range listings {
		product, err := e.ResolveProduct(ctx, l)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				e.logger.WarnContext(ctx, "skipping listing with dangling product match",
					slog.String("listing_id", l.ID),
					slog.String("error", err.Error()),
				)
				res.Skipped++
				continue
			}
			return res, err
		}

		estDays := settings.DaysToSell(product.LiquidityClass)

		shipBuy := 0.0
		if l.ShippingPrice != nil {
			shipBuy = *l.ShippingPrice
		}
		feeBuy := fees.For(l.Platform)
		invested := Invested(l.Price, feeBuy.FeePercent, feeBuy.FeeFixed, shipBuy)

		for _, sellPlat := range req.PlatformsSell {
			est, err := e.EstimateSellPrice(ctx, userID, product.ID, sellPlat, l.Price, req.IncludeDemo)
			if err != nil {
				return res, err
			}

			feeSell := fees.For(sellPlat)
			costs := EvaluateCosts(CostInputs{
				Invested:       invested,
				SellPrice:      est.Price,
				SellFeePercent: feeSell.FeePercent,
				SellFeeFixed:   feeSell.FeeFixed,
				ShippingSell:   0,
				Packaging:      settings.PackagingCost,
				TaxRate:        settings.TaxRate,
				TaxEnabled:     settings.TaxEnabled,
				RiskBuffer:     settings.RiskBuffer,
			})
			score := Score(costs.NetMargin, costs.ROI, estDays)

			res.Considered++
			if costs.NetMargin < req.MinNetMargin || costs.ROI < req.MinROI {
				continue
			}

			opp := domain.Opportunity{
				UserID:             userID,
				BuyListingID:       l.ID,
				SellPlatform:       sellPlat,
				ProductID:          product.ID,
				EstSellPrice:       round2(est.Price),
				NetMargin:          round2(costs.NetMargin),
				ROI:                round4(costs.ROI),
				BreakevenSellPrice: round2(costs.BreakevenSellPrice),
				EstDaysToSell:      estDays,
				DemandScore:        round2(score.DemandScore),
				LiquidityScore:     round2(score.LiquidityScore),
				TotalScore:         round2(score.TotalScore),
				IsDemo:             l.IsDemo,
				UpdatedAt:          time.Now().UTC(),
			}
			if err := e.stores.Opps.Upsert(ctx, opp); err != nil {
				return res, fmt.Errorf("engine: upsert opportunity for listing %s on %s: %w", l.ID, sellPlat, err)
			}
			res.Updated++

			e.publish(ctx, domain.ChannelOpportunities, opportunityEvent{
				BuyListingID: l.ID,
				SellPlatform: string(sellPlat),
				ProductID:    product.ID,
				NetMargin:    opp.NetMargin,
				ROI:          opp.ROI,
				TotalScore:   opp.TotalScore,
				Basis:        string(est.Basis),
			})
		}
	}

	e.logger.InfoContext(ctx, "refresh completed",
		slog.String("user_id", userID),
		slog.Int("listings", len(listings)),
		slog.Int("considered", res.Considered),
		slog.Int("updated", res.Updated),
		slog.Int("skipped", res.Skipped),
	)
	e.publish(ctx, domain.ChannelRefresh, refreshEvent{
		UserID:     userID,
		Updated:    res.Updated,
		Considered: res.Considered,
		Skipped:    res.Skipped,
	})

	return res, nil
}

// opportunityEvent is the bus payload for a single upserted opportunity.
type opportunityEvent struct {
	BuyListingID string  `json:"buy_listing_id"`
	SellPlatform string  `json:"sell_platform"`
	ProductID    string  `json:"product_id"`
	NetMargin    float64 `json:"net_margin"`
	ROI          float64 `json:"roi"`
	TotalScore   float64 `json:"total_score"`
	Basis        string  `json:"basis"`
}

// refreshEvent is the bus payload for a completed refresh pass.
type refreshEvent struct {
	UserID     string `json:"user_id"`
	Updated    int    `json:"updated"`
	Considered int    `json:"considered"`
	Skipped    int    `json:"skipped"`
}

// publish delivers a bus event when a bus is attached. Delivery problems are
// logged and otherwise ignored; the refresh result is already durable.
func (e *Engine) publish(ctx context.Context, channel string, payload any) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(ctx, channel, payload); err != nil {
		e.logger.WarnContext(ctx, "bus publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round4(x float64) float64 { return math.Round(x*10000) / 10000 }
