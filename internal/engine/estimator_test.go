package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

func seedSales(t *testing.T, ts *testStores, userID, productID string, platform domain.Platform, demo bool, prices ...float64) {
	t.Helper()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		_, err := ts.sales.Insert(context.Background(), domain.ObservedSale{
			UserID:    userID,
			Platform:  platform,
			ProductID: productID,
			SoldPrice: p,
			SoldAt:    base.AddDate(0, 0, -2*i),
			Condition: domain.ConditionGood,
			IsDemo:    demo,
		})
		require.NoError(t, err)
	}
}

func TestEstimateSellPrice_MedianOdd(t *testing.T) {
	e, ts := newTestEngine()
	seedSales(t, ts, "u1", "p1", domain.PlatformEbay, false, 179, 185, 189, 199, 205)

	est, err := e.EstimateSellPrice(context.Background(), "u1", "p1", domain.PlatformEbay, 100, false)
	require.NoError(t, err)
	assert.Equal(t, domain.EstimateBasisMedian, est.Basis)
	assert.Equal(t, 5, est.Samples)
	assert.InDelta(t, 189.0, est.Price, 1e-9)
}

func TestEstimateSellPrice_MedianEven(t *testing.T) {
	e, ts := newTestEngine()
	seedSales(t, ts, "u1", "p1", domain.PlatformEbay, false, 100, 110, 120, 130, 140, 150)

	est, err := e.EstimateSellPrice(context.Background(), "u1", "p1", domain.PlatformEbay, 80, false)
	require.NoError(t, err)
	assert.InDelta(t, 125.0, est.Price, 1e-9)
}

func TestEstimateSellPrice_OrderIndependent(t *testing.T) {
	e1, ts1 := newTestEngine()
	seedSales(t, ts1, "u1", "p1", domain.PlatformEbay, false, 205, 179, 199, 185, 189)

	e2, ts2 := newTestEngine()
	seedSales(t, ts2, "u1", "p1", domain.PlatformEbay, false, 179, 185, 189, 199, 205)

	a, err := e1.EstimateSellPrice(context.Background(), "u1", "p1", domain.PlatformEbay, 100, false)
	require.NoError(t, err)
	b, err := e2.EstimateSellPrice(context.Background(), "u1", "p1", domain.PlatformEbay, 100, false)
	require.NoError(t, err)

	assert.Equal(t, a.Price, b.Price)
}

func TestEstimateSellPrice_MarkupFallback(t *testing.T) {
	e, ts := newTestEngine()
	// 4 samples: one short of the evidence threshold
	seedSales(t, ts, "u1", "p1", domain.PlatformEbay, false, 179, 185, 189, 199)

	est, err := e.EstimateSellPrice(context.Background(), "u1", "p1", domain.PlatformEbay, 100, false)
	require.NoError(t, err)
	assert.Equal(t, domain.EstimateBasisMarkup, est.Basis)
	assert.Equal(t, 4, est.Samples)
	assert.InDelta(t, 135.0, est.Price, 1e-9)
}

func TestEstimateSellPrice_DemoExcludedByDefault(t *testing.T) {
	e, ts := newTestEngine()
	seedSales(t, ts, "u1", "p1", domain.PlatformEbay, true, 179, 185, 189, 199, 205)

	est, err := e.EstimateSellPrice(context.Background(), "u1", "p1", domain.PlatformEbay, 100, false)
	require.NoError(t, err)
	assert.Equal(t, domain.EstimateBasisMarkup, est.Basis, "demo sales must not count as evidence")

	est, err = e.EstimateSellPrice(context.Background(), "u1", "p1", domain.PlatformEbay, 100, true)
	require.NoError(t, err)
	assert.Equal(t, domain.EstimateBasisMedian, est.Basis)
	assert.InDelta(t, 189.0, est.Price, 1e-9)
}

func TestEstimateSellPrice_OtherPlatformIgnored(t *testing.T) {
	e, ts := newTestEngine()
	seedSales(t, ts, "u1", "p1", domain.PlatformWallapop, false, 10, 10, 10, 10, 10)

	est, err := e.EstimateSellPrice(context.Background(), "u1", "p1", domain.PlatformEbay, 100, false)
	require.NoError(t, err)
	assert.Equal(t, domain.EstimateBasisMarkup, est.Basis)
}
