package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidalvarezc/flipradar/internal/engine"
)

func TestInvested(t *testing.T) {
	// buy 100 at 5% fee, no fixed fee, 5 shipping
	assert.InDelta(t, 110.0, engine.Invested(100, 0.05, 0, 5), 1e-9)
	assert.InDelta(t, 100.0, engine.Invested(100, 0, 0, 0), 1e-9)
	assert.InDelta(t, 108.5, engine.Invested(100, 0.05, 1.5, 2), 1e-9)
}

func TestEvaluateCosts_WorkedExample(t *testing.T) {
	// invested = 100 + 100*0.05 + 0 + 5 = 110; sell at 180 with 10% fee,
	// packaging 2, tax disabled, risk buffer 2%.
	res := engine.EvaluateCosts(engine.CostInputs{
		Invested:       engine.Invested(100, 0.05, 0, 5),
		SellPrice:      180,
		SellFeePercent: 0.10,
		Packaging:      2,
		TaxRate:        0.21,
		TaxEnabled:     false,
		RiskBuffer:     0.02,
	})

	require.InDelta(t, 46.4, res.NetMargin, 1e-9)
	require.InDelta(t, 46.4/110.0, res.ROI, 1e-9)
	// breakeven = (110 + 2) / (1 - 0.10 - 0.02)
	require.InDelta(t, 112.0/0.88, res.BreakevenSellPrice, 1e-9)
}

func TestEvaluateCosts_TaxEnabled(t *testing.T) {
	res := engine.EvaluateCosts(engine.CostInputs{
		Invested:   100,
		SellPrice:  200,
		TaxRate:    0.21,
		TaxEnabled: true,
	})
	// 200 - 42 tax - 100 invested
	assert.InDelta(t, 58.0, res.NetMargin, 1e-9)
}

func TestEvaluateCosts_ROIGuard(t *testing.T) {
	for _, invested := range []float64{0, -10} {
		res := engine.EvaluateCosts(engine.CostInputs{
			Invested:  invested,
			SellPrice: 100,
		})
		assert.Zero(t, res.ROI, "invested=%v", invested)
	}

	res := engine.EvaluateCosts(engine.CostInputs{Invested: 50, SellPrice: 100})
	assert.InDelta(t, res.NetMargin/50, res.ROI, 1e-12)
}

func TestBreakeven_Sentinel(t *testing.T) {
	// Proportional costs at or above 95% of revenue: no usable breakeven.
	be := engine.Breakeven(engine.CostInputs{
		Invested:       100,
		SellFeePercent: 0.90,
		RiskBuffer:     0.05,
	})
	assert.Equal(t, 999999.0, be)

	be = engine.Breakeven(engine.CostInputs{
		Invested:       100,
		SellFeePercent: 0.50,
		TaxRate:        0.50,
		TaxEnabled:     true,
	})
	assert.Equal(t, 999999.0, be)
}

func TestBreakeven_MonotoneInProportionalCosts(t *testing.T) {
	base := engine.CostInputs{
		Invested:     120,
		SellFeeFixed: 1,
		ShippingSell: 3,
		Packaging:    2,
		TaxEnabled:   true,
	}

	prev := 0.0
	for fee := 0.0; fee < 0.60; fee += 0.05 {
		in := base
		in.SellFeePercent = fee
		be := engine.Breakeven(in)
		require.GreaterOrEqual(t, be, prev, "fee_percent=%v", fee)
		prev = be
	}

	prev = 0.0
	for tax := 0.0; tax < 0.50; tax += 0.05 {
		in := base
		in.TaxRate = tax
		be := engine.Breakeven(in)
		require.GreaterOrEqual(t, be, prev, "tax_rate=%v", tax)
		prev = be
	}

	prev = 0.0
	for risk := 0.0; risk < 0.30; risk += 0.02 {
		in := base
		in.RiskBuffer = risk
		be := engine.Breakeven(in)
		require.GreaterOrEqual(t, be, prev, "risk_buffer=%v", risk)
		prev = be
	}
}
