package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davidalvarezc/flipradar/internal/engine"
)

func TestScore_Bounds(t *testing.T) {
	cases := []struct {
		name      string
		netMargin float64
		roi       float64
		days      int
	}{
		{"all zero", 0, 0, 0},
		{"deep loss", -500, -2, 90},
		{"huge win", 10000, 5, 0},
		{"typical", 46.4, 0.42, 30},
		{"slow mover", 25, 0.15, 120},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := engine.Score(tc.netMargin, tc.roi, tc.days)
			assert.GreaterOrEqual(t, s.ProfitScore, 0.0)
			assert.GreaterOrEqual(t, s.LiquidityScore, 0.0)
			assert.Equal(t, engine.DemandScore, s.DemandScore)
			assert.GreaterOrEqual(t, s.TotalScore, engine.DemandScore)
			assert.LessOrEqual(t, s.TotalScore, 87.5)
		})
	}
}

func TestScore_MaxAttainable(t *testing.T) {
	s := engine.Score(1000, 1.0, 0)
	assert.InDelta(t, 87.5, s.TotalScore, 1e-9)
}

func TestScore_LiquidityComponent(t *testing.T) {
	// liquidity_days_low = 45 -> clamp(1 - 45/60, 0, 1) * 25 = 6.25
	s := engine.Score(0, 0, 45)
	assert.InDelta(t, 6.25, s.LiquidityScore, 1e-9)

	// at or beyond the 60-day horizon liquidity contributes nothing
	assert.Zero(t, engine.Score(0, 0, 60).LiquidityScore)
	assert.Zero(t, engine.Score(0, 0, 200).LiquidityScore)

	// instant sale earns the full 25 points
	assert.InDelta(t, 25.0, engine.Score(0, 0, 0).LiquidityScore, 1e-9)
}

func TestScore_ProfitWeights(t *testing.T) {
	// margin saturates at 100 EUR (30 pts), ROI at 0.40 (20 pts)
	s := engine.Score(50, 0.20, 60)
	assert.InDelta(t, 0.5*30+0.5*20, s.ProfitScore, 1e-9)

	s = engine.Score(300, 2.0, 60)
	assert.InDelta(t, 50.0, s.ProfitScore, 1e-9)
}
