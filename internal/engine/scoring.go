package engine

// Score component parameters. Profitability contributes up to 50 points
// (margin and ROI weighted 30/20), liquidity up to 25 over a 60-day
// horizon, and demand a fixed placeholder of 12.5 pending a real demand
// estimator. The maximum attainable total is therefore 87.5 even though
// callers sort it on a 0-100-like scale.
const (
	marginScaleEUR   = 100.0
	roiScale         = 0.40
	marginWeight     = 30.0
	roiWeight        = 20.0
	liquidityHorizon = 60.0
	liquidityWeight  = 25.0

	// DemandScore is constant in the current model; callers must not assume
	// it varies.
	DemandScore = 12.5
)

// ScoreResult is the component breakdown of a composite opportunity score.
type ScoreResult struct {
	ProfitScore    float64
	LiquidityScore float64
	DemandScore    float64
	TotalScore     float64
}

// Score combines profitability and liquidity signals into a bounded
// composite. All components are non-negative; TotalScore lies in
// [DemandScore, 87.5] for any inputs.
func Score(netMargin, roi float64, estDaysToSell int) ScoreResult {
	profit := clamp(netMargin/marginScaleEUR, 0, 1)*marginWeight +
		clamp(roi/roiScale, 0, 1)*roiWeight

	liquidity := clamp(1.0-float64(estDaysToSell)/liquidityHorizon, 0, 1) * liquidityWeight

	return ScoreResult{
		ProfitScore:    profit,
		LiquidityScore: liquidity,
		DemandScore:    DemandScore,
		TotalScore:     profit + liquidity + DemandScore,
	}
}
