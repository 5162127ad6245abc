package engine

// breakevenSentinel is returned when proportional costs consume so much of
// the sell price that no finite breakeven exists in practice.
const (
	breakevenSentinel = 999999.0
	breakevenMinDenom = 0.05
)

// CostInputs are the parameters of one cost-model evaluation for a single
// (listing, sell platform) candidate.
type CostInputs struct {
	Invested       float64
	SellPrice      float64
	SellFeePercent float64
	SellFeeFixed   float64
	ShippingSell   float64
	Packaging      float64
	TaxRate        float64
	TaxEnabled     bool
	RiskBuffer     float64
}

// CostResult is the outcome of applying the cost model.
type CostResult struct {
	NetMargin          float64
	ROI                float64
	BreakevenSellPrice float64
}

// Invested computes the buy-side invested cost: price plus proportional and
// fixed buy fees plus buy shipping.
func Invested(buyPrice, feePercent, feeFixed, shipping float64) float64 {
	return buyPrice + buyPrice*feePercent + feeFixed + shipping
}

// EvaluateCosts applies platform fees, shipping, packaging, tax, and the
// risk buffer to derive net margin, ROI, and the breakeven sell price.
//
// ROI is defined as net_margin / invested; a zero or negative invested cost
// is an expected degenerate input and yields ROI 0 rather than an error.
func EvaluateCosts(in CostInputs) CostResult {
	feeSell := in.SellPrice*in.SellFeePercent + in.SellFeeFixed

	tax := 0.0
	if in.TaxEnabled {
		tax = in.SellPrice * in.TaxRate
	}
	risk := in.SellPrice * in.RiskBuffer

	netMargin := in.SellPrice - feeSell - in.ShippingSell - in.Packaging - tax - risk - in.Invested

	roi := 0.0
	if in.Invested > 0 {
		roi = netMargin / in.Invested
	}

	return CostResult{
		NetMargin:          netMargin,
		ROI:                roi,
		BreakevenSellPrice: Breakeven(in),
	}
}

// Breakeven solves for the sell price at which net margin is zero under
// proportional costs, adding fixed costs post-hoc rather than solving the
// exact fixed+proportional equation. When the proportional costs consume 95%
// or more of revenue it returns a large sentinel instead of a near-infinite
// or negative price.
func Breakeven(in CostInputs) float64 {
	pct := in.SellFeePercent + in.RiskBuffer
	if in.TaxEnabled {
		pct += in.TaxRate
	}
	denom := 1.0 - pct
	if denom <= breakevenMinDenom {
		return breakevenSentinel
	}
	return (in.Invested + in.SellFeeFixed + in.ShippingSell + in.Packaging) / denom
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
