package domain

// UserSettings holds the per-owner cost parameters the refresh engine
// applies. A row must exist before a refresh runs; absence is a fatal
// precondition failure for that owner.
type UserSettings struct {
	UserID              string
	PackagingCost       float64
	TaxEnabled          bool
	TaxRate             float64
	RiskBuffer          float64
	LiquidityDaysLow    int
	LiquidityDaysMedium int
	LiquidityDaysHigh   int
}

// DaysToSell returns the estimated days-to-sell for a liquidity class.
// Unknown classes fall back to the medium bucket.
func (s UserSettings) DaysToSell(class LiquidityClass) int {
	switch class {
	case LiquidityHigh:
		return s.LiquidityDaysHigh
	case LiquidityLow:
		return s.LiquidityDaysLow
	default:
		return s.LiquidityDaysMedium
	}
}

// PlatformFee is the per-owner fee schedule for one marketplace. The same
// row applies on whichever side of the trade the platform sits. A missing
// row means zero fees for that platform.
type PlatformFee struct {
	UserID     string
	Platform   Platform
	FeePercent float64
	FeeFixed   float64
}

// FeeTable indexes an owner's fee rows by platform, defaulting to zero fees
// for platforms without a configured row.
type FeeTable map[Platform]PlatformFee

// NewFeeTable builds a FeeTable from the given fee rows.
func NewFeeTable(fees []PlatformFee) FeeTable {
	t := make(FeeTable, len(fees))
	for _, f := range fees {
		t[f.Platform] = f
	}
	return t
}

// For returns the fee schedule for a platform, or a zero-fee schedule when
// none is configured.
func (t FeeTable) For(p Platform) PlatformFee {
	if f, ok := t[p]; ok {
		return f
	}
	return PlatformFee{Platform: p}
}
