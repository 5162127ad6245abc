package domain

import "time"

// Opportunity is a scored (buy listing, sell platform) pairing. Opportunities
// are derived, fully recomputable rows keyed uniquely by
// (user, buy_listing_id, sell_platform): each refresh pass overwrites the
// previous values for the same key, with no retained score history.
type Opportunity struct {
	UserID             string
	BuyListingID       string
	SellPlatform       Platform
	ProductID          string
	EstSellPrice       float64
	NetMargin          float64
	ROI                float64
	BreakevenSellPrice float64
	EstDaysToSell      int
	DemandScore        float64
	LiquidityScore     float64
	TotalScore         float64
	IsDemo             bool
	UpdatedAt          time.Time
}
