package domain

import "time"

// ObservedSale is a historical completed-sale price data point. Sales are an
// append-only evidence feed ingested externally; the refresh engine only
// reads them.
type ObservedSale struct {
	ID        string
	UserID    string
	Platform  Platform
	ProductID string // empty when the sale could not be tied to a product
	SoldPrice float64
	SoldAt    time.Time
	Condition Condition
	URL       string
	Notes     string
	IsDemo    bool
}
