package domain

import "time"

// Listing is a buy-side item offer imported from a marketplace. Listings are
// upserted on the (user, platform, url) key: re-importing the same URL
// overwrites the previous row.
type Listing struct {
	ID            string
	UserID        string
	Platform      Platform
	URL           string
	Title         string
	Price         float64
	Currency      string
	ShippingPrice *float64 // nil when the listing does not state shipping
	Category      string
	Condition     Condition
	Location      string
	Images        []string
	IsDemo        bool
	ImportedAt    time.Time
}

// Importable reports whether the listing carries the minimum fields the
// refresh engine needs. Listings failing this check are rejected at ingest;
// producing complete records is the scraper's responsibility.
func (l Listing) Importable() bool {
	return l.Title != "" && l.Price > 0 && l.URL != "" && l.Platform.Valid()
}
