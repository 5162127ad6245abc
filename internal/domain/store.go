package domain

import "context"

// ListingFilter narrows listing queries. A nil Platforms slice matches all
// platforms; IncludeDemo false excludes demo rows.
type ListingFilter struct {
	Platforms   []Platform
	IncludeDemo bool
	Limit       int
}

// ListingStore persists imported listings. Every query is scoped to one
// owner; no call may return another owner's rows.
type ListingStore interface {
	// Upsert inserts or overwrites a listing keyed by (user, platform, url)
	// and returns the persisted row with its generated ID.
	Upsert(ctx context.Context, l Listing) (Listing, error)
	GetByID(ctx context.Context, userID, id string) (Listing, error)
	// ListRecent returns the owner's listings most recently imported first.
	ListRecent(ctx context.Context, userID string, f ListingFilter) ([]Listing, error)
	// HasReal reports whether the owner has any non-demo listings.
	HasReal(ctx context.Context, userID string) (bool, error)
}

// ProductStore persists canonical products.
type ProductStore interface {
	// Insert stores a new product and returns it with its generated ID.
	Insert(ctx context.Context, p Product) (Product, error)
	GetByID(ctx context.Context, userID, id string) (Product, error)
	GetByCanonicalName(ctx context.Context, userID, name string) (Product, error)
}

// MatchStore persists listing-product associations, unique per listing.
type MatchStore interface {
	Upsert(ctx context.Context, m ListingProductMatch) error
	GetByListing(ctx context.Context, userID, listingID string) (ListingProductMatch, error)
}

// SaleFilter narrows observed-sale queries.
type SaleFilter struct {
	ProductID   string
	Platform    Platform
	IncludeDemo bool
	Limit       int
}

// ObservedSaleStore persists the append-only sale evidence feed.
type ObservedSaleStore interface {
	// Insert stores a new observed sale and returns it with its generated ID.
	Insert(ctx context.Context, s ObservedSale) (ObservedSale, error)
	// ListRecent returns sales matching the filter, most recently sold first.
	ListRecent(ctx context.Context, userID string, f SaleFilter) ([]ObservedSale, error)
}

// SettingsStore persists per-owner cost parameters.
type SettingsStore interface {
	// Get returns ErrSettingsNotFound when no row exists for the owner.
	Get(ctx context.Context, userID string) (UserSettings, error)
	Upsert(ctx context.Context, s UserSettings) error
}

// FeeStore persists per-owner platform fee schedules.
type FeeStore interface {
	ListByUser(ctx context.Context, userID string) ([]PlatformFee, error)
	// Replace swaps the owner's entire fee schedule for the given rows.
	Replace(ctx context.Context, userID string, fees []PlatformFee) error
}

// OpportunityStore persists scored opportunities. Upsert must be atomic on
// the (user, buy_listing_id, sell_platform) key; concurrent refreshes rely
// on the storage layer's last-write-wins semantics.
type OpportunityStore interface {
	Upsert(ctx context.Context, o Opportunity) error
	// ListByUser returns the owner's opportunities ordered by total score
	// descending.
	ListByUser(ctx context.Context, userID string, includeDemo bool, limit int) ([]Opportunity, error)
}
