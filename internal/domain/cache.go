package domain

import (
	"context"
	"time"
)

// Estimate is a computed sell-price estimate together with its evidence
// basis, so callers can tell an empirical median from the markup fallback.
type Estimate struct {
	Price   float64
	Basis   EstimateBasis
	Samples int
}

// EstimateBasis tags how a sell-price estimate was derived.
type EstimateBasis string

const (
	// EstimateBasisMedian means the price is the median of observed sales.
	EstimateBasisMedian EstimateBasis = "observed_median"
	// EstimateBasisMarkup means too few observations existed and the price
	// is the fixed-markup fallback with no empirical support.
	EstimateBasisMarkup EstimateBasis = "markup_fallback"
)

// EstimateCache caches sell-price estimates per (owner, product, platform).
// Entries are invalidated explicitly when new sale evidence arrives for the
// same key; there is no other write path.
type EstimateCache interface {
	Get(ctx context.Context, userID, productID string, platform Platform) (Estimate, error)
	Set(ctx context.Context, userID, productID string, platform Platform, e Estimate, ttl time.Duration) error
	Invalidate(ctx context.Context, userID, productID string, platform Platform) error
}

// RateLimiter limits request rates per key.
type RateLimiter interface {
	// Allow reports whether a request for key is permitted under the limit,
	// counting the request when it is.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus is a lightweight pub/sub fabric used to push engine events to
// live consumers such as the WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload any) error
	Subscribe(ctx context.Context, channels ...string) (<-chan BusMessage, func(), error)
}

// BusMessage is a single message delivered by the SignalBus.
type BusMessage struct {
	Channel string
	Payload []byte
}

// Bus channels published by the engine.
const (
	ChannelOpportunities = "opportunities"
	ChannelRefresh       = "refresh"
	ChannelListings      = "listings"
)
