package domain

// LiquidityClass is a coarse bucket used to estimate how quickly a product
// sells on the sell side.
type LiquidityClass string

const (
	LiquidityLow    LiquidityClass = "low"
	LiquidityMedium LiquidityClass = "medium"
	LiquidityHigh   LiquidityClass = "high"
)

// CanonicalNameMax bounds the length of a canonical product name derived
// from a listing title.
const CanonicalNameMax = 120

// Product is the canonical item the engine reasons about across platforms.
// Products are created lazily by the resolver and never deleted by it.
type Product struct {
	ID             string
	UserID         string
	CanonicalName  string
	Category       string
	Aliases        []string
	LiquidityClass LiquidityClass
	IsDemo         bool
}

// Match methods recorded on listing-product associations. Auto-title matches
// carry confidence 0.7; demo/manual links carry 1.0. Downstream consumers
// rely on these exact values.
const (
	MatchMethodAutoTitle = "auto_title"
	MatchMethodDemo      = "demo"

	MatchConfidenceAutoTitle = 0.7
	MatchConfidenceManual    = 1.0
)

// ListingProductMatch associates a listing with its canonical product.
// At most one match exists per listing; upserting replaces the previous one.
type ListingProductMatch struct {
	ListingID  string
	ProductID  string
	UserID     string
	Confidence float64
	Method     string
}

// CanonicalName derives the canonical product name from a listing title by
// truncating it to CanonicalNameMax characters. Exact-prefix collision is the
// only consolidation mechanism; no fuzzy matching is performed.
func CanonicalName(title string) string {
	runes := []rune(title)
	if len(runes) > CanonicalNameMax {
		return string(runes[:CanonicalNameMax])
	}
	return title
}
