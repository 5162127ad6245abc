package domain

// Platform identifies a supported resale marketplace.
type Platform string

const (
	PlatformWallapop Platform = "wallapop"
	PlatformVinted   Platform = "vinted"
	PlatformEbay     Platform = "ebay"
	PlatformCatawiki Platform = "catawiki"
	PlatformMiravia  Platform = "miravia"
)

// Platforms lists every supported marketplace.
var Platforms = []Platform{
	PlatformWallapop,
	PlatformVinted,
	PlatformEbay,
	PlatformCatawiki,
	PlatformMiravia,
}

// Valid reports whether p is one of the supported marketplaces.
func (p Platform) Valid() bool {
	switch p {
	case PlatformWallapop, PlatformVinted, PlatformEbay, PlatformCatawiki, PlatformMiravia:
		return true
	}
	return false
}

// Condition describes the physical state of a listed item.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like_new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionUnknown Condition = "unknown"
)

// Valid reports whether c is a known condition value.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionUnknown:
		return true
	}
	return false
}
