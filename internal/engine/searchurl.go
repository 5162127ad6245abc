package engine

import (
	"net/url"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// SellSearchURL maps a platform and keyword to that marketplace's search URL
// with the keyword percent-encoded. Unknown platforms yield an empty string.
func SellSearchURL(platform domain.Platform, keyword string) string {
	q := url.QueryEscape(keyword)
	switch platform {
	case domain.PlatformEbay:
		return "https://www.ebay.es/sch/i.html?_nkw=" + q
	case domain.PlatformWallapop:
		return "https://es.wallapop.com/app/search?keywords=" + q
	case domain.PlatformVinted:
		return "https://www.vinted.es/catalog?search_text=" + q
	case domain.PlatformCatawiki:
		return "https://www.catawiki.com/es/s?q=" + q
	case domain.PlatformMiravia:
		return "https://www.miravia.es/search?q=" + q
	}
	return ""
}
