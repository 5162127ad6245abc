package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davidalvarezc/flipradar/internal/domain"
	"github.com/davidalvarezc/flipradar/internal/engine"
)

func TestSellSearchURL(t *testing.T) {
	cases := []struct {
		platform domain.Platform
		keyword  string
		want     string
	}{
		{domain.PlatformEbay, "Sony WH-1000XM4", "https://www.ebay.es/sch/i.html?_nkw=Sony+WH-1000XM4"},
		{domain.PlatformWallapop, "airpods pro", "https://es.wallapop.com/app/search?keywords=airpods+pro"},
		{domain.PlatformVinted, "lego 75257", "https://www.vinted.es/catalog?search_text=lego+75257"},
		{domain.PlatformCatawiki, "reloj", "https://www.catawiki.com/es/s?q=reloj"},
		{domain.PlatformMiravia, "funko", "https://www.miravia.es/search?q=funko"},
		{domain.Platform("amazon"), "whatever", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, engine.SellSearchURL(tc.platform, tc.keyword), string(tc.platform))
	}
}

func TestSellSearchURL_EscapesSpecials(t *testing.T) {
	got := engine.SellSearchURL(domain.PlatformEbay, "a&b=c?")
	assert.Equal(t, "https://www.ebay.es/sch/i.html?_nkw=a%26b%3Dc%3F", got)
}
