package scraper

import (
	"strings"

	"golang.org/x/text/language"
)

// Region carries the country codes some site URLs need.
type Region struct {
	Alpha2 string // ISO 3166-1 alpha-2, e.g. "US"
	Alpha3 string // ISO 3166-1 alpha-3, e.g. "USA"
}

// DefaultRegion is used when a request has no usable culture tag.
var DefaultRegion = Region{Alpha2: "US", Alpha3: "USA"}

// ResolveRegion derives the country of a BCP 47 culture tag such as
// "en-GB". Missing, invalid or region-less tags yield DefaultRegion.
func ResolveRegion(cultureTag string) Region {
	cultureTag = strings.TrimSpace(cultureTag)
	if cultureTag == "" {
		return DefaultRegion
	}
	tag, err := language.Parse(cultureTag)
	if err != nil {
		return DefaultRegion
	}
	region, confidence := tag.Region()
	if confidence == language.No || !region.IsCountry() {
		return DefaultRegion
	}
	alpha3 := region.ISO3()
	if alpha3 == "" || alpha3 == "ZZZ" {
		return DefaultRegion
	}
	return Region{Alpha2: region.String(), Alpha3: alpha3}
}
