package scraper

import (
	"strconv"
	"strings"

	"jobmate/aggregator-service/internal/model"
)

// urlTemplates are compiled in; {placeholders} are filled from the request.
// Each site has its own convention for encoding spaces.
var urlTemplates = map[model.SiteIdentifier]string{
	model.SiteLinkedIn: "https://www.linkedin.com/jobs/search/?distance={radius}&f_E=2%2C3&f_TPR=r86400" +
		"&geoId={geoId}&keywords={terms%20}&origin=JOB_SEARCH_PAGE_JOB_FILTER",
	model.SiteBuiltIn: "https://builtin.com/jobs/remote/hybrid/office/{category}/entry-level?search={terms%20}" +
		"&daysSinceUpdated=1&city={city%20}&state={state%20}&country={alpha3}",
	model.SiteDice: "https://www.dice.com/platform/jobs?filters.postedDate=ONE&filters.employmentType=FULLTIME" +
		"&filters.employerType=Direct+Hire&filters.workplaceTypes=Remote%7COn-Site%7CHybrid&radius={radius}" +
		"&countryCode={alpha2}&latitude={latitude}&location={city+}%2C+{stateAbbrev}%2C+{alpha3}" +
		"&locationPrecision=City&longitude={longitude}&q={terms+}&radiusUnit=mi",
	model.SiteIndeed: "https://www.indeed.com/jobs?q={terms+}&l={cityLower+}%2C+{stateAbbrevLower}" +
		"&sc=0kf%3Aexplvl%28ENTRY_LEVEL%29%3B&fromage=1&vjk=53ed07a6128717ad",
	model.SiteGlassdoor: "https://www.glassdoor.com/Job/{cityLower-}-{stateAbbrevLower-}-{terms-}" +
		"-jobs-SRCH_IL.0,14_IC1142551_KO15,33.htm?maxSalary={maxSalary}&minSalary={minSalary}&fromAge=7",
}

// BuildURLs fills every concrete site's template from req.
func BuildURLs(req *model.RequestSpecification, region Region) map[model.SiteIdentifier]string {
	spaces := func(s, with string) string { return strings.ReplaceAll(s, " ", with) }
	lower := strings.ToLower

	r := strings.NewReplacer(
		"{radius}", strconv.Itoa(req.Radius),
		"{geoId}", req.GeoID,
		"{category}", req.BuiltInJobCategory,
		"{terms%20}", spaces(req.SearchTerms, "%20"),
		"{terms+}", spaces(req.SearchTerms, "+"),
		"{terms-}", spaces(req.SearchTerms, "-"),
		"{city%20}", spaces(req.City, "%20"),
		"{city+}", spaces(req.City, "+"),
		"{cityLower+}", spaces(lower(req.City), "+"),
		"{cityLower-}", spaces(lower(req.City), "-"),
		"{state%20}", spaces(req.State, "%20"),
		"{stateAbbrev}", req.StateAbbrev,
		"{stateAbbrevLower}", lower(req.StateAbbrev),
		"{stateAbbrevLower-}", spaces(lower(req.StateAbbrev), "-"),
		"{alpha2}", region.Alpha2,
		"{alpha3}", region.Alpha3,
		"{latitude}", strconv.FormatFloat(req.Latitude, 'f', -1, 64),
		"{longitude}", strconv.FormatFloat(req.Longitude, 'f', -1, 64),
		"{maxSalary}", strconv.Itoa(req.MaxSalary),
		"{minSalary}", strconv.Itoa(req.MinSalary),
	)

	urls := make(map[model.SiteIdentifier]string, len(urlTemplates))
	for site, tmpl := range urlTemplates {
		urls[site] = r.Replace(tmpl)
	}
	return urls
}
