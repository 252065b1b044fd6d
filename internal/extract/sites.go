package extract

import "jobmate/aggregator-service/internal/model"

// SiteRuleTable maps each site to its field rules.
type SiteRuleTable map[model.SiteIdentifier]FieldRuleSet

// DefaultSiteRules returns the compiled-in rule table. Site markup changes
// are handled by editing this table, not by runtime configuration.
// Sites served by placeholder listings have an empty rule set.
func DefaultSiteRules() SiteRuleTable {
	return SiteRuleTable{
		model.SiteGlassdoor: {},
		model.SiteIndeed:    {},
		model.SiteLinkedIn: {
			FieldMaster: {
				{Pre: "base-search-card base-search-card--link job-search-card", Post: "</time>", KeepPost: true},
			},
			FieldTitle: {
				{Pre: `<span class="sr-only">`, Post: "</span>"},
			},
			FieldCompany: {
				{Pre: `trk=public_jobs_jserp-result_job-search-card-subtitle">`, Post: "</a>"},
			},
			FieldJobsiteID: {
				{Pre: `data-entity-urn="urn:li:jobPosting:`, Post: `" `},
			},
			FieldLocation: {
				{Pre: `<span class="job-search-card__location">`, Post: "</span>"},
			},
			FieldPostDateTime: {
				{Pre: `datetime="`, Post: "</time>"},
			},
			FieldLinkToJobListing: {
				{Pre: `href="`, Post: `" `},
			},
		},
		model.SiteBuiltIn: {
			FieldMaster: {
				{Pre: `data-id="job-card"`, Post: ">Top Skills:<"},
			},
			FieldTitle: {
				{Pre: `class="card-alias-after-overlay text-break">`, Post: "</a>"},
			},
			FieldCompany: {
				{Pre: `class="font-barlow fw-medium fs-xl d-inline-block m-0 text-pretty-blue hover-underline cursor-pointer z-1"><span>`, Post: "</span>"},
			},
			FieldJobsiteID: {
				{Pre: `entity-id="`, Post: `" `},
			},
			FieldLocation: {
				{Pre: `<span class="font-barlow text-gray-04">`, Post: "</span>"},
			},
			FieldPostDateTime: {
				{Pre: `class="fa-regular fa-clock fs-xs text-gray-03 d-inline-block me-sm d-lg-none d-xl-inline-block"></i>`, Post: "</span>"},
			},
			FieldLinkToJobListing: {
				{Pre: "https://builtin.com/job/", Post: `" `, KeepPre: true},
			},
		},
		model.SiteDice: {
			FieldMaster: {
				{Pre: `<div class="box mr-2 inline-flex h-6 items-center justify-center rounded bg-zinc-100 px-2 " aria-labelledby="employmentType-label">`, Post: "</p></div></span>"},
			},
			FieldTitle: {
				{Pre: `data-rac="" data-testid="job-search-job-detail-link" aria-label="`, Post: `" `},
			},
			FieldCompany: {
				{Pre: "companyname=", Post: `"`},
				{Pre: `data-testid="job-card-company-name">`, Post: "</p></span>"},
			},
			FieldJobsiteID: {
				{Pre: `data-id="`, Post: `"`},
			},
			FieldLocation: {
				{Pre: `<div class="inline-flex flex-col items-center justify-start gap-2.5"><div class="inline-flex items-center justify-start gap-1.5"><p class="text-sm font-normal text-zinc-600">`, Post: "</p>"},
			},
			FieldPostDateTime: {
				{Pre: `<div class="flex items-center justify-center gap-2.5"><p class="text-sm font-normal text-zinc-600">`, Post: "</p>"},
			},
			FieldLinkToJobListing: {
				{Pre: "https://www.dice.com/", Post: `" `, KeepPre: true},
			},
		},
	}
}
