// Package model defines shared data structures for the aggregator service.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SiteIdentifier names one scraped job board or a pseudo-site control value.
type SiteIdentifier string

const (
	SiteLinkedIn  SiteIdentifier = "LinkedIn"
	SiteBuiltIn   SiteIdentifier = "BuiltIn"
	SiteDice      SiteIdentifier = "Dice"
	SiteIndeed    SiteIdentifier = "Indeed"
	SiteGlassdoor SiteIdentifier = "Glassdoor"
	SiteDummy     SiteIdentifier = "Dummy"
	SiteAll       SiteIdentifier = "All"
	SiteError     SiteIdentifier = "Error"
)

// AllSites lists every identifier in enumeration order.
var AllSites = []SiteIdentifier{
	SiteLinkedIn, SiteBuiltIn, SiteDice, SiteIndeed, SiteGlassdoor,
	SiteDummy, SiteAll, SiteError,
}

// ConcreteSites returns the real job boards in enumeration order,
// i.e. every identifier except Dummy, All and Error.
func ConcreteSites() []SiteIdentifier {
	out := make([]SiteIdentifier, 0, len(AllSites))
	for _, s := range AllSites {
		if s.IsConcrete() {
			out = append(out, s)
		}
	}
	return out
}

// IsConcrete reports whether s is a real job board.
func (s SiteIdentifier) IsConcrete() bool {
	switch s {
	case SiteLinkedIn, SiteBuiltIn, SiteDice, SiteIndeed, SiteGlassdoor:
		return true
	}
	return false
}

func (s SiteIdentifier) String() string { return string(s) }

// ParseSite resolves a raw source string case-insensitively. Unknown or
// empty values resolve to SiteError.
func ParseSite(raw string) SiteIdentifier {
	raw = strings.TrimSpace(raw)
	for _, s := range AllSites {
		if strings.EqualFold(raw, string(s)) {
			return s
		}
	}
	return SiteError
}

// JobListing is the normalised record returned to the requesting client.
// PostDateTime holds the estimated post time in RFC 3339 text form.
type JobListing struct {
	Title            string `json:"title"`
	Company          string `json:"company"`
	JobsiteID        string `json:"jobsiteId"`
	Location         string `json:"location"`
	PostDateTime     string `json:"postDateTime"`
	LinkToJobListing string `json:"linkToJobListing"`
}

// RequestSpecification mirrors the inbound request payload.
type RequestSpecification struct {
	Source             string    `json:"source"`
	CutoffTime         Timestamp `json:"cutoffTime"`
	IsRemote           bool      `json:"isRemote"`
	Radius             int       `json:"radius"`
	SearchTerms        string    `json:"searchTerms"`
	CultureTag         string    `json:"cultureTag"`
	City               string    `json:"city"`
	State              string    `json:"state"`
	StateAbbrev        string    `json:"stateAbbrev"`
	GeoID              string    `json:"geoId"`
	Latitude           float64   `json:"latitude,omitempty"`
	Longitude          float64   `json:"longitude,omitempty"`
	MaxSalary          int       `json:"maxSalary"`
	MinSalary          int       `json:"minSalary"`
	BuiltInJobCategory string    `json:"builtInJobCategory"`
	CompanyFilterTerms []string  `json:"companyFilterTerms"`
	TitleFilterTerms   []string  `json:"titleFilterTerms"`
}

// Timestamp is a time.Time that also accepts zone-less timestamps on
// decode, interpreted in local time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses s using the accepted layouts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if layout == time.RFC3339Nano {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a JSON string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Time.Format(time.RFC3339Nano) + `"`), nil
}

// StandingSearch is a stored request that the scheduler re-runs.
// DailyStart and DailyEnd are times of day in local time; an interval of
// zero means the search runs once at startup.
type StandingSearch struct {
	ID              string
	Name            string
	IntervalSeconds int
	DailyStart      time.Duration // offset from local midnight
	DailyEnd        time.Duration
	Request         RequestSpecification
}
