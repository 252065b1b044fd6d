package scraper

import (
	"strings"
	"time"

	"jobmate/aggregator-service/internal/model"
)

// vagueOffsets is checked in order; the first keyword found wins. The
// number in front of the keyword is ignored on purpose: "5 hours ago" and
// "1 hour ago" both estimate one hour.
var vagueOffsets = []struct {
	keyword string
	offset  time.Duration
}{
	{"hour", time.Hour},
	{"minute", time.Minute},
	{"today", 0},
	{"day", 24 * time.Hour},
	{"week", 168 * time.Hour},
	{"month", 720 * time.Hour},
	{"year", 8760 * time.Hour},
}

// EstimatePostTime converts relative text such as "3 days ago" into an
// absolute time before now. Text without a keyword is tried as a
// timestamp, and failing that is treated as posted now.
func EstimatePostTime(text string, now time.Time) time.Time {
	lowered := strings.ToLower(text)
	for _, v := range vagueOffsets {
		if strings.Contains(lowered, v.keyword) {
			return now.Add(-v.offset)
		}
	}
	if t, err := model.ParseTimestamp(strings.TrimSpace(text)); err == nil {
		return t
	}
	return now
}
