// Package scraper turns job-board pages into filtered JobListings and
// answers aggregation requests.
package scraper

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// gracePeriod is added to a listing's estimated post time before it is
// compared with the request cutoff.
const gracePeriod = time.Hour

// ContainsFilteredWord returns true if any term appears in title as a whole
// word (case-insensitive). A term embedded in a longer word does not count:
// "end" does not match "Backend".
func ContainsFilteredWord(title string, terms []string) bool {
	if len(terms) == 0 || title == "" {
		return false
	}
	lowered := strings.ToLower(title)
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if containsWord(lowered, term) {
			return true
		}
	}
	return false
}

// IsFilteredCompany returns true if company equals one of the terms exactly.
func IsFilteredCompany(company string, terms []string) bool {
	for _, t := range terms {
		if t == company {
			return true
		}
	}
	return false
}

// WithinCutoff reports whether a listing posted at posted is recent enough
// for cutoff. The boundary is inclusive.
func WithinCutoff(posted, cutoff time.Time) bool {
	return !posted.Add(gracePeriod).Before(cutoff)
}

func containsWord(s, word string) bool {
	from := 0
	for from <= len(s)-len(word) {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if boundaryBefore(s, start) && boundaryAfter(s, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		from = start + size
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
