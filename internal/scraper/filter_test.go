package scraper_test

import (
	"testing"
	"time"

	"jobmate/aggregator-service/internal/scraper"
)

// ── ContainsFilteredWord ──────────────────────────────────────────────────

func TestContainsFilteredWord_WholeWordOnly(t *testing.T) {
	cases := []struct {
		title string
		terms []string
		want  bool
	}{
		{"Backend Engineer", []string{"end"}, false},
		{"Backend Engineer", []string{"Backend"}, true},
		{"Backend Engineer", []string{"backend"}, true},
		{"Senior Go Developer", []string{"senior"}, true},
		{"Seniority-free Go Developer", []string{"senior"}, false},
		{"Sr. Engineer (Lead)", []string{"lead"}, true},
		{"C++ Developer", []string{"C++"}, true},
		{"Engineer II", []string{"I"}, false},
		{"Engineer I", []string{"I"}, true},
		{"Go Developer", []string{"", "  "}, false},
		{"Go Developer", nil, false},
		{"", []string{"go"}, false},
		{"Staff Engineer, Platform", []string{"Manager", "Staff"}, true},
		{"Data Engineer", []string{"data engineer"}, true},
		{"Big Data Engineering", []string{"data engineer"}, false},
	}
	for _, c := range cases {
		if got := scraper.ContainsFilteredWord(c.title, c.terms); got != c.want {
			t.Errorf("ContainsFilteredWord(%q, %q) = %v, want %v", c.title, c.terms, got, c.want)
		}
	}
}

// ── IsFilteredCompany ─────────────────────────────────────────────────────

func TestIsFilteredCompany_ExactMatch(t *testing.T) {
	terms := []string{"Acme", "Globex Corp"}
	if !scraper.IsFilteredCompany("Acme", terms) {
		t.Error("exact company name should be filtered")
	}
	if scraper.IsFilteredCompany("Acme Inc", terms) {
		t.Error("longer company name must not be filtered")
	}
	if scraper.IsFilteredCompany("acme", terms) {
		t.Error("company comparison is exact, case included")
	}
	if scraper.IsFilteredCompany("Acme", nil) {
		t.Error("no terms filters nothing")
	}
}

// ── WithinCutoff ──────────────────────────────────────────────────────────

func TestWithinCutoff_GraceBoundary(t *testing.T) {
	cutoff := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if !scraper.WithinCutoff(cutoff.Add(-time.Hour), cutoff) {
		t.Error("posted + grace == cutoff must be included")
	}
	if scraper.WithinCutoff(cutoff.Add(-time.Hour-time.Second), cutoff) {
		t.Error("posted + grace before cutoff must be excluded")
	}
	if !scraper.WithinCutoff(cutoff, cutoff) {
		t.Error("posted at cutoff must be included")
	}
	if !scraper.WithinCutoff(cutoff.Add(-30*time.Minute), time.Time{}) {
		t.Error("zero cutoff includes everything")
	}
}
