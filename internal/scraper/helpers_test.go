package scraper_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"jobmate/aggregator-service/internal/extract"
	"jobmate/aggregator-service/internal/model"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// fixedRand always returns the same value modulo n.
type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeFetcher) FetchText(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	if body, ok := f.pages[url]; ok {
		return body, nil
	}
	return "", fmt.Errorf("GET %s returned 404", url)
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type recordingPause struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (r *recordingPause) Pause(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauses = append(r.pauses, d)
	return nil
}

type warnSink struct {
	mu    sync.Mutex
	warns []string
}

func (w *warnSink) Warn(msg string, _ ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warns = append(w.warns, msg)
}

func (w *warnSink) Error(string, ...any) {}

// testRules is a compact rule set used in place of real site markup.
func testRules() extract.FieldRuleSet {
	return extract.FieldRuleSet{
		extract.FieldMaster:           {{Pre: `<li class="job">`, Post: "</li>"}},
		extract.FieldTitle:            {{Pre: "<h1>", Post: "</h1>"}},
		extract.FieldCompany:          {{Pre: "<h2>", Post: "</h2>"}},
		extract.FieldJobsiteID:        {{Pre: `data-id="`, Post: `"`}},
		extract.FieldLocation:         {{Pre: `<span class="loc">`, Post: "</span>"}},
		extract.FieldPostDateTime:     {{Pre: "<time>", Post: "</time>"}},
		extract.FieldLinkToJobListing: {{Pre: `href="`, Post: `"`}},
	}
}

func testTable() extract.SiteRuleTable {
	return extract.SiteRuleTable{
		model.SiteLinkedIn:  testRules(),
		model.SiteBuiltIn:   testRules(),
		model.SiteDice:      testRules(),
		model.SiteIndeed:    {},
		model.SiteGlassdoor: {},
	}
}

func listingHTML(id, title, company, posted string) string {
	return fmt.Sprintf(`<li class="job"><a data-id="%s" href="https://jobs.example/%s">`+
		`<h1>%s</h1></a><h2>%s</h2><span class="loc">Remote</span><time>%s</time></li>`,
		id, id, title, company, posted)
}

func pageHTML(pageCount int, listings ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if pageCount > 0 {
		fmt.Fprintf(&b, `<script>{\"pageCount\":%d,\"pageSize\":20}</script>`, pageCount)
	}
	b.WriteString("<ul>")
	for _, l := range listings {
		b.WriteString(l)
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}
