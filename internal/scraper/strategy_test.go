package scraper_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/aggregator-service/internal/diag"
	"jobmate/aggregator-service/internal/extract"
	"jobmate/aggregator-service/internal/model"
	"jobmate/aggregator-service/internal/scraper"
)

const searchURL = "https://jobs.example/search?q=go"

func newSingle(f scraper.Fetcher, sink diag.Sink) *scraper.SinglePage {
	parser := extract.NewParser(sink)
	return scraper.NewSinglePage(f, parser, scraper.NewAssembler(parser, fixedRand(3), clock), sink)
}

// ── SinglePage ─────────────────────────────────────────────────────────────

func TestSinglePage_ParsesEveryListing(t *testing.T) {
	f := newFakeFetcher()
	f.pages[searchURL] = pageHTML(0,
		listingHTML("1", "Go Developer", "Acme", "1 hour ago"),
		listingHTML("2", "Rust Developer", "Globex", "2 days ago"),
	)

	got, err := newSingle(f, nil).Collect(context.Background(), scraper.Target{
		Site: model.SiteLinkedIn, URL: searchURL, Rules: testRules(),
	})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "LinkedIn1", got[0].JobsiteID)
	assert.Equal(t, "Rust Developer", got[1].Title)
	assert.Equal(t, []string{searchURL}, f.Calls())
}

func TestSinglePage_AppliesRequestFilters(t *testing.T) {
	f := newFakeFetcher()
	f.pages[searchURL] = pageHTML(0,
		listingHTML("1", "Go Developer", "Acme", "1 hour ago"),
		listingHTML("2", "Senior Go Developer", "Globex", "1 hour ago"),
		listingHTML("3", "Go Developer", "Initech", "1 hour ago"),
	)
	req := &model.RequestSpecification{
		TitleFilterTerms:   []string{"senior"},
		CompanyFilterTerms: []string{"Initech"},
	}

	got, err := newSingle(f, nil).Collect(context.Background(), scraper.Target{
		Site: model.SiteBuiltIn, URL: searchURL, Rules: testRules(), Request: req,
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BuiltIn1", got[0].JobsiteID)
}

func TestSinglePage_NoMasterRuleSkipsFetch(t *testing.T) {
	f := newFakeFetcher()
	sink := &warnSink{}

	got, err := newSingle(f, sink).Collect(context.Background(), scraper.Target{
		Site: model.SiteGlassdoor, URL: searchURL, Rules: extract.FieldRuleSet{},
	})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, f.Calls())
	assert.NotEmpty(t, sink.warns)
}

func TestSinglePage_FetchErrorPropagates(t *testing.T) {
	f := newFakeFetcher()
	boom := errors.New("connection reset")
	f.errs[searchURL] = boom

	_, err := newSingle(f, nil).Collect(context.Background(), scraper.Target{
		Site: model.SiteLinkedIn, URL: searchURL, Rules: testRules(),
	})

	require.ErrorIs(t, err, boom)
}

func TestSinglePage_EmptyPageWarns(t *testing.T) {
	f := newFakeFetcher()
	f.pages[searchURL] = pageHTML(0)
	sink := &warnSink{}

	got, err := newSingle(f, sink).Collect(context.Background(), scraper.Target{
		Site: model.SiteLinkedIn, URL: searchURL, Rules: testRules(),
	})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, sink.warns, "no listings found on page")
}

// ── Paginated ──────────────────────────────────────────────────────────────

func TestPaginated_FetchesEveryPage(t *testing.T) {
	f := newFakeFetcher()
	f.pages[searchURL] = pageHTML(3, listingHTML("1", "Go Developer", "Acme", "1 hour ago"))
	f.pages[searchURL+"&page=2"] = pageHTML(3, listingHTML("2", "Go Developer", "Acme", "1 hour ago"))
	f.pages[searchURL+"&page=3"] = pageHTML(3, listingHTML("3", "Go Developer", "Acme", "1 hour ago"))
	pause := &recordingPause{}

	p := scraper.NewPaginated(newSingle(f, nil), fixedRand(2), pause.Pause)
	got, err := p.Collect(context.Background(), scraper.Target{
		Site: model.SiteDice, URL: searchURL, Rules: testRules(),
	})

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Dice1", "Dice2", "Dice3"},
		[]string{got[0].JobsiteID, got[1].JobsiteID, got[2].JobsiteID})
	assert.Equal(t, []string{searchURL, searchURL + "&page=2", searchURL + "&page=3"}, f.Calls())
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, pause.pauses)
}

func TestPaginated_MissingMarkerMeansOnePage(t *testing.T) {
	f := newFakeFetcher()
	f.pages[searchURL] = pageHTML(0, listingHTML("1", "Go Developer", "Acme", "1 hour ago"))
	pause := &recordingPause{}

	p := scraper.NewPaginated(newSingle(f, nil), fixedRand(0), pause.Pause)
	got, err := p.Collect(context.Background(), scraper.Target{
		Site: model.SiteDice, URL: searchURL, Rules: testRules(),
	})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Len(t, f.Calls(), 1)
	assert.Empty(t, pause.pauses)
}

func TestPaginated_PauseWithinRange(t *testing.T) {
	for v := 0; v < 8; v++ {
		f := newFakeFetcher()
		f.pages[searchURL] = pageHTML(2)
		f.pages[searchURL+"&page=2"] = pageHTML(2)
		pause := &recordingPause{}

		p := scraper.NewPaginated(newSingle(f, nil), fixedRand(v), pause.Pause)
		_, err := p.Collect(context.Background(), scraper.Target{
			Site: model.SiteDice, URL: searchURL, Rules: testRules(),
		})

		require.NoError(t, err)
		require.Len(t, pause.pauses, 1)
		assert.GreaterOrEqual(t, pause.pauses[0], time.Second)
		assert.LessOrEqual(t, pause.pauses[0], 4*time.Second)
	}
}

func TestPaginated_LaterPageFailureFailsSite(t *testing.T) {
	f := newFakeFetcher()
	f.pages[searchURL] = pageHTML(2, listingHTML("1", "Go Developer", "Acme", "1 hour ago"))
	pause := &recordingPause{}

	p := scraper.NewPaginated(newSingle(f, nil), fixedRand(0), pause.Pause)
	_, err := p.Collect(context.Background(), scraper.Target{
		Site: model.SiteDice, URL: searchURL, Rules: testRules(),
	})

	require.Error(t, err)
}

func TestPaginated_CancelledDuringPause(t *testing.T) {
	f := newFakeFetcher()
	f.pages[searchURL] = pageHTML(5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := scraper.NewPaginated(newSingle(f, nil), fixedRand(0), nil)
	_, err := p.Collect(ctx, scraper.Target{Site: model.SiteDice, URL: searchURL, Rules: testRules()})

	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.Calls(), 1)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 12, scraper.PageCount(`x{\"pageCount\":12,\"pageSize\":20}`))
	assert.Equal(t, 1, scraper.PageCount(`no marker here`))
	assert.Equal(t, 1, scraper.PageCount(`{\"pageCount\":abc,}`))
	assert.Equal(t, 1, scraper.PageCount(`{\"pageCount\":0,}`))
}

// ── Synthetic / NoOp ───────────────────────────────────────────────────────

func TestSynthetic_PlaceholderListing(t *testing.T) {
	s := scraper.NewSynthetic(fixedRand(77), clock)

	got, err := s.Collect(context.Background(), scraper.Target{Site: model.SiteIndeed, URL: searchURL})

	require.NoError(t, err)
	assert.Equal(t, []model.JobListing{{
		Title:            "Indeed Jobs",
		Company:          "Indeed - etc",
		JobsiteID:        "Indeed77",
		Location:         "None / various",
		PostDateTime:     fixedNow.Format(time.RFC3339),
		LinkToJobListing: searchURL,
	}}, got)
}

func TestNoOp_ReturnsNothing(t *testing.T) {
	got, err := scraper.NoOp{}.Collect(context.Background(), scraper.Target{Site: model.SiteDice})
	require.NoError(t, err)
	assert.Empty(t, got)
}

// ── HTTPFetcher ────────────────────────────────────────────────────────────

func TestHTTPFetcher_SendsHeadersAndReadsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "jobmate-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := scraper.NewHTTPFetcher("jobmate-test", 5*time.Second, 0)
	body, err := f.FetchText(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", body)
}

func TestHTTPFetcher_NonOKIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	f := scraper.NewHTTPFetcher("jobmate-test", 5*time.Second, 0)
	_, err := f.FetchText(context.Background(), srv.URL)

	require.Error(t, err)
}
