package scraper

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"jobmate/aggregator-service/internal/diag"
	"jobmate/aggregator-service/internal/extract"
	"jobmate/aggregator-service/internal/model"
)

// pageCountRule finds the page count Dice embeds as escaped JSON in its
// search page, e.g. `pageCount\":12,`.
var pageCountRule = extract.Rule{Pre: `pageCount\":`, Post: ","}

const (
	// maxPages bounds a paginated poll no matter what the page claims.
	maxPages = 50

	placeholderLocation = "None / various"
)

// Target is everything a strategy needs to poll one site for one request.
type Target struct {
	Site    model.SiteIdentifier
	URL     string
	Rules   extract.FieldRuleSet
	Request *model.RequestSpecification
}

// Strategy produces the listings of one site.
type Strategy interface {
	Collect(ctx context.Context, t Target) ([]model.JobListing, error)
}

// SinglePage polls one page and parses every listing on it.
type SinglePage struct {
	fetcher   Fetcher
	parser    *extract.Parser
	assembler *Assembler
	diag      diag.Sink
}

// NewSinglePage wires a SinglePage strategy.
func NewSinglePage(fetcher Fetcher, parser *extract.Parser, assembler *Assembler, sink diag.Sink) *SinglePage {
	if sink == nil {
		sink = diag.Nop
	}
	return &SinglePage{fetcher: fetcher, parser: parser, assembler: assembler, diag: sink}
}

// Collect fetches t.URL and returns the listings that pass the filters.
// Fetch errors are returned as is.
func (s *SinglePage) Collect(ctx context.Context, t Target) ([]model.JobListing, error) {
	if _, ok := t.Rules[extract.FieldMaster]; !ok {
		s.diag.Warn("site has no master approach, returning no listings", "site", t.Site.String())
		return nil, nil
	}
	body, err := s.fetcher.FetchText(ctx, t.URL)
	if err != nil {
		return nil, fmt.Errorf("poll %s: %w", t.Site, err)
	}
	return s.parse(body, t), nil
}

func (s *SinglePage) parse(body string, t Target) []model.JobListing {
	fragments := s.parser.Segment(body, t.Rules)
	if len(fragments) == 0 {
		s.diag.Warn("no listings found on page", "site", t.Site.String(), "url", t.URL)
		return nil
	}
	out := make([]model.JobListing, 0, len(fragments))
	for _, frag := range fragments {
		if job, ok := s.assembler.Assemble(frag, t.Site, t.Rules, t.Request); ok {
			out = append(out, job)
		}
	}
	return out
}

// Paginated polls the first page, reads the page count embedded in it and
// then polls pages 2..N in order, pausing a random 1-4 seconds between
// fetches.
type Paginated struct {
	single *SinglePage
	rand   RandSource
	pause  func(ctx context.Context, d time.Duration) error
}

// NewPaginated wires a Paginated strategy. pause defaults to a
// context-aware sleep.
func NewPaginated(single *SinglePage, rnd RandSource, pause func(context.Context, time.Duration) error) *Paginated {
	if pause == nil {
		pause = sleep
	}
	return &Paginated{single: single, rand: NewRand(rnd), pause: pause}
}

func (p *Paginated) Collect(ctx context.Context, t Target) ([]model.JobListing, error) {
	first, err := p.single.fetcher.FetchText(ctx, t.URL)
	if err != nil {
		return nil, fmt.Errorf("poll %s page 1: %w", t.Site, err)
	}

	pages := PageCount(first)
	if pages > maxPages {
		p.single.diag.Warn("page count capped", "site", t.Site.String(), "reported", pages, "cap", maxPages)
		pages = maxPages
	}

	var out []model.JobListing
	if _, ok := t.Rules[extract.FieldMaster]; ok {
		out = append(out, p.single.parse(first, t)...)
	} else {
		p.single.diag.Warn("site has no master approach, returning no listings", "site", t.Site.String())
	}

	for page := 2; page <= pages; page++ {
		if err := p.pause(ctx, time.Duration(1+p.rand.IntN(4))*time.Second); err != nil {
			return nil, err
		}
		pageTarget := t
		pageTarget.URL = t.URL + "&page=" + strconv.Itoa(page)
		listings, err := p.single.Collect(ctx, pageTarget)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		out = append(out, listings...)
	}
	return out, nil
}

// PageCount reads the embedded page count from a page body. It returns 1
// when the marker is missing or its value is not a positive integer.
func PageCount(body string) int {
	raw := extract.Extract(body, pageCountRule)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Synthetic stands in for sites that cannot be scraped: it returns one
// placeholder listing linking to the search URL, without any network call.
type Synthetic struct {
	rand RandSource
	now  func() time.Time
}

// NewSynthetic wires a Synthetic strategy. now defaults to time.Now.
func NewSynthetic(rnd RandSource, now func() time.Time) *Synthetic {
	if now == nil {
		now = time.Now
	}
	return &Synthetic{rand: NewRand(rnd), now: now}
}

func (s *Synthetic) Collect(_ context.Context, t Target) ([]model.JobListing, error) {
	name := t.Site.String()
	return []model.JobListing{{
		Title:            name + " Jobs",
		Company:          name + " - etc",
		JobsiteID:        name + strconv.Itoa(s.rand.IntN(idSpace)),
		Location:         placeholderLocation,
		PostDateTime:     s.now().Format(time.RFC3339),
		LinkToJobListing: t.URL,
	}}, nil
}

// NoOp returns no listings. It is assigned to sites whose strategy is
// still being developed.
type NoOp struct{}

func (NoOp) Collect(context.Context, Target) ([]model.JobListing, error) {
	return nil, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
