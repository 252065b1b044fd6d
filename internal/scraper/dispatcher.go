package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"jobmate/aggregator-service/internal/diag"
	"jobmate/aggregator-service/internal/extract"
	"jobmate/aggregator-service/internal/metrics"
	"jobmate/aggregator-service/internal/model"
)

// ErrUnknownSite is returned when a site identifier has no strategy.
var ErrUnknownSite = errors.New("unknown site identifier")

// DispatcherOptions tunes the All fan-out.
type DispatcherOptions struct {
	// Concurrency is the number of sites polled at once for All.
	// Values below 2 poll sequentially.
	Concurrency int
	// IsolateFailures keeps the other sites' listings when one site fails
	// during All. When false a single failure fails the whole request.
	IsolateFailures bool
}

// Dispatcher routes a site identifier to its strategy.
type Dispatcher struct {
	rules     extract.SiteRuleTable
	single    Strategy
	paginated Strategy
	synthetic Strategy
	noop      Strategy
	now       func() time.Time
	diag      diag.Sink
	metrics   *metrics.Metrics
	opts      DispatcherOptions
}

// Strategies groups the strategy variants handed to NewDispatcher.
type Strategies struct {
	SinglePage Strategy
	Paginated  Strategy
	Synthetic  Strategy
	NoOp       Strategy
}

// NewDispatcher wires a Dispatcher. Nil strategies fall back to NoOp.
func NewDispatcher(
	rules extract.SiteRuleTable,
	s Strategies,
	now func() time.Time,
	sink diag.Sink,
	m *metrics.Metrics,
	opts DispatcherOptions,
) *Dispatcher {
	orNoop := func(st Strategy) Strategy {
		if st == nil {
			return NoOp{}
		}
		return st
	}
	if now == nil {
		now = time.Now
	}
	if sink == nil {
		sink = diag.Nop
	}
	return &Dispatcher{
		rules:     rules,
		single:    orNoop(s.SinglePage),
		paginated: orNoop(s.Paginated),
		synthetic: orNoop(s.Synthetic),
		noop:      orNoop(s.NoOp),
		now:       now,
		diag:      sink,
		metrics:   m,
		opts:      opts,
	}
}

// StrategyFor returns the strategy assigned to a concrete site.
func (d *Dispatcher) StrategyFor(site model.SiteIdentifier) (Strategy, error) {
	switch site {
	case model.SiteLinkedIn, model.SiteBuiltIn:
		return d.single, nil
	case model.SiteDice:
		// Dice lists an order of magnitude more jobs than the others.
		return d.paginated, nil
	case model.SiteIndeed, model.SiteGlassdoor:
		return d.synthetic, nil
	case model.SiteDummy, model.SiteAll, model.SiteError:
		return d.noop, fmt.Errorf("%w: %s is not a concrete site", ErrUnknownSite, site)
	}
	return d.noop, fmt.Errorf("%w: %q", ErrUnknownSite, site)
}

// Dispatch resolves site against the per-site URLs built for req.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	site model.SiteIdentifier,
	urls map[model.SiteIdentifier]string,
	req *model.RequestSpecification,
) ([]model.JobListing, error) {
	switch site {
	case model.SiteError:
		d.diag.Warn("request source does not name a known site")
		return []model.JobListing{}, nil
	case model.SiteDummy:
		return DummyListings(d.now()), nil
	case model.SiteAll:
		return d.fanOut(ctx, urls, req)
	}
	return d.collect(ctx, site, urls, req)
}

func (d *Dispatcher) collect(
	ctx context.Context,
	site model.SiteIdentifier,
	urls map[model.SiteIdentifier]string,
	req *model.RequestSpecification,
) ([]model.JobListing, error) {
	strategy, err := d.StrategyFor(site)
	if err != nil {
		d.diag.Warn("no strategy for site", "site", site.String())
		return []model.JobListing{}, nil
	}
	listings, err := strategy.Collect(ctx, Target{
		Site:    site,
		URL:     urls[site],
		Rules:   d.rules[site],
		Request: req,
	})
	if err != nil {
		d.metrics.FetchFailed(site.String())
		return nil, err
	}
	d.metrics.AddListings(site.String(), len(listings))
	return listings, nil
}

// fanOut collects every concrete site and concatenates the results in
// enumeration order, whether sites are polled sequentially or not.
func (d *Dispatcher) fanOut(
	ctx context.Context,
	urls map[model.SiteIdentifier]string,
	req *model.RequestSpecification,
) ([]model.JobListing, error) {
	sites := model.ConcreteSites()
	results := make([][]model.JobListing, len(sites))

	run := func(ctx context.Context, i int) error {
		listings, err := d.collect(ctx, sites[i], urls, req)
		if err != nil {
			if d.opts.IsolateFailures {
				d.diag.Warn("site failed, continuing without it", "site", sites[i].String(), "err", err)
				return nil
			}
			return err
		}
		results[i] = listings
		return nil
	}

	if d.opts.Concurrency < 2 {
		for i := range sites {
			if err := run(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.opts.Concurrency)
		for i := range sites {
			g.Go(func() error { return run(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out := []model.JobListing{}
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// DummyListings returns the two fixed records served for the Dummy source.
func DummyListings(now time.Time) []model.JobListing {
	stamp := now.Format(time.RFC3339)
	return []model.JobListing{
		{
			Title:            "dummytitle1",
			Company:          "dummycompany1",
			JobsiteID:        "dummy0001",
			Location:         "dummylocation1",
			PostDateTime:     stamp,
			LinkToJobListing: "dummylinktojoblisting1",
		},
		{
			Title:            "dummytitle2",
			Company:          "dummycompany2",
			JobsiteID:        "dummy0002",
			Location:         "dummylocation2",
			PostDateTime:     stamp,
			LinkToJobListing: "dummylinktojoblisting2",
		},
	}
}
