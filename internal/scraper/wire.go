package scraper

import (
	"context"
	"time"

	"jobmate/aggregator-service/internal/diag"
	"jobmate/aggregator-service/internal/extract"
	"jobmate/aggregator-service/internal/logger"
	"jobmate/aggregator-service/internal/metrics"
)

// Options collects the collaborators of a fully wired Worker. Only Fetcher
// is required.
type Options struct {
	Fetcher  Fetcher
	Rules    extract.SiteRuleTable // DefaultSiteRules() when nil
	Rand     RandSource            // time-seeded when nil
	Now      func() time.Time      // time.Now when nil
	Pause    func(context.Context, time.Duration) error
	Diag     diag.Sink
	Log      *logger.Logger
	Metrics  *metrics.Metrics
	Dispatch DispatcherOptions
}

// NewService builds the parser, assembler, strategies and dispatcher and
// returns the Worker on top of them.
func NewService(o Options) *Worker {
	if o.Rules == nil {
		o.Rules = extract.DefaultSiteRules()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Diag == nil {
		o.Diag = diag.Nop
	}
	rnd := NewRand(o.Rand)

	parser := extract.NewParser(o.Diag)
	assembler := NewAssembler(parser, rnd, o.Now)
	single := NewSinglePage(o.Fetcher, parser, assembler, o.Diag)

	d := NewDispatcher(o.Rules, Strategies{
		SinglePage: single,
		Paginated:  NewPaginated(single, rnd, o.Pause),
		Synthetic:  NewSynthetic(rnd, o.Now),
		NoOp:       NoOp{},
	}, o.Now, o.Diag, o.Metrics, o.Dispatch)

	return NewWorker(d, o.Log, o.Metrics)
}
