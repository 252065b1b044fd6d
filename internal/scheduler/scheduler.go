// Package scheduler wires up the cron job that periodically runs the
// active standing searches and archives what they find.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"jobmate/aggregator-service/internal/logger"
	"jobmate/aggregator-service/internal/model"
)

// Searcher runs one request through the aggregation pipeline.
type Searcher interface {
	Search(ctx context.Context, req *model.RequestSpecification) ([]model.JobListing, error)
}

// Loader returns the standing searches that should be considered.
type Loader interface {
	LoadActiveSearches(ctx context.Context) ([]model.StandingSearch, error)
}

// Archiver stores the listings of one run.
type Archiver interface {
	Archive(ctx context.Context, searchName string, listings []model.JobListing) (inserted, dupes int, err error)
}

// Scheduler wraps robfig/cron and decides on every tick which standing
// searches are due.
type Scheduler struct {
	cron     *cron.Cron
	loader   Loader
	archiver Archiver
	searcher Searcher
	log      *logger.Logger
	spec     string // cron spec, e.g. "@every 15m"
	now      func() time.Time

	mu      sync.Mutex
	lastRun map[string]time.Time
}

// New creates a Scheduler that re-evaluates searches on spec. archiver may
// be nil, in which case results are only logged.
func New(loader Loader, archiver Archiver, searcher Searcher, log *logger.Logger, spec string) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	cl := cronLogger{log: log}
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		loader:   loader,
		archiver: archiver,
		searcher: searcher,
		log:      log,
		spec:     spec,
		now:      time.Now,
		lastRun:  map[string]time.Time{},
	}
}

// Start registers the job and starts the scheduler. It also runs one tick
// immediately so startup searches fire without waiting.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.Tick(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("scheduler started", "spec", s.spec)

	go s.Tick(ctx)

	return nil
}

// Stop halts the scheduler and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// Tick loads the active searches and runs the ones that are due.
func (s *Scheduler) Tick(ctx context.Context) {
	searches, err := s.loader.LoadActiveSearches(ctx)
	if err != nil {
		s.log.Error("loading standing searches failed", "err", err)
		return
	}
	if len(searches) == 0 {
		s.log.Debug("no active standing searches")
		return
	}

	for _, ss := range searches {
		if ctx.Err() != nil {
			return
		}
		now := s.now()
		last, ran := s.last(ss.Name)
		if !Due(ss, now, last, ran) {
			continue
		}
		s.markRun(ss.Name, now)
		s.run(ctx, ss, last, ran)
	}
}

func (s *Scheduler) run(ctx context.Context, ss model.StandingSearch, last time.Time, ran bool) {
	req := ss.Request
	// Only ask for what appeared since the previous run.
	if req.CutoffTime.IsZero() && ran {
		req.CutoffTime = model.Timestamp{Time: last}
	}

	s.log.Info("running standing search", "name", ss.Name, "source", req.Source)
	listings, err := s.searcher.Search(ctx, &req)
	if err != nil {
		s.log.Warn("standing search failed", "name", ss.Name, "err", err)
		return
	}

	if s.archiver == nil || len(listings) == 0 {
		s.log.Info("standing search done", "name", ss.Name, "listings", len(listings))
		return
	}
	inserted, dupes, err := s.archiver.Archive(ctx, ss.Name, listings)
	if err != nil {
		s.log.Warn("archiving listings failed", "name", ss.Name, "err", err)
	}
	s.log.Info("standing search done", "name", ss.Name,
		"listings", len(listings), "inserted", inserted, "duplicates", dupes)
}

func (s *Scheduler) last(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lastRun[name]
	return t, ok
}

func (s *Scheduler) markRun(name string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun[name] = at
}

// Due reports whether ss should run at now given its previous run.
// Interval-zero searches run once, whatever the time of day.
func Due(ss model.StandingSearch, now, last time.Time, ran bool) bool {
	if ss.IntervalSeconds <= 0 {
		return !ran
	}
	if ran && now.Sub(last) < time.Duration(ss.IntervalSeconds)*time.Second {
		return false
	}
	return InWindow(TimeOfDay(now), ss.DailyStart, ss.DailyEnd)
}

// InWindow reports whether tod lies in [start, end]. A window whose start
// is after its end wraps past midnight; equal bounds mean all day.
func InWindow(tod, start, end time.Duration) bool {
	switch {
	case start == end:
		return true
	case start < end:
		return tod >= start && tod <= end
	default:
		return tod >= start || tod <= end
	}
}

// TimeOfDay returns the offset of t from its local midnight.
func TimeOfDay(t time.Time) time.Duration {
	h, m, sec := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
}

// cronLogger routes robfig/cron's logging into zap.
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
