package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/aggregator-service/internal/model"
)

type fakeLoader struct {
	searches []model.StandingSearch
	err      error
}

func (f *fakeLoader) LoadActiveSearches(context.Context) ([]model.StandingSearch, error) {
	return f.searches, f.err
}

type fakeSearcher struct {
	mu    sync.Mutex
	reqs  []model.RequestSpecification
	err   error
	reply []model.JobListing
}

func (f *fakeSearcher) Search(_ context.Context, req *model.RequestSpecification) ([]model.JobListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, *req)
	return f.reply, f.err
}

type fakeArchiver struct {
	names []string
	count int
}

func (f *fakeArchiver) Archive(_ context.Context, name string, listings []model.JobListing) (int, int, error) {
	f.names = append(f.names, name)
	f.count += len(listings)
	return len(listings), 0, nil
}

func newTestScheduler(l Loader, a Archiver, s Searcher, now *time.Time) *Scheduler {
	sch := New(l, a, s, nil, "@every 1m")
	sch.now = func() time.Time { return *now }
	return sch
}

func at(h, m int) time.Time {
	return time.Date(2024, 5, 1, h, m, 0, 0, time.Local)
}

// ── InWindow ───────────────────────────────────────────────────────────────

func TestInWindow(t *testing.T) {
	h := time.Hour
	cases := []struct {
		tod, start, end time.Duration
		want            bool
	}{
		{12 * h, 8 * h, 18 * h, true},
		{8 * h, 8 * h, 18 * h, true},
		{18 * h, 8 * h, 18 * h, true},
		{7 * h, 8 * h, 18 * h, false},
		{19 * h, 8 * h, 18 * h, false},
		{23 * h, 22 * h, 6 * h, true},
		{3 * h, 22 * h, 6 * h, true},
		{12 * h, 22 * h, 6 * h, false},
		{12 * h, 0, 0, true},
		{3 * h, 9 * h, 9 * h, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, InWindow(c.tod, c.start, c.end), "tod=%s window=[%s,%s]", c.tod, c.start, c.end)
	}
}

func TestTimeOfDay(t *testing.T) {
	assert.Equal(t, 13*time.Hour+5*time.Minute+7*time.Second,
		TimeOfDay(time.Date(2024, 1, 2, 13, 5, 7, 0, time.Local)))
}

// ── Due ────────────────────────────────────────────────────────────────────

func TestDue_StartupSearchRunsOnce(t *testing.T) {
	ss := model.StandingSearch{Name: "once", DailyStart: 8 * time.Hour, DailyEnd: 9 * time.Hour}

	assert.True(t, Due(ss, at(23, 0), time.Time{}, false), "window does not apply to startup searches")
	assert.False(t, Due(ss, at(23, 0), at(22, 0), true))
}

func TestDue_Interval(t *testing.T) {
	ss := model.StandingSearch{Name: "hourly", IntervalSeconds: 3600}

	assert.True(t, Due(ss, at(10, 0), time.Time{}, false))
	assert.False(t, Due(ss, at(10, 59), at(10, 0), true))
	assert.True(t, Due(ss, at(11, 0), at(10, 0), true))
}

func TestDue_OutsideWindow(t *testing.T) {
	ss := model.StandingSearch{IntervalSeconds: 60, DailyStart: 8 * time.Hour, DailyEnd: 18 * time.Hour}

	assert.False(t, Due(ss, at(20, 0), time.Time{}, false))
	assert.True(t, Due(ss, at(9, 0), time.Time{}, false))
}

// ── Tick ───────────────────────────────────────────────────────────────────

func TestTick_RunsDueSearchesAndArchives(t *testing.T) {
	now := at(10, 0)
	loader := &fakeLoader{searches: []model.StandingSearch{
		{Name: "startup", Request: model.RequestSpecification{Source: "All"}},
		{Name: "hourly", IntervalSeconds: 3600, Request: model.RequestSpecification{Source: "Dice"}},
	}}
	searcher := &fakeSearcher{reply: []model.JobListing{{JobsiteID: "Dice1"}}}
	archiver := &fakeArchiver{}
	s := newTestScheduler(loader, archiver, searcher, &now)

	s.Tick(context.Background())
	require.Len(t, searcher.reqs, 2)
	assert.Equal(t, []string{"startup", "hourly"}, archiver.names)

	now = at(10, 30)
	s.Tick(context.Background())
	assert.Len(t, searcher.reqs, 2, "nothing is due half an hour later")

	now = at(11, 0)
	s.Tick(context.Background())
	require.Len(t, searcher.reqs, 3)
	assert.Equal(t, "Dice", searcher.reqs[2].Source)
	assert.Equal(t, at(10, 0), searcher.reqs[2].CutoffTime.Time, "cutoff defaults to the previous run")
}

func TestTick_KeepsExplicitCutoff(t *testing.T) {
	now := at(10, 0)
	cutoff := at(1, 0)
	loader := &fakeLoader{searches: []model.StandingSearch{{
		Name: "hourly", IntervalSeconds: 60,
		Request: model.RequestSpecification{CutoffTime: model.Timestamp{Time: cutoff}},
	}}}
	searcher := &fakeSearcher{}
	s := newTestScheduler(loader, nil, searcher, &now)

	s.Tick(context.Background())
	now = at(10, 5)
	s.Tick(context.Background())

	require.Len(t, searcher.reqs, 2)
	assert.Equal(t, cutoff, searcher.reqs[1].CutoffTime.Time)
}

func TestTick_SearchErrorSkipsArchive(t *testing.T) {
	now := at(10, 0)
	loader := &fakeLoader{searches: []model.StandingSearch{{Name: "x"}}}
	searcher := &fakeSearcher{err: errors.New("boom")}
	archiver := &fakeArchiver{}

	newTestScheduler(loader, archiver, searcher, &now).Tick(context.Background())

	assert.Len(t, searcher.reqs, 1)
	assert.Empty(t, archiver.names)
}

func TestTick_LoaderErrorIsNotFatal(t *testing.T) {
	now := at(10, 0)
	searcher := &fakeSearcher{}

	require.NotPanics(t, func() {
		newTestScheduler(&fakeLoader{err: errors.New("db down")}, nil, searcher, &now).Tick(context.Background())
	})
	assert.Empty(t, searcher.reqs)
}

func TestStart_RejectsBadSpec(t *testing.T) {
	s := New(&fakeLoader{}, nil, &fakeSearcher{}, nil, "every now and then")
	assert.Error(t, s.Start(context.Background()))
}
