package scraper

import (
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"jobmate/aggregator-service/internal/extract"
	"jobmate/aggregator-service/internal/model"
)

const (
	fallbackValue = "ERROR"
	// idSpace bounds the random suffix of fallback and placeholder ids.
	idSpace = 9_999_999
)

// RandSource supplies random integers in [0, n).
type RandSource interface {
	IntN(n int) int
}

// NewRand returns a RandSource safe for concurrent use. A nil src is
// replaced by a time-seeded generator.
func NewRand(src RandSource) RandSource {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.New(rand.NewPCG(seed, seed>>17))
	}
	return &lockedRand{src: src}
}

type lockedRand struct {
	mu  sync.Mutex
	src RandSource
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

// Assembler builds one JobListing from one listing fragment.
type Assembler struct {
	parser *extract.Parser
	rand   RandSource
	now    func() time.Time
}

// NewAssembler wires an Assembler. now defaults to time.Now.
func NewAssembler(parser *extract.Parser, rnd RandSource, now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{parser: parser, rand: NewRand(rnd), now: now}
}

// Assemble resolves every field of fragment, estimates its post time and
// applies the request's filters. ok is false when the listing is filtered
// out.
func (a *Assembler) Assemble(
	fragment string,
	site model.SiteIdentifier,
	rules extract.FieldRuleSet,
	req *model.RequestSpecification,
) (job model.JobListing, ok bool) {
	// Distinct fallback ids keep failed parses from collapsing into one
	// record on the client.
	fallbackID := fallbackValue + strconv.Itoa(a.rand.IntN(idSpace))

	job = model.JobListing{
		Title:            a.parser.ResolveField(fragment, extract.FieldTitle, fallbackValue, rules),
		Company:          a.parser.ResolveField(fragment, extract.FieldCompany, fallbackValue, rules),
		JobsiteID:        site.String() + a.parser.ResolveField(fragment, extract.FieldJobsiteID, fallbackID, rules),
		Location:         a.parser.ResolveField(fragment, extract.FieldLocation, fallbackValue, rules),
		PostDateTime:     a.parser.ResolveField(fragment, extract.FieldPostDateTime, fallbackValue, rules),
		LinkToJobListing: a.parser.ResolveField(fragment, extract.FieldLinkToJobListing, fallbackValue, rules),
	}

	posted := EstimatePostTime(job.PostDateTime, a.now())
	job.PostDateTime = posted.Format(time.RFC3339)

	if req == nil {
		return job, true
	}
	if ContainsFilteredWord(job.Title, req.TitleFilterTerms) ||
		IsFilteredCompany(job.Company, req.CompanyFilterTerms) ||
		!WithinCutoff(posted, req.CutoffTime.Time) {
		return job, false
	}
	return job, true
}
