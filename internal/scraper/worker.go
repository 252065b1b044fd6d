package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobmate/aggregator-service/internal/logger"
	"jobmate/aggregator-service/internal/metrics"
	"jobmate/aggregator-service/internal/model"
)

// Worker answers one aggregation request at a time: it decodes the
// request, builds the per-site URLs, dispatches and encodes the listings.
// It keeps no state between requests.
type Worker struct {
	dispatcher *Dispatcher
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewWorker constructs a Worker.
func NewWorker(dispatcher *Dispatcher, log *logger.Logger, m *metrics.Metrics) *Worker {
	if log == nil {
		log = logger.Nop()
	}
	return &Worker{dispatcher: dispatcher, log: log, metrics: m}
}

// Handle decodes payload as a RequestSpecification and returns the JSON
// array of matching listings. It always returns a well-formed array;
// every failure degrades to "[]".
func (w *Worker) Handle(ctx context.Context, payload []byte) []byte {
	var req *model.RequestSpecification
	var decoded model.RequestSpecification
	if err := json.Unmarshal(payload, &decoded); err != nil {
		w.log.Warn("request does not decode, treating as Error source", "err", err, "bytes", len(payload))
	} else {
		req = &decoded
	}

	listings, err := w.Search(ctx, req)
	if err != nil {
		w.log.Warn("request failed, answering with no listings", "err", err)
		listings = []model.JobListing{}
	}
	return encode(listings)
}

// Search runs the dispatch pipeline for req. A nil req is answered as the
// Error source. Panics raised while dispatching are recovered and
// returned as errors.
func (w *Worker) Search(ctx context.Context, req *model.RequestSpecification) (listings []model.JobListing, err error) {
	start := time.Now()
	site := model.SiteError
	if req != nil {
		site = model.ParseSite(req.Source)
	}

	defer func() {
		if r := recover(); r != nil {
			listings, err = nil, fmt.Errorf("dispatch %s panicked: %v", site, r)
		}
		w.metrics.ObserveRequest(site.String(), time.Since(start))
	}()

	var urls map[model.SiteIdentifier]string
	if req != nil {
		urls = BuildURLs(req, ResolveRegion(req.CultureTag))
	}

	w.log.Info("dispatching request", "source", site.String())
	listings, err = w.dispatcher.Dispatch(ctx, site, urls, req)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", site, err)
	}
	if listings == nil {
		listings = []model.JobListing{}
	}
	w.log.Info("request complete", "source", site.String(), "listings", len(listings), "elapsed", time.Since(start))
	return listings, nil
}

func encode(listings []model.JobListing) []byte {
	if listings == nil {
		listings = []model.JobListing{}
	}
	out, err := json.Marshal(listings)
	if err != nil {
		return []byte("[]")
	}
	return out
}
