// Package api implements the HTTP surface of the aggregator service.
//
// Routes:
//
//	GET  /health   → liveness probe
//	POST /search   → run one aggregation request synchronously
//	GET  /metrics  → Prometheus exposition
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"jobmate/aggregator-service/internal/logger"
	"jobmate/aggregator-service/internal/metrics"
)

const (
	serviceName  = "aggregator-service"
	maxBodyBytes = 1 << 20
)

// RequestHandler answers a raw request payload with a JSON listing array.
type RequestHandler interface {
	Handle(ctx context.Context, payload []byte) []byte
}

// Handler holds shared dependencies.
type Handler struct {
	worker  RequestHandler
	metrics *metrics.Metrics
	log     *logger.Logger
	version string
}

// NewHandler returns a configured Handler.
func NewHandler(worker RequestHandler, m *metrics.Metrics, log *logger.Logger, version string) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{worker: worker, metrics: m, log: log, version: version}
}

// RegisterRoutes mounts all aggregator routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/search", h.handleSearch)
	mux.HandleFunc("/metrics", h.handleMetrics)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	jsonOK(w, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": h.version,
	})
}

// handleSearch handles POST /search. The response is always 200 with a
// listing array, matching what the queue transport replies.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.log.Warn("search body unreadable, answering as malformed", "err", err)
		payload = nil
	}

	out := h.worker.Handle(r.Context(), payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.metrics.Handler().ServeHTTP(w, r)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
