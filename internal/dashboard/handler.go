package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mklimstra/Juvonno-test/internal/observability/metrics"
	"github.com/mklimstra/Juvonno-test/internal/roster"
	"github.com/mklimstra/Juvonno-test/pkg/logging"
)

// Handler serves the dashboard JSON API.
type Handler struct {
	svc      *Service
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

func NewHandler(svc *Service, gatherer prometheus.Gatherer, logger *logging.Logger) *Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, gatherer: gatherer, logger: logger}
}

// Routes mounts the dashboard endpoints on a fresh subrouter.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/groups", h.GetGroups)
	r.Get("/individuals", h.GetIndividuals)
	r.Route("/individuals/{id}", func(r chi.Router) {
		r.Get("/summary", h.GetSummary)
		r.Get("/timeline", h.GetTimeline)
		r.Get("/heatmap", h.GetHeatmap)
		r.Get("/visits", h.GetVisits)
	})
	r.Get("/upstream/latency", h.GetUpstreamLatency)
	return r
}

func (h *Handler) GetGroups(w http.ResponseWriter, r *http.Request) {
	groups := h.svc.Groups()
	if groups == nil {
		groups = []string{}
	}
	writeJSON(w, map[string]any{"groups": groups})
}

func (h *Handler) GetIndividuals(w http.ResponseWriter, r *http.Request) {
	inds := h.svc.Individuals(r.URL.Query()["group"])
	if inds == nil {
		inds = []roster.Individual{}
	}
	type entry struct {
		roster.Individual
		Label string `json:"label"`
	}
	out := make([]entry, 0, len(inds))
	for _, ind := range inds {
		out = append(out, entry{Individual: ind, Label: ind.Label()})
	}
	writeJSON(w, map[string]any{"individuals": out})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.individualID(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.Summary(r.Context(), id)
	if h.failed(w, err) {
		return
	}
	writeJSON(w, summary)
}

func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id, ok := h.individualID(w, r)
	if !ok {
		return
	}
	timeline, err := h.svc.Timeline(r.Context(), id)
	if h.failed(w, err) {
		return
	}
	writeJSON(w, timeline)
}

func (h *Handler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	id, ok := h.individualID(w, r)
	if !ok {
		return
	}
	heatmap, err := h.svc.Heatmap(r.Context(), id, r.URL.Query().Get("focus"))
	if h.failed(w, err) {
		return
	}
	writeJSON(w, heatmap)
}

func (h *Handler) GetVisits(w http.ResponseWriter, r *http.Request) {
	id, ok := h.individualID(w, r)
	if !ok {
		return
	}
	rows, err := h.svc.Visits(r.Context(), id, r.URL.Query().Get("focus"))
	if h.failed(w, err) {
		return
	}
	if rows == nil {
		rows = []VisitRow{}
	}
	writeJSON(w, map[string]any{"visits": rows})
}

func (h *Handler) GetUpstreamLatency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, metrics.SnapshotUpstreamLatency(h.gatherer))
}

func (h *Handler) individualID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, `{"error":"invalid individual id"}`, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) failed(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrUnknownIndividual):
		http.Error(w, `{"error":"unknown individual"}`, http.StatusNotFound)
	default:
		h.logger.Error("dashboard request failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
