package complaints

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mklimstra/Juvonno-test/internal/cache"
	"github.com/mklimstra/Juvonno-test/internal/juvonno"
	"github.com/mklimstra/Juvonno-test/internal/observability/metrics"
	"github.com/mklimstra/Juvonno-test/pkg/logging"
)

// complaintSource is the slice of the Juvonno client the reconciler needs.
type complaintSource interface {
	ListCustomerComplaints(ctx context.Context, customerID int) ([]juvonno.Record, error)
	SearchComplaints(ctx context.Context, customerID int) ([]juvonno.Record, error)
	ListAppointmentComplaints(ctx context.Context, appointmentID int) ([]juvonno.Record, error)
	FetchComplaint(ctx context.Context, id int) (juvonno.Record, error)
}

// Reconciler merges complaint records from four upstream retrieval paths
// into one deduplicated list per individual.
type Reconciler struct {
	client  complaintSource
	store   cache.Store
	metrics *metrics.UpstreamMetrics
	logger  *logging.Logger
}

// NewReconciler creates a reconciler. store caches complaint detail payloads
// by id; metrics may be nil.
func NewReconciler(client complaintSource, store cache.Store, m *metrics.UpstreamMetrics, logger *logging.Logger) *Reconciler {
	if logger == nil {
		logger = logging.Default()
	}
	if store == nil {
		store = cache.NewMemory()
	}
	return &Reconciler{client: client, store: store, metrics: m, logger: logger}
}

// ForIndividual collects complaint records for one individual from the
// customer-level lookup, the global search, every visit's linked complaints,
// and any complaint object inlined on a visit, then normalizes, enriches,
// deduplicates, and orders them. A failure in any single source degrades to
// partial results, never an empty list.
func (r *Reconciler) ForIndividual(ctx context.Context, customerID int, visits []juvonno.Appointment) []Complaint {
	raw := r.collect(ctx, customerID, visits)

	keys := make([]string, 0, len(raw))
	byKey := make(map[string]*Complaint, len(raw))
	for _, rec := range raw {
		c := normalize(rec)
		if c.needsEnrichment() {
			r.enrich(ctx, &c)
		}
		key := c.dedupeKey()
		if key == "" {
			continue
		}
		if prev, ok := byKey[key]; ok {
			prev.mergeFrom(c)
			continue
		}
		cc := c
		byKey[key] = &cc
		keys = append(keys, key)
	}

	out := make([]Complaint, 0, len(keys))
	for _, key := range keys {
		c := *byKey[key]
		if c.Status == "" {
			c.Status = statusPlaceholder
		}
		out = append(out, c)
	}
	sortByOnset(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// collect gathers raw records in source-priority order. Order matters: the
// merge keeps the first non-empty value per field, so earlier sources win.
func (r *Reconciler) collect(ctx context.Context, customerID int, visits []juvonno.Appointment) []juvonno.Record {
	var raw []juvonno.Record

	recs, err := r.client.ListCustomerComplaints(ctx, customerID)
	if err != nil {
		r.logger.Warn("customer complaint lookup failed", "customer_id", customerID, "error", err)
	}
	raw = append(raw, recs...)

	recs, err = r.client.SearchComplaints(ctx, customerID)
	if err != nil {
		r.logger.Warn("complaint search failed", "customer_id", customerID, "error", err)
	}
	raw = append(raw, recs...)

	for _, ap := range visits {
		recs, err = r.client.ListAppointmentComplaints(ctx, ap.ID)
		if err != nil {
			r.logger.Debug("appointment complaint lookup failed", "appointment_id", ap.ID, "error", err)
		}
		raw = append(raw, recs...)

		if name := ExtractName(ap.Complaint); name != "" {
			raw = append(raw, juvonno.Record{"name": name, "id": ap.Complaint["id"]})
		}
	}
	return raw
}

// enrich fills a bare record from the complaint detail endpoint. Best-effort:
// a failed fetch leaves the record as it was.
func (r *Reconciler) enrich(ctx context.Context, c *Complaint) {
	key := fmt.Sprintf("complaint:%d", c.ID)
	payload, hit, err := cache.GetOrFetch(ctx, r.store, key, func(ctx context.Context) (any, error) {
		return r.client.FetchComplaint(ctx, c.ID)
	})
	if err != nil {
		r.logger.Debug("complaint detail fetch failed", "complaint_id", c.ID, "error", err)
		return
	}
	r.metrics.ObserveCache("complaint", hit)

	rec, ok := payload.(map[string]any)
	if !ok {
		return
	}
	c.mergeFrom(normalize(rec))
}

// sortByOnset orders complaints most-recent-first by onset date. Records
// whose onset is missing or unparsable sort last, keeping their original
// relative order.
func sortByOnset(cs []Complaint) {
	sort.SliceStable(cs, func(i, j int) bool {
		ti, iok := juvonno.ParseDate(cs[i].Onset)
		tj, jok := juvonno.ParseDate(cs[j].Onset)
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		return ti.After(tj)
	})
}

// VisitComplaintNames lists the distinct complaint titles attached to one
// visit, from its linked complaints and any inline complaint object. Used
// for per-visit display and focus filtering.
func (r *Reconciler) VisitComplaintNames(ctx context.Context, ap juvonno.Appointment) []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(name string) {
		folded := strings.ToLower(strings.TrimSpace(name))
		if folded == "" {
			return
		}
		if _, ok := seen[folded]; ok {
			return
		}
		seen[folded] = struct{}{}
		names = append(names, strings.TrimSpace(name))
	}

	recs, err := r.client.ListAppointmentComplaints(ctx, ap.ID)
	if err != nil {
		r.logger.Debug("appointment complaint lookup failed", "appointment_id", ap.ID, "error", err)
	}
	for _, rec := range recs {
		add(ExtractName(rec))
	}
	add(ExtractName(ap.Complaint))

	sort.Strings(names)
	return names
}
