package status

import (
	"context"
	"fmt"
	"time"

	"github.com/mklimstra/Juvonno-test/internal/cache"
	"github.com/mklimstra/Juvonno-test/internal/juvonno"
	"github.com/mklimstra/Juvonno-test/internal/observability/metrics"
	"github.com/mklimstra/Juvonno-test/pkg/logging"
)

// encounterSource is the slice of the Juvonno client the resolver needs.
type encounterSource interface {
	EncounterIDs(ctx context.Context, appointmentID int) ([]int, error)
	FetchEncounter(ctx context.Context, id int) (any, error)
}

// Resolver derives a visit's status observation from its linked encounters.
type Resolver struct {
	client  encounterSource
	store   cache.Store
	metrics *metrics.UpstreamMetrics
	logger  *logging.Logger
}

// NewResolver creates a resolver. store caches encounter payloads by id;
// metrics may be nil.
func NewResolver(client encounterSource, store cache.Store, m *metrics.UpstreamMetrics, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	if store == nil {
		store = cache.NewMemory()
	}
	return &Resolver{client: client, store: store, metrics: m, logger: logger}
}

// Observe resolves the authoritative status observation for one visit. The
// boolean is false when the visit contributes no observation: unparsable
// date, no linked encounters, or no encounter carrying a recognized status.
// A fetch failure for one encounter never aborts the rest.
func (r *Resolver) Observe(ctx context.Context, ap juvonno.Appointment) (Observation, bool) {
	date, ok := juvonno.ParseDate(ap.Date)
	if !ok {
		return Observation{}, false
	}

	ids, err := r.client.EncounterIDs(ctx, ap.ID)
	if err != nil {
		r.logger.Warn("encounter id lookup failed", "appointment_id", ap.ID, "error", err)
		return Observation{}, false
	}

	best := candidate{}
	found := false
	for _, id := range ids {
		payload, err := r.fetchEncounter(ctx, id)
		if err != nil {
			r.logger.Debug("encounter fetch failed, skipping", "encounter_id", id, "error", err)
			continue
		}
		value := ExtractTrainingStatus(payload)
		if value == "" {
			continue
		}
		c := candidate{id: id, status: value}
		c.timestamp, c.hasTimestamp = encounterTimestamp(payload)
		if !found || c.moreRecentThan(best) {
			best = c
			found = true
		}
	}
	if !found {
		return Observation{}, false
	}
	return Observation{Date: date, Status: best.status}, true
}

func (r *Resolver) fetchEncounter(ctx context.Context, id int) (any, error) {
	key := fmt.Sprintf("encounter:%d", id)
	payload, hit, err := cache.GetOrFetch(ctx, r.store, key, func(ctx context.Context) (any, error) {
		return r.client.FetchEncounter(ctx, id)
	})
	if err == nil {
		r.metrics.ObserveCache("encounter", hit)
	}
	return payload, err
}

type candidate struct {
	id           int
	status       string
	timestamp    time.Time
	hasTimestamp bool
}

// moreRecentThan orders candidates by timestamp, then by highest id. A
// candidate with any timestamp beats one without.
func (c candidate) moreRecentThan(other candidate) bool {
	if c.hasTimestamp != other.hasTimestamp {
		return c.hasTimestamp
	}
	if c.hasTimestamp && !c.timestamp.Equal(other.timestamp) {
		return c.timestamp.After(other.timestamp)
	}
	return c.id > other.id
}

// encounterTimestampKeys is the fallback order for "most recent": the
// explicit encounter date, then modification, then creation timestamps.
// Downstream status correctness depends on this exact order.
var encounterTimestampKeys = []string{
	"date",
	"updated_at", "modified", "updated",
	"created_at", "created",
}

func encounterTimestamp(payload any) (time.Time, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return time.Time{}, false
	}
	for _, key := range encounterTimestampKeys {
		raw := juvonno.TidyDate(obj[key])
		if raw == "" {
			continue
		}
		if t, ok := juvonno.ParseDate(raw); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
