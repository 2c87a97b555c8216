package roster

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mklimstra/Juvonno-test/internal/juvonno"
	"github.com/mklimstra/Juvonno-test/pkg/logging"
)

// rosterSource is the slice of the Juvonno client the roster needs.
type rosterSource interface {
	ListCustomers(ctx context.Context) ([]juvonno.Record, error)
	ListAppointments(ctx context.Context, branch int, since string) ([]juvonno.Record, error)
}

// Service holds the synced roster: active individuals, their group
// memberships, and a per-individual visit index. Reads are safe while a
// sync is in flight; a sync swaps the whole snapshot at once.
type Service struct {
	client rosterSource
	branch int
	since  string
	logger *logging.Logger

	mu          sync.RWMutex
	individuals map[int]Individual
	visits      map[int][]juvonno.Appointment
	groups      []string
	syncedAt    time.Time
}

// NewService creates an empty roster for one branch. since bounds the
// appointment history fetched on each sync.
func NewService(client rosterSource, branch int, since string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		client: client,
		branch: branch,
		since:  since,
		logger: logger,
	}
}

// Sync refetches the active customer list and the branch appointment history
// and rebuilds the roster snapshot. On error the previous snapshot stays in
// place.
func (s *Service) Sync(ctx context.Context) error {
	runID := uuid.NewString()
	started := time.Now()
	s.logger.Info("roster sync started", "run_id", runID, "branch", s.branch)

	customers, err := s.client.ListCustomers(ctx)
	if err != nil {
		s.logger.Error("roster sync: customer fetch failed", "run_id", runID, "error", err)
		return err
	}
	appointments, err := s.client.ListAppointments(ctx, s.branch, s.since)
	if err != nil {
		s.logger.Error("roster sync: appointment fetch failed", "run_id", runID, "error", err)
		return err
	}

	individuals := make(map[int]Individual, len(customers))
	groupSet := make(map[string]struct{})
	for _, rec := range customers {
		ind := FromRecord(rec)
		if ind.ID == 0 {
			continue
		}
		individuals[ind.ID] = ind
		for _, g := range ind.Groups {
			groupSet[g] = struct{}{}
		}
	}

	visits := make(map[int][]juvonno.Appointment)
	for _, rec := range appointments {
		ap := juvonno.AppointmentFromRecord(rec)
		if ap.ID == 0 || ap.CustomerID == 0 {
			continue
		}
		visits[ap.CustomerID] = append(visits[ap.CustomerID], ap)
	}

	groups := make([]string, 0, len(groupSet))
	for g := range groupSet {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	s.mu.Lock()
	s.individuals = individuals
	s.visits = visits
	s.groups = groups
	s.syncedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("roster sync finished",
		"run_id", runID,
		"individuals", len(individuals),
		"appointments", len(appointments),
		"groups", len(groups),
		"elapsed", time.Since(started))
	return nil
}

// Individual looks up one person by id.
func (s *Service) Individual(id int) (Individual, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ind, ok := s.individuals[id]
	return ind, ok
}

// Individuals lists everyone on the roster, ordered by last name, first
// name, then id.
func (s *Service) Individuals() []Individual {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortIndividuals(s.individuals)
}

// FilterByGroups lists individuals belonging to at least one of the named
// groups, case-insensitively. No names means everyone.
func (s *Service) FilterByGroups(names []string) []Individual {
	if len(names) == 0 {
		return s.Individuals()
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make(map[int]Individual)
	for id, ind := range s.individuals {
		for _, g := range ind.Groups {
			if _, ok := want[g]; ok {
				matched[id] = ind
				break
			}
		}
	}
	return sortIndividuals(matched)
}

// Visits lists one individual's appointments in upstream order.
func (s *Service) Visits(id int) []juvonno.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visits[id]
}

// Groups is the sorted vocabulary of group names across the roster.
func (s *Service) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups
}

// SyncedAt reports when the current snapshot was built; zero before the
// first successful sync.
func (s *Service) SyncedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncedAt
}

func sortIndividuals(m map[int]Individual) []Individual {
	out := make([]Individual, 0, len(m))
	for _, ind := range m {
		out = append(out, ind)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if la, lb := strings.ToLower(a.LastName), strings.ToLower(b.LastName); la != lb {
			return la < lb
		}
		if fa, fb := strings.ToLower(a.FirstName), strings.ToLower(b.FirstName); fa != fb {
			return fa < fb
		}
		return a.ID < b.ID
	})
	return out
}
