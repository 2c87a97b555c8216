package dashboard

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/mklimstra/Juvonno-test/internal/complaints"
	"github.com/mklimstra/Juvonno-test/internal/juvonno"
	"github.com/mklimstra/Juvonno-test/internal/roster"
	"github.com/mklimstra/Juvonno-test/internal/status"
	"github.com/mklimstra/Juvonno-test/pkg/logging"
)

// ErrUnknownIndividual marks lookups for ids not on the roster.
var ErrUnknownIndividual = errors.New("dashboard: unknown individual")

// Service assembles per-individual dashboard views from the roster, the
// encounter resolver, and the complaint reconciler. Downstream failures
// degrade to empty sections; the only hard error is an unknown individual.
type Service struct {
	roster     *roster.Service
	resolver   *status.Resolver
	reconciler *complaints.Reconciler
	logger     *logging.Logger

	now func() time.Time
}

func NewService(r *roster.Service, res *status.Resolver, rec *complaints.Reconciler, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		roster:     r,
		resolver:   res,
		reconciler: rec,
		logger:     logger,
		now:        time.Now,
	}
}

// Summary is the demographics-plus-current-state header for one individual.
type Summary struct {
	ID            int                    `json:"id"`
	Label         string                 `json:"label"`
	DOB           string                 `json:"dob,omitempty"`
	Sex           string                 `json:"sex,omitempty"`
	Email         string                 `json:"email,omitempty"`
	Phone         string                 `json:"phone,omitempty"`
	Groups        []string               `json:"groups"`
	CurrentStatus string                 `json:"current_status,omitempty"`
	StatusHex     string                 `json:"status_hex,omitempty"`
	LastVisit     string                 `json:"last_visit,omitempty"`
	Complaints    []complaints.Complaint `json:"complaints"`
}

func (s *Service) Summary(ctx context.Context, individualID int) (Summary, error) {
	ind, ok := s.roster.Individual(individualID)
	if !ok {
		return Summary{}, ErrUnknownIndividual
	}
	visits := s.roster.Visits(individualID)

	daily := status.BuildDaily(s.observe(ctx, visits), s.now())
	current := status.Current(daily)
	hex, _ := status.ColorFor(current)

	return Summary{
		ID:            ind.ID,
		Label:         ind.Label(),
		DOB:           ind.DOB,
		Sex:           ind.Sex,
		Email:         ind.Email,
		Phone:         ind.Phone,
		Groups:        ind.Groups,
		CurrentStatus: current,
		StatusHex:     hex,
		LastVisit:     lastVisitDate(visits),
		Complaints:    s.reconciler.ForIndividual(ctx, individualID, visits),
	}, nil
}

// ObservationPoint is one dated status observation for display.
type ObservationPoint struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// Timeline pairs the sparse observations with the forward-filled daily
// series derived from them.
type Timeline struct {
	Observations []ObservationPoint `json:"observations"`
	Daily        []status.DayStatus `json:"daily"`
}

func (s *Service) Timeline(ctx context.Context, individualID int) (Timeline, error) {
	if _, ok := s.roster.Individual(individualID); !ok {
		return Timeline{}, ErrUnknownIndividual
	}
	obs := s.observe(ctx, s.roster.Visits(individualID))

	points := make([]ObservationPoint, 0, len(obs))
	for _, o := range obs {
		points = append(points, ObservationPoint{Date: o.Date.Format("2006-01-02"), Status: o.Status})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	return Timeline{
		Observations: points,
		Daily:        status.BuildDaily(obs, s.now()),
	}, nil
}

// Heatmap is the calendar view: the coded daily series, the discrete
// colorscale to band it with, and the visit dates to emphasize. Focus
// narrows the input to visits naming that complaint.
type Heatmap struct {
	Focus          string             `json:"focus,omitempty"`
	Days           []status.DayStatus `json:"days"`
	Colorscale     []status.ColorStop `json:"colorscale"`
	VisitDates     []string           `json:"visit_dates"`
	ComplaintNames []string           `json:"complaint_names"`
}

func (s *Service) Heatmap(ctx context.Context, individualID int, focus string) (Heatmap, error) {
	if _, ok := s.roster.Individual(individualID); !ok {
		return Heatmap{}, ErrUnknownIndividual
	}
	visits, names := s.visitDetails(ctx, individualID, focus)

	var dates []string
	seen := make(map[string]struct{})
	var aps []juvonno.Appointment
	for _, v := range visits {
		aps = append(aps, v.ap)
		d := juvonno.TidyDate(v.ap.Date)
		if _, ok := seen[d]; d != "" && !ok {
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	return Heatmap{
		Focus:          focus,
		Days:           status.BuildDaily(s.observe(ctx, aps), s.now()),
		Colorscale:     status.VocabularyColorscale(),
		VisitDates:     dates,
		ComplaintNames: names,
	}, nil
}

// VisitRow is one line of the visit table.
type VisitRow struct {
	Date       string   `json:"date"`
	Status     string   `json:"status,omitempty"`
	StatusHex  string   `json:"status_hex,omitempty"`
	Complaints []string `json:"complaints"`
}

// Visits lists an individual's dated visits in chronological order, each
// with its resolved status and complaint names. Focus narrows to visits
// naming that complaint; visits without a parsable date are dropped.
func (s *Service) Visits(ctx context.Context, individualID int, focus string) ([]VisitRow, error) {
	if _, ok := s.roster.Individual(individualID); !ok {
		return nil, ErrUnknownIndividual
	}
	visits, _ := s.visitDetails(ctx, individualID, focus)

	rows := make([]VisitRow, 0, len(visits))
	for _, v := range visits {
		t, ok := juvonno.ParseDate(v.ap.Date)
		if !ok {
			continue
		}
		row := VisitRow{Date: t.Format("2006-01-02"), Complaints: v.names}
		if obs, ok := s.resolver.Observe(ctx, v.ap); ok {
			row.Status = obs.Status
			row.StatusHex, _ = status.ColorFor(obs.Status)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows, nil
}

type visitDetail struct {
	ap    juvonno.Appointment
	names []string
}

// visitDetails resolves complaint names per visit and applies the focus
// filter. The returned name union covers all visits plus the individual's
// reconciled complaints, regardless of focus.
func (s *Service) visitDetails(ctx context.Context, individualID int, focus string) ([]visitDetail, []string) {
	all := s.roster.Visits(individualID)

	nameSet := make(map[string]string)
	details := make([]visitDetail, 0, len(all))
	for _, ap := range all {
		names := s.reconciler.VisitComplaintNames(ctx, ap)
		for _, n := range names {
			nameSet[strings.ToLower(n)] = n
		}
		details = append(details, visitDetail{ap: ap, names: names})
	}
	for _, c := range s.reconciler.ForIndividual(ctx, individualID, all) {
		if c.Title != "" {
			nameSet[strings.ToLower(c.Title)] = c.Title
		}
	}

	union := make([]string, 0, len(nameSet))
	for _, n := range nameSet {
		union = append(union, n)
	}
	sort.Strings(union)

	focus = strings.TrimSpace(focus)
	if focus == "" {
		return details, union
	}
	folded := strings.ToLower(focus)
	filtered := details[:0]
	for _, v := range details {
		for _, n := range v.names {
			if strings.ToLower(n) == folded {
				filtered = append(filtered, v)
				break
			}
		}
	}
	return filtered, union
}

// Groups is the roster's group vocabulary.
func (s *Service) Groups() []string {
	return s.roster.Groups()
}

// Individuals lists roster members, optionally restricted to groups.
func (s *Service) Individuals(groups []string) []roster.Individual {
	return s.roster.FilterByGroups(groups)
}

// observe maps visits to status observations, skipping the ones that
// contribute none.
func (s *Service) observe(ctx context.Context, visits []juvonno.Appointment) []status.Observation {
	var obs []status.Observation
	for _, ap := range visits {
		if o, ok := s.resolver.Observe(ctx, ap); ok {
			obs = append(obs, o)
		}
	}
	return obs
}

func lastVisitDate(visits []juvonno.Appointment) string {
	var last time.Time
	found := false
	for _, ap := range visits {
		if t, ok := juvonno.ParseDate(ap.Date); ok && (!found || t.After(last)) {
			last = t
			found = true
		}
	}
	if !found {
		return ""
	}
	return last.Format("2006-01-02")
}
