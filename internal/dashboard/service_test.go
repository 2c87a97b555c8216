package dashboard

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mklimstra/Juvonno-test/internal/complaints"
	"github.com/mklimstra/Juvonno-test/internal/juvonno"
	"github.com/mklimstra/Juvonno-test/internal/roster"
	"github.com/mklimstra/Juvonno-test/internal/status"
)

// fakeUpstream stands in for the Juvonno client across every service.
type fakeUpstream struct {
	customers  []juvonno.Record
	appts      []juvonno.Record
	encounters map[int][]int
	payloads   map[int]any
	complaints map[int][]juvonno.Record
	byAppt     map[int][]juvonno.Record
}

func (f *fakeUpstream) ListCustomers(_ context.Context) ([]juvonno.Record, error) {
	return f.customers, nil
}

func (f *fakeUpstream) ListAppointments(_ context.Context, _ int, _ string) ([]juvonno.Record, error) {
	return f.appts, nil
}

func (f *fakeUpstream) EncounterIDs(_ context.Context, appointmentID int) ([]int, error) {
	return f.encounters[appointmentID], nil
}

func (f *fakeUpstream) FetchEncounter(_ context.Context, id int) (any, error) {
	p, ok := f.payloads[id]
	if !ok {
		return nil, juvonno.ErrNotFound
	}
	return p, nil
}

func (f *fakeUpstream) ListCustomerComplaints(_ context.Context, customerID int) ([]juvonno.Record, error) {
	return f.complaints[customerID], nil
}

func (f *fakeUpstream) SearchComplaints(_ context.Context, _ int) ([]juvonno.Record, error) {
	return nil, nil
}

func (f *fakeUpstream) ListAppointmentComplaints(_ context.Context, appointmentID int) ([]juvonno.Record, error) {
	return f.byAppt[appointmentID], nil
}

func (f *fakeUpstream) FetchComplaint(_ context.Context, _ int) (juvonno.Record, error) {
	return nil, juvonno.ErrNotFound
}

func encounterPayload(date, value string) map[string]any {
	return map[string]any{
		"date":   date,
		"fields": []any{map[string]any{"id": "id_select_2", "value": value}},
	}
}

func testUpstream() *fakeUpstream {
	return &fakeUpstream{
		customers: []juvonno.Record{
			{"id": float64(1), "first_name": "Ana", "last_name": "Blake", "groups": []any{"rowing"}},
		},
		appts: []juvonno.Record{
			{"id": float64(10), "date": "2024-01-10", "customer": map[string]any{"id": float64(1)}},
			{"id": float64(11), "date": "2024-01-20", "customer": map[string]any{"id": float64(1)}},
		},
		encounters: map[int][]int{10: {100}, 11: {101}},
		payloads: map[int]any{
			100: encounterPayload("2024-01-10", status.Vocabulary[0]),
			101: encounterPayload("2024-01-20", status.Vocabulary[2]),
		},
		complaints: map[int][]juvonno.Record{
			1: {{"name": "Knee pain", "onset_date": "2024-01-05", "status": "Open"}},
		},
		byAppt: map[int][]juvonno.Record{
			10: {{"name": "Knee pain"}},
		},
	}
}

func newTestService(t *testing.T, up *fakeUpstream, today time.Time) *Service {
	t.Helper()
	ros := roster.NewService(up, 1, "2000-01-01", nil)
	if err := ros.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	svc := NewService(
		ros,
		status.NewResolver(up, nil, nil, nil),
		complaints.NewReconciler(up, nil, nil, nil),
		nil,
	)
	svc.now = func() time.Time { return today }
	return svc
}

func TestSummary(t *testing.T) {
	svc := newTestService(t, testUpstream(), time.Date(2024, 1, 25, 12, 0, 0, 0, time.UTC))

	got, err := svc.Summary(context.Background(), 1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.Label != "Ana Blake (ID 1)" {
		t.Fatalf("label = %q", got.Label)
	}
	if got.CurrentStatus != status.Vocabulary[2] {
		t.Fatalf("current status = %q", got.CurrentStatus)
	}
	if got.StatusHex != status.PastelColors[2] {
		t.Fatalf("status hex = %q", got.StatusHex)
	}
	if got.LastVisit != "2024-01-20" {
		t.Fatalf("last visit = %q", got.LastVisit)
	}
	if len(got.Complaints) != 1 || got.Complaints[0].Title != "Knee pain" {
		t.Fatalf("complaints = %+v", got.Complaints)
	}
	if !reflect.DeepEqual(got.Groups, []string{"rowing"}) {
		t.Fatalf("groups = %v", got.Groups)
	}
}

func TestSummaryUnknownIndividual(t *testing.T) {
	svc := newTestService(t, testUpstream(), time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC))
	if _, err := svc.Summary(context.Background(), 99); !errors.Is(err, ErrUnknownIndividual) {
		t.Fatalf("err = %v, want ErrUnknownIndividual", err)
	}
}

func TestSummaryDegradesWithoutObservations(t *testing.T) {
	up := testUpstream()
	up.encounters = nil
	up.complaints = nil
	up.byAppt = nil
	svc := newTestService(t, up, time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC))

	got, err := svc.Summary(context.Background(), 1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.CurrentStatus != "" || got.StatusHex != "" {
		t.Fatalf("status = %q/%q, want empty", got.CurrentStatus, got.StatusHex)
	}
	if len(got.Complaints) != 0 {
		t.Fatalf("complaints = %+v, want none", got.Complaints)
	}
	if got.LastVisit != "2024-01-20" {
		t.Fatalf("last visit = %q", got.LastVisit)
	}
}

func TestTimeline(t *testing.T) {
	svc := newTestService(t, testUpstream(), time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC))

	got, err := svc.Timeline(context.Background(), 1)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	wantObs := []ObservationPoint{
		{Date: "2024-01-10", Status: status.Vocabulary[0]},
		{Date: "2024-01-20", Status: status.Vocabulary[2]},
	}
	if !reflect.DeepEqual(got.Observations, wantObs) {
		t.Fatalf("observations = %+v", got.Observations)
	}
	if len(got.Daily) != 16 {
		t.Fatalf("daily length = %d, want 16", len(got.Daily))
	}
	if got.Daily[9].Status != status.Vocabulary[0] || got.Daily[10].Status != status.Vocabulary[2] {
		t.Fatalf("transition days = %+v / %+v", got.Daily[9], got.Daily[10])
	}
}

func TestHeatmapFocus(t *testing.T) {
	svc := newTestService(t, testUpstream(), time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC))

	got, err := svc.Heatmap(context.Background(), 1, "KNEE PAIN")
	if err != nil {
		t.Fatalf("heatmap: %v", err)
	}
	if !reflect.DeepEqual(got.VisitDates, []string{"2024-01-10"}) {
		t.Fatalf("visit dates = %v", got.VisitDates)
	}
	// Only the focused visit contributes, so its status fills forward.
	for _, d := range got.Days {
		if d.Status != status.Vocabulary[0] {
			t.Fatalf("day %v = %q", d.Date, d.Status)
		}
	}
	if len(got.Days) != 16 {
		t.Fatalf("days = %d, want 16", len(got.Days))
	}
	if !reflect.DeepEqual(got.ComplaintNames, []string{"Knee pain"}) {
		t.Fatalf("complaint names = %v", got.ComplaintNames)
	}
	if len(got.Colorscale) != 9 {
		t.Fatalf("colorscale stops = %d", len(got.Colorscale))
	}
}

func TestHeatmapNoFocusUsesAllVisits(t *testing.T) {
	svc := newTestService(t, testUpstream(), time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC))

	got, err := svc.Heatmap(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("heatmap: %v", err)
	}
	if !reflect.DeepEqual(got.VisitDates, []string{"2024-01-10", "2024-01-20"}) {
		t.Fatalf("visit dates = %v", got.VisitDates)
	}
	if got.Days[len(got.Days)-1].Status != status.Vocabulary[2] {
		t.Fatalf("last day = %+v", got.Days[len(got.Days)-1])
	}
}

func TestVisits(t *testing.T) {
	svc := newTestService(t, testUpstream(), time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC))

	rows, err := svc.Visits(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("visits: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Date != "2024-01-10" || rows[0].Status != status.Vocabulary[0] || rows[0].StatusHex != status.PastelColors[0] {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if !reflect.DeepEqual(rows[0].Complaints, []string{"Knee pain"}) {
		t.Fatalf("row 0 complaints = %v", rows[0].Complaints)
	}
	if rows[1].Date != "2024-01-20" || len(rows[1].Complaints) != 0 {
		t.Fatalf("row 1 = %+v", rows[1])
	}

	focused, err := svc.Visits(context.Background(), 1, "knee pain")
	if err != nil {
		t.Fatalf("visits focused: %v", err)
	}
	if len(focused) != 1 || focused[0].Date != "2024-01-10" {
		t.Fatalf("focused rows = %+v", focused)
	}
}
