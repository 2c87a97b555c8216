package complaints

import (
	"strconv"
	"strings"

	"github.com/mklimstra/Juvonno-test/internal/juvonno"
)

// Complaint is one reconciled issue for an individual. Onset is rendered
// YYYY-MM-DD when the raw value parses as a date, verbatim otherwise.
type Complaint struct {
	ID       int    `json:"id,omitempty"`
	Title    string `json:"title"`
	Onset    string `json:"onset"`
	Priority string `json:"priority"`
	Status   string `json:"status"`
}

// statusPlaceholder marks complaints where no source supplied a status.
const statusPlaceholder = "—"

var (
	titleKeys    = []string{"name", "title", "problem", "injury", "body_part", "complaint"}
	onsetKeys    = []string{"onset_date", "onsetDate", "onset", "start_date", "date", "injury_onset"}
	priorityKeys = []string{"priority", "priority_name", "priorityName", "priority_level"}
	statusKeys   = []string{"status", "status_name", "statusName", "state", "complaint_status"}
	idKeys       = []string{"id", "complaint_id", "complaintId"}
)

// ExtractName pulls a human-readable complaint title out of a raw record:
// the first non-empty string among the known title fields.
func ExtractName(rec juvonno.Record) string {
	return juvonno.StringField(rec, titleKeys...)
}

// normalize maps one raw upstream record into a Complaint. The status
// placeholder is deliberately not applied here: an empty Status must stay
// empty so a later source can still fill it during the merge.
func normalize(rec juvonno.Record) Complaint {
	return Complaint{
		ID:       juvonno.IntField(rec, idKeys...),
		Title:    ExtractName(rec),
		Onset:    formatOnset(juvonno.StringField(rec, onsetKeys...)),
		Priority: juvonno.StringField(rec, priorityKeys...),
		Status:   juvonno.StringField(rec, statusKeys...),
	}
}

// formatOnset renders a parsable date as YYYY-MM-DD and leaves anything
// else untouched for display.
func formatOnset(raw string) string {
	raw = strings.TrimSpace(juvonno.TidyDate(raw))
	if raw == "" {
		return ""
	}
	if t, ok := juvonno.ParseDate(raw); ok {
		return t.Format("2006-01-02")
	}
	return raw
}

// dedupeKey identifies the real-world issue behind a record: external id
// when present, else the case-folded title. Records with neither are noise
// and get no key.
func (c Complaint) dedupeKey() string {
	if c.ID > 0 {
		return "id:" + strconv.Itoa(c.ID)
	}
	if t := strings.ToLower(strings.TrimSpace(c.Title)); t != "" {
		return "title:" + t
	}
	return ""
}

// needsEnrichment reports whether a record is bare enough to justify a
// detail fetch: an external id but none of the descriptive fields.
func (c Complaint) needsEnrichment() bool {
	return c.ID > 0 && c.Onset == "" && c.Priority == "" && c.Status == ""
}

// mergeFrom fills each still-empty field from other, never overwriting.
func (c *Complaint) mergeFrom(other Complaint) {
	if c.Priority == "" {
		c.Priority = other.Priority
	}
	if c.Status == "" {
		c.Status = other.Status
	}
	if c.Onset == "" {
		c.Onset = other.Onset
	}
	if c.Title == "" {
		c.Title = other.Title
	}
}
