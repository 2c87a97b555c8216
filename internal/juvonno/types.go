package juvonno

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is one raw JSON object from the Juvonno API. The upstream schema is
// not contractually fixed, so records stay untyped and are probed by key.
type Record = map[string]any

// Appointment is the normalized view of one visit record.
type Appointment struct {
	ID         int
	Date       string
	CustomerID int
	// Complaint is the inline complaint object embedded in the visit, if any.
	Complaint Record
	Raw       Record
}

// AppointmentFromRecord normalizes a raw appointment record. Records without
// a usable id produce ID 0 and are skipped by callers.
func AppointmentFromRecord(rec Record) Appointment {
	ap := Appointment{
		ID:   IntField(rec, "id"),
		Date: TidyDate(rec["date"]),
		Raw:  rec,
	}
	if cust, ok := rec["customer"].(map[string]any); ok {
		ap.CustomerID = IntField(cust, "id")
	}
	if inline, ok := rec["complaint"].(map[string]any); ok {
		ap.Complaint = inline
	}
	return ap
}

// TidyDate extracts a plain calendar date from the upstream date field, which
// arrives either as a string or as a range object whose start matters.
func TidyDate(raw any) string {
	if m, ok := raw.(map[string]any); ok {
		raw = m["start"]
	}
	s, ok := raw.(string)
	if !ok {
		if raw == nil {
			return ""
		}
		return fmt.Sprint(raw)
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

// StringField returns the first non-empty string value among keys.
func StringField(rec Record, keys ...string) string {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// IntField returns the first value among keys coercible to a positive int.
// Upstream ids arrive as JSON numbers or numeric strings interchangeably.
func IntField(rec Record, keys ...string) int {
	for _, k := range keys {
		if n, ok := coerceInt(rec[k]); ok {
			return n
		}
	}
	return 0
}

// dateLayouts are the calendar formats the upstream is known to emit.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// ParseDate parses an upstream calendar date at UTC midnight. The boolean is
// false for unparsable input, which callers silently discard.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}
