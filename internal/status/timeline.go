package status

import "time"

// Observation is one (date, status) pair derived from a visit's
// authoritative encounter.
type Observation struct {
	Date   time.Time
	Status string
}

// DayStatus is one calendar day of the reconstructed timeline.
type DayStatus struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
	Code   int       `json:"code"`
}

// BuildDaily turns sparse status observations into a complete daily series
// from the earliest observation through today, forward-filling days without
// an explicit observation. Observations with an invalid status or zero date
// are discarded; when several observations share a day the one inserted last
// wins. An empty input yields an empty series, the caller's signal that the
// current status is undetermined.
func BuildDaily(observations []Observation, today time.Time) []DayStatus {
	byDay := make(map[time.Time]string)
	var first time.Time
	for _, obs := range observations {
		if obs.Date.IsZero() || !Valid(obs.Status) {
			continue
		}
		day := midnight(obs.Date)
		byDay[day] = obs.Status
		if first.IsZero() || day.Before(first) {
			first = day
		}
	}
	if len(byDay) == 0 {
		return nil
	}

	end := midnight(today)
	if end.Before(first) {
		return nil
	}

	series := make([]DayStatus, 0, int(end.Sub(first).Hours()/24)+1)
	current := ""
	for day := first; !day.After(end); day = day.AddDate(0, 0, 1) {
		if s, ok := byDay[day]; ok {
			current = s
		}
		series = append(series, DayStatus{Date: day, Status: current, Code: Code(current)})
	}
	return series
}

// Current returns the status of the last day in a series, or empty.
func Current(series []DayStatus) string {
	if len(series) == 0 {
		return ""
	}
	return series[len(series)-1].Status
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
