// Package status derives an individual's authoritative training status from
// clinical encounter payloads: classification, per-visit resolution, the
// forward-filled daily timeline and the discrete calendar color scale.
package status

// Vocabulary is the fixed, ordered set of recognized training-status values.
// Order matters: the index of an entry is its status code.
var Vocabulary = []string{
	"Full participation without injury/illness/other health problems",
	"Full participation with injury/illness/other health problems",
	"Reduced participation with injury/illness/other health problems",
	"No participation due to injury/illness/other health problems",
	"No participation unrelated to injury/illness/other health problems",
}

// PastelColors holds the display color for each vocabulary entry, in
// vocabulary order.
var PastelColors = []string{
	"#BDE7BD", // pastel green
	"#D6F2C6", // lighter green
	"#FFD9A8", // pastel orange
	"#F5B1B1", // pastel red
	"#D8C6F0", // pastel purple
}

// CodeUnknown marks a day without a usable status.
const CodeUnknown = -1

var codeByStatus = func() map[string]int {
	m := make(map[string]int, len(Vocabulary))
	for i, s := range Vocabulary {
		m[s] = i
	}
	return m
}()

// Code returns the vocabulary index for a status value, or CodeUnknown.
func Code(status string) int {
	if code, ok := codeByStatus[status]; ok {
		return code
	}
	return CodeUnknown
}

// Valid reports whether status is one of the vocabulary values.
func Valid(status string) bool {
	_, ok := codeByStatus[status]
	return ok
}

// ColorFor returns the display color for a vocabulary value.
func ColorFor(status string) (string, bool) {
	code := Code(status)
	if code == CodeUnknown {
		return "", false
	}
	return PastelColors[code], true
}
