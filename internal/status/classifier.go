package status

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// reservedFieldKey is the form-builder id of the training-status select
	// field in encounter charts.
	reservedFieldKey = "id_select_2"

	statusFieldPhrase = "training status"
)

// ExtractTrainingStatus searches an encounter payload, an arbitrarily nested
// tree of objects and arrays, for the training-status field and returns its
// value. A node qualifies when its field id equals the reserved key, or its
// name/label/title contains "training status" (case-insensitive), and its
// whitespace-normalized value is one of the vocabulary entries.
//
// The walk is depth-first with object keys visited in sorted order, so the
// result is deterministic; the first qualifying match wins. An empty result
// means no status was recorded, which is not an error.
func ExtractTrainingStatus(payload any) string {
	return walkForStatus(payload)
}

func walkForStatus(node any) string {
	switch n := node.(type) {
	case map[string]any:
		if v := matchStatusNode(n); v != "" {
			return v
		}
		keys := make([]string, 0, len(n))
		for k, v := range n {
			switch v.(type) {
			case map[string]any, []any:
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v := walkForStatus(n[k]); v != "" {
				return v
			}
		}
	case []any:
		for _, item := range n {
			if v := walkForStatus(item); v != "" {
				return v
			}
		}
	}
	return ""
}

func matchStatusNode(n map[string]any) string {
	value := collapseWhitespace(stringValue(n["value"]))
	if !Valid(value) {
		return ""
	}

	id := strings.ToLower(stringValue(n["id"]))
	if id == reservedFieldKey {
		return value
	}

	name := n["name"]
	if name == nil || stringValue(name) == "" {
		name = n["label"]
	}
	if name == nil || stringValue(name) == "" {
		name = n["title"]
	}
	normalized := strings.ToLower(collapseWhitespace(stringValue(name)))
	if strings.Contains(normalized, statusFieldPhrase) {
		return value
	}
	return ""
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
