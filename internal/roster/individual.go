package roster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mklimstra/Juvonno-test/internal/juvonno"
)

// Individual is the normalized view of one tracked person.
type Individual struct {
	ID        int      `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	DOB       string   `json:"dob"`
	Sex       string   `json:"sex"`
	Groups    []string `json:"groups"`
}

// Label is the display name used in selectors and summaries.
func (i Individual) Label() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return fmt.Sprintf("ID %d", i.ID)
	}
	return fmt.Sprintf("%s (ID %d)", name, i.ID)
}

// FromRecord normalizes a raw customer record. Records without a usable id
// produce ID 0 and are skipped by callers.
func FromRecord(rec juvonno.Record) Individual {
	return Individual{
		ID:        juvonno.IntField(rec, "id"),
		FirstName: juvonno.StringField(rec, "first_name"),
		LastName:  juvonno.StringField(rec, "last_name"),
		Email:     juvonno.StringField(rec, "email"),
		Phone:     juvonno.StringField(rec, "phone", "mobile"),
		DOB:       juvonno.StringField(rec, "dob", "birthdate"),
		Sex:       juvonno.StringField(rec, "sex", "gender"),
		Groups:    groupsOf(rec),
	}
}

// groupsOf extracts group memberships from a customer record. The upstream
// shape varies: a list of strings, a list of objects with a name, a single
// object, or a single string, under either "groups" or "group".
func groupsOf(rec juvonno.Record) []string {
	src, ok := rec["groups"]
	if !ok {
		src = rec["group"]
	}

	var names []string
	add := func(raw string) {
		if g := strings.ToLower(strings.TrimSpace(raw)); g != "" {
			names = append(names, g)
		}
	}
	switch v := src.(type) {
	case []any:
		for _, item := range v {
			switch it := item.(type) {
			case string:
				add(it)
			case map[string]any:
				add(juvonno.StringField(it, "name"))
			}
		}
	case map[string]any:
		add(juvonno.StringField(v, "name"))
	case string:
		add(v)
	}
	if len(names) == 0 {
		return nil
	}

	sort.Strings(names)
	out := names[:1]
	for _, g := range names[1:] {
		if g != out[len(out)-1] {
			out = append(out, g)
		}
	}
	return out
}
