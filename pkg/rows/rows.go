// Package rows defines the flat group records the hierarchy is built from
// and readers for the file formats they arrive in.
//
// A [Row] describes one governance group and, optionally, the group it
// reports to. The same group can appear in several rows when it has
// several parents; the graph builder merges them.
//
// Supported formats are CSV (the grouped export with one column per
// field), JSON (an array of rows or the raw issue-and-links fetch result)
// and YAML. [ReadFile] picks the reader from the file extension.
package rows

import (
	"strings"
)

// StatusActive is the status value kept by [ActiveOnly].
const StatusActive = "Active"

// Row is one group record.
type Row struct {
	ID                   string `json:"id,omitempty" yaml:"id,omitempty"`
	Name                 string `json:"name" yaml:"name"`
	Status               string `json:"status,omitempty" yaml:"status,omitempty"`
	ParentName           string `json:"parent_name,omitempty" yaml:"parent_name,omitempty"`
	Chair                string `json:"chair,omitempty" yaml:"chair,omitempty"`
	ChairAffiliation     string `json:"chair_affiliation,omitempty" yaml:"chair_affiliation,omitempty"`
	ChairEmail           string `json:"chair_email,omitempty" yaml:"chair_email,omitempty"`
	ViceChair            string `json:"vice_chair,omitempty" yaml:"vice_chair,omitempty"`
	ViceChairAffiliation string `json:"vice_chair_affiliation,omitempty" yaml:"vice_chair_affiliation,omitempty"`
	ViceChairEmail       string `json:"vice_chair_email,omitempty" yaml:"vice_chair_email,omitempty"`

	ParentChair                string `json:"parent_chair,omitempty" yaml:"parent_chair,omitempty"`
	ParentChairAffiliation     string `json:"parent_chair_affiliation,omitempty" yaml:"parent_chair_affiliation,omitempty"`
	ParentChairEmail           string `json:"parent_chair_email,omitempty" yaml:"parent_chair_email,omitempty"`
	ParentViceChair            string `json:"parent_vice_chair,omitempty" yaml:"parent_vice_chair,omitempty"`
	ParentViceChairAffiliation string `json:"parent_vice_chair_affiliation,omitempty" yaml:"parent_vice_chair_affiliation,omitempty"`
	ParentViceChairEmail       string `json:"parent_vice_chair_email,omitempty" yaml:"parent_vice_chair_email,omitempty"`

	// Descriptive fields carried into node metadata.
	URL           string `json:"url,omitempty" yaml:"url,omitempty"`
	CreatedAt     string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Charter       string `json:"charter,omitempty" yaml:"charter,omitempty"`
	Confluence    string `json:"confluence,omitempty" yaml:"confluence,omitempty"`
	MailingList   string `json:"mailing_list,omitempty" yaml:"mailing_list,omitempty"`
	ActivityLevel string `json:"activity_level,omitempty" yaml:"activity_level,omitempty"`
	MeetingNotes  string `json:"meeting_notes,omitempty" yaml:"meeting_notes,omitempty"`
	NextElection  string `json:"next_election,omitempty" yaml:"next_election,omitempty"`
	LastElection  string `json:"last_election,omitempty" yaml:"last_election,omitempty"`
	ActingChair   bool   `json:"acting_chair,omitempty" yaml:"acting_chair,omitempty"`
	ActingVice    bool   `json:"acting_vice_chair,omitempty" yaml:"acting_vice_chair,omitempty"`
}

// Malformed reports whether the row has neither an identifier nor a name.
func (r Row) Malformed() bool {
	return strings.TrimSpace(r.ID) == "" && strings.TrimSpace(r.Name) == ""
}

// IsActive reports whether the row's status is "Active", ignoring case
// and surrounding whitespace.
func (r Row) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(r.Status), StatusActive)
}

// Meta returns the descriptive fields of the row as metadata, omitting
// empty values.
func (r Row) Meta() map[string]any {
	m := map[string]any{}
	set := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			m[k] = v
		}
	}
	set("url", r.URL)
	set("created_at", r.CreatedAt)
	set("charter", r.Charter)
	set("confluence", r.Confluence)
	set("mailing_list", r.MailingList)
	set("activity_level", r.ActivityLevel)
	set("meeting_notes", r.MeetingNotes)
	set("next_election", r.NextElection)
	set("last_election", r.LastElection)
	if r.ActingChair {
		m["acting_chair"] = true
	}
	if r.ActingVice {
		m["acting_vice_chair"] = true
	}
	return m
}

// Normalize trims surrounding whitespace from every identity and
// leadership field.
func (r Row) Normalize() Row {
	for _, p := range []*string{
		&r.ID, &r.Name, &r.Status, &r.ParentName,
		&r.Chair, &r.ChairAffiliation, &r.ChairEmail,
		&r.ViceChair, &r.ViceChairAffiliation, &r.ViceChairEmail,
		&r.ParentChair, &r.ParentChairAffiliation, &r.ParentChairEmail,
		&r.ParentViceChair, &r.ParentViceChairAffiliation, &r.ParentViceChairEmail,
	} {
		*p = strings.TrimSpace(*p)
	}
	return r
}

// ActiveOnly returns the rows whose status is "Active", preserving order.
func ActiveOnly(rs []Row) []Row {
	out := make([]Row, 0, len(rs))
	for _, r := range rs {
		if r.IsActive() {
			out = append(out, r)
		}
	}
	return out
}

// Filter applies the active-only filter when active is true and returns
// rs unchanged otherwise.
func Filter(rs []Row, active bool) []Row {
	if !active {
		return rs
	}
	return ActiveOnly(rs)
}
