package rows

import (
	"cmp"
	"slices"
	"strings"
)

// Record is one group as described by its source system, before it is
// flattened against its parents.
type Record struct {
	Key                   string   `json:"key"`
	Summary               string   `json:"summary"`
	URL                   string   `json:"url,omitempty"`
	Status                string   `json:"status,omitempty"`
	Chair                 string   `json:"chair,omitempty"`
	ChairEmail            string   `json:"chair_email,omitempty"`
	ChairAffiliation      string   `json:"chair_affiliation,omitempty"`
	ViceChair             string   `json:"vice_chair,omitempty"`
	ViceChairEmail        string   `json:"vice_chair_email,omitempty"`
	ViceChairAffiliation  string   `json:"vice_chair_affiliation,omitempty"`
	Charter               string   `json:"charter,omitempty"`
	ConfluenceSpace       string   `json:"confluence_space,omitempty"`
	MailingList           string   `json:"mailing_list,omitempty"`
	ActivityLevel         string   `json:"activity_level,omitempty"`
	MeetingNotes          string   `json:"meeting_notes,omitempty"`
	CreationDate          string   `json:"creation_date,omitempty"`
	NextElectionMonth     string   `json:"next_election_month,omitempty"`
	NextElectionYear      string   `json:"next_election_year,omitempty"`
	LastElectionMonth     string   `json:"last_election_month,omitempty"`
	LastElectionYear      string   `json:"last_election_year,omitempty"`
	IsActingChair         bool     `json:"is_acting_chair,omitempty"`
	IsActingViceChair     bool     `json:"is_acting_vice_chair,omitempty"`
	RecharterApprovalDate string   `json:"recharter_approval_date,omitempty"`
	Emails                []string `json:"emails,omitempty"`
	LinkType              string   `json:"link_type,omitempty"`
}

// Group pairs a record with the records it is linked to as parents.
type Group struct {
	Issue  Record   `json:"issue"`
	Linked []Record `json:"linked_issues"`
}

// Expand flattens groups into rows: one row per linked parent, or a single
// parentless row when a group has no links. Rows are sorted by parent name
// (parentless rows last), then by ID, so rows sharing a parent are adjacent.
func Expand(groups []Group) []Row {
	var out []Row
	for _, g := range groups {
		base := fromRecord(g.Issue)
		if len(g.Linked) == 0 {
			out = append(out, base)
			continue
		}
		for _, p := range g.Linked {
			r := base
			r.ParentName = p.Summary
			r.ParentChair = p.Chair
			r.ParentChairEmail = p.ChairEmail
			r.ParentChairAffiliation = p.ChairAffiliation
			r.ParentViceChair = p.ViceChair
			r.ParentViceChairEmail = p.ViceChairEmail
			r.ParentViceChairAffiliation = p.ViceChairAffiliation
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b Row) int {
		if (a.ParentName == "") != (b.ParentName == "") {
			if a.ParentName == "" {
				return 1
			}
			return -1
		}
		return cmp.Or(cmp.Compare(a.ParentName, b.ParentName), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func fromRecord(rec Record) Row {
	return Row{
		ID:                   rec.Key,
		Name:                 rec.Summary,
		Status:               rec.Status,
		Chair:                rec.Chair,
		ChairEmail:           rec.ChairEmail,
		ChairAffiliation:     rec.ChairAffiliation,
		ViceChair:            rec.ViceChair,
		ViceChairEmail:       rec.ViceChairEmail,
		ViceChairAffiliation: rec.ViceChairAffiliation,
		URL:                  rec.URL,
		CreatedAt:            rec.CreationDate,
		Charter:              rec.Charter,
		Confluence:           rec.ConfluenceSpace,
		MailingList:          rec.MailingList,
		ActivityLevel:        rec.ActivityLevel,
		MeetingNotes:         rec.MeetingNotes,
		NextElection:         joinDate(rec.NextElectionMonth, rec.NextElectionYear),
		LastElection:         joinDate(rec.LastElectionMonth, rec.LastElectionYear),
		ActingChair:          rec.IsActingChair,
		ActingVice:           rec.IsActingViceChair,
	}
}

func joinDate(month, year string) string {
	return strings.TrimSpace(month + " " + year)
}
