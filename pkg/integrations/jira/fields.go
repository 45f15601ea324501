package jira

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/orgtower/pkg/rows"
)

// Custom field IDs of the governance project.
const (
	FieldChair                 = "customfield_10092"
	FieldChairEmail            = "customfield_10093"
	FieldChairAffiliation      = "customfield_10096"
	FieldViceChair             = "customfield_10099"
	FieldViceChairEmail        = "customfield_10100"
	FieldViceChairAffiliation  = "customfield_10103"
	FieldCharter               = "customfield_10086"
	FieldConfluenceSpace       = "customfield_10122"
	FieldMailingList           = "customfield_10071"
	FieldActivityLevel         = "customfield_10145"
	FieldMeetingNotes          = "customfield_10088"
	FieldCreationDate          = "customfield_10090"
	FieldNextElectionMonth     = "customfield_10312"
	FieldNextElectionYear      = "customfield_10313"
	FieldLastElectionMonth     = "customfield_10311"
	FieldLastElectionYear      = "customfield_10310"
	FieldIsActingChair         = "customfield_10094"
	FieldIsActingViceChair     = "customfield_10102"
	FieldRecharterApprovalDate = "customfield_10643"
)

// Fields is the field list requested for every issue.
var Fields = []string{
	"summary",
	"status",
	"issuelinks",
	FieldChair,
	FieldChairEmail,
	FieldChairAffiliation,
	FieldViceChair,
	FieldViceChairEmail,
	FieldViceChairAffiliation,
	FieldCharter,
	FieldConfluenceSpace,
	FieldMailingList,
	FieldActivityLevel,
	FieldMeetingNotes,
	FieldCreationDate,
	FieldNextElectionMonth,
	FieldNextElectionYear,
	FieldLastElectionMonth,
	FieldLastElectionYear,
	FieldIsActingChair,
	FieldIsActingViceChair,
	FieldRecharterApprovalDate,
}

// LinkTypes are the link names, matched case-insensitively as substrings
// of a link's inward or outward name, that point at a parent group.
var LinkTypes = []string{
	"is direct-lined by",
	"is governed by",
}

var emailSep = regexp.MustCompile(`[,;\s]+`)

// ExtractEmails returns the addresses in a Jira email field. Strings are
// split on commas, semicolons and whitespace; lists may hold strings or
// user objects. Entries without "@" are dropped.
func ExtractEmails(v any) []string {
	var out []string
	switch v := v.(type) {
	case string:
		for _, p := range emailSep.Split(v, -1) {
			if p = strings.TrimSpace(p); p != "" && strings.Contains(p, "@") {
				out = append(out, p)
			}
		}
	case []any:
		for _, item := range v {
			switch item := item.(type) {
			case map[string]any:
				if s, _ := item["emailAddress"].(string); s != "" {
					out = append(out, s)
				}
			case string:
				if strings.Contains(item, "@") {
					out = append(out, item)
				}
			}
		}
	}
	return out
}

// user holds the parts of a Jira user field.
type user struct {
	name, email string
}

// userField reads a user object or a plain display name.
func userField(v any) user {
	switch v := v.(type) {
	case map[string]any:
		name, _ := v["displayName"].(string)
		email, _ := v["emailAddress"].(string)
		return user{name: name, email: email}
	case string:
		return user{name: v}
	}
	return user{}
}

// urlField reads a URL given as a string or as an object with href or url.
func urlField(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case map[string]any:
		return firstString(v, "href", "url")
	}
	return ""
}

// optionField reads a select field given as a string or an option object.
func optionField(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]any:
		return firstString(v, "value", "name")
	}
	return ""
}

// checkboxField reads a checkbox as a bool, a yes/no option or a list of
// options where the first one counts.
func checkboxField(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case []any:
		if len(v) == 0 {
			return false
		}
		return checkboxField(v[0])
	case map[string]any:
		s, _ := v["value"].(string)
		return strings.EqualFold(s, "yes")
	case string:
		switch strings.ToLower(v) {
		case "yes", "true", "1":
			return true
		}
	}
	return false
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, _ := m[k].(string); s != "" {
			return s
		}
	}
	return ""
}

// record converts an Issue into a rows.Record. Browse URLs are built
// from serverURL.
func record(serverURL string, is Issue) rows.Record {
	f := is.Fields
	chair := userField(f[FieldChair])
	vice := userField(f[FieldViceChair])

	chairEmail := chair.email
	if s, ok := f[FieldChairEmail].(string); ok {
		chairEmail = s
	}
	viceEmail := vice.email
	if s, ok := f[FieldViceChairEmail].(string); ok {
		viceEmail = s
	}

	var emails []string
	for _, e := range append(ExtractEmails(chairEmail), ExtractEmails(viceEmail)...) {
		if !slices.Contains(emails, e) {
			emails = append(emails, e)
		}
	}

	summary, _ := f["summary"].(string)
	created, _ := f[FieldCreationDate].(string)
	recharter, _ := f[FieldRecharterApprovalDate].(string)
	var status string
	if m, ok := f["status"].(map[string]any); ok {
		status, _ = m["name"].(string)
	}

	return rows.Record{
		Key:                   is.Key,
		Summary:               summary,
		URL:                   strings.TrimRight(serverURL, "/") + "/browse/" + is.Key,
		Status:                status,
		Chair:                 chair.name,
		ChairEmail:            chairEmail,
		ChairAffiliation:      optionField(f[FieldChairAffiliation]),
		ViceChair:             vice.name,
		ViceChairEmail:        viceEmail,
		ViceChairAffiliation:  optionField(f[FieldViceChairAffiliation]),
		Charter:               urlField(f[FieldCharter]),
		ConfluenceSpace:       urlField(f[FieldConfluenceSpace]),
		MailingList:           urlField(f[FieldMailingList]),
		ActivityLevel:         optionField(f[FieldActivityLevel]),
		MeetingNotes:          urlField(f[FieldMeetingNotes]),
		CreationDate:          created,
		NextElectionMonth:     optionField(f[FieldNextElectionMonth]),
		NextElectionYear:      optionField(f[FieldNextElectionYear]),
		LastElectionMonth:     optionField(f[FieldLastElectionMonth]),
		LastElectionYear:      optionField(f[FieldLastElectionYear]),
		IsActingChair:         checkboxField(f[FieldIsActingChair]),
		IsActingViceChair:     checkboxField(f[FieldIsActingViceChair]),
		RecharterApprovalDate: recharter,
		Emails:                emails,
	}
}

// linkRef is a parent reference found in an issue's links.
type linkRef struct {
	key, linkType string
}

// parentLinks returns the linked issues whose link type matches one of
// types, preferring the inward side.
func parentLinks(is Issue, types []string) []linkRef {
	var out []linkRef
	for _, l := range is.links() {
		inward, outward := strings.ToLower(l.Type.Inward), strings.ToLower(l.Type.Outward)
		for _, t := range types {
			t = strings.ToLower(t)
			if strings.Contains(inward, t) && l.InwardIssue != nil {
				out = append(out, linkRef{key: l.InwardIssue.Key, linkType: l.Type.Name})
				break
			}
			if strings.Contains(outward, t) && l.OutwardIssue != nil {
				out = append(out, linkRef{key: l.OutwardIssue.Key, linkType: l.Type.Name})
				break
			}
		}
	}
	return out
}
