package rows

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported row file formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned by [ReadFile] and [DetectFormat] when the
// file extension maps to no supported format.
var ErrUnknownFormat = errors.New("unknown row file format")

// Column names of the grouped CSV export, in output order.
const (
	colIssue                = "Issue"
	colSummary              = "Summary"
	colStatus               = "Status"
	colCreationDate         = "Creation Date"
	colRecharter            = "Recharter Approval Date"
	colCharter              = "Charter"
	colConfluence           = "Confluence Space"
	colMailingList          = "Mailing List"
	colActivityLevel        = "Activity Level"
	colMeetingNotes         = "Meeting Notes"
	colNextElectionMonth    = "Next Election Month"
	colNextElectionYear     = "Next Election Year"
	colLastElectionMonth    = "Last Election Month"
	colLastElectionYear     = "Last Election Year"
	colChair                = "Chair"
	colChairEmail           = "Chair Email"
	colChairAffiliation     = "Chair Affiliation"
	colActingChair          = "Is Acting Chair"
	colViceChair            = "Vice-Chair"
	colViceChairEmail       = "Vice-Chair Email"
	colViceChairAffiliation = "Vice-Chair Affiliation"
	colActingViceChair      = "Is Acting Vice-Chair"
	colParent               = "Linked Issue Summary"
	colParentChair          = "Linked Issue Chair"
	colParentChairEmail     = "Linked Issue Chair Email"
	colParentChairAffil     = "Linked Issue Chair Affiliation"
	colParentViceChair      = "Linked Issue Vice-Chair"
	colParentViceChairEmail = "Linked Issue Vice-Chair Email"
	colParentViceChairAffil = "Linked Issue Vice-Chair Affiliation"
	colParentMailingList    = "Linked Issue Mailing List"
)

// CSVHeader is the column order written by [WriteCSV].
var CSVHeader = []string{
	colIssue, colSummary, colStatus, colCreationDate, colRecharter, colCharter,
	colConfluence, colMailingList, colActivityLevel, colMeetingNotes,
	colNextElectionMonth, colNextElectionYear, colLastElectionMonth, colLastElectionYear,
	colChair, colChairEmail, colChairAffiliation, colActingChair,
	colViceChair, colViceChairEmail, colViceChairAffiliation, colActingViceChair,
	colParent, colParentChair, colParentChairEmail, colParentChairAffil,
	colParentViceChair, colParentViceChairEmail, colParentViceChairAffil, colParentMailingList,
}

// DetectFormat maps a file path to a row format by extension.
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ReadFile reads rows from path, choosing the reader by file extension.
func ReadFile(path string) ([]Row, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format)
}

// Read decodes rows from r in the given format.
func Read(r io.Reader, format string) ([]Row, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ReadCSV decodes the grouped CSV export. Columns are matched by header
// name, so column order and extra columns do not matter; missing columns
// read as empty.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	var out []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		get := func(col string) string {
			if i, ok := idx[col]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		out = append(out, Row{
			ID:                         get(colIssue),
			Name:                       get(colSummary),
			Status:                     get(colStatus),
			ParentName:                 get(colParent),
			Chair:                      get(colChair),
			ChairAffiliation:           get(colChairAffiliation),
			ChairEmail:                 get(colChairEmail),
			ViceChair:                  get(colViceChair),
			ViceChairAffiliation:       get(colViceChairAffiliation),
			ViceChairEmail:             get(colViceChairEmail),
			ParentChair:                get(colParentChair),
			ParentChairAffiliation:     get(colParentChairAffil),
			ParentChairEmail:           get(colParentChairEmail),
			ParentViceChair:            get(colParentViceChair),
			ParentViceChairAffiliation: get(colParentViceChairAffil),
			ParentViceChairEmail:       get(colParentViceChairEmail),
			CreatedAt:                  get(colCreationDate),
			Charter:                    get(colCharter),
			Confluence:                 get(colConfluence),
			MailingList:                get(colMailingList),
			ActivityLevel:              get(colActivityLevel),
			MeetingNotes:               get(colMeetingNotes),
			NextElection:               joinDate(get(colNextElectionMonth), get(colNextElectionYear)),
			LastElection:               joinDate(get(colLastElectionMonth), get(colLastElectionYear)),
			ActingChair:                parseYes(get(colActingChair)),
			ActingVice:                 parseYes(get(colActingViceChair)),
		})
	}
}

// WriteCSV encodes rows in the grouped CSV layout read by [ReadCSV].
func WriteCSV(w io.Writer, rs []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range rs {
		nextMonth, nextYear := splitDate(r.NextElection)
		lastMonth, lastYear := splitDate(r.LastElection)
		rec := map[string]string{
			colIssue:                r.ID,
			colSummary:              r.Name,
			colStatus:               r.Status,
			colCreationDate:         r.CreatedAt,
			colCharter:              r.Charter,
			colConfluence:           r.Confluence,
			colMailingList:          r.MailingList,
			colActivityLevel:        r.ActivityLevel,
			colMeetingNotes:         r.MeetingNotes,
			colNextElectionMonth:    nextMonth,
			colNextElectionYear:     nextYear,
			colLastElectionMonth:    lastMonth,
			colLastElectionYear:     lastYear,
			colChair:                r.Chair,
			colChairEmail:           r.ChairEmail,
			colChairAffiliation:     r.ChairAffiliation,
			colActingChair:          yesNo(r.ActingChair),
			colViceChair:            r.ViceChair,
			colViceChairEmail:       r.ViceChairEmail,
			colViceChairAffiliation: r.ViceChairAffiliation,
			colActingViceChair:      yesNo(r.ActingVice),
			colParent:               r.ParentName,
			colParentChair:          r.ParentChair,
			colParentChairEmail:     r.ParentChairEmail,
			colParentChairAffil:     r.ParentChairAffiliation,
			colParentViceChair:      r.ParentViceChair,
			colParentViceChairEmail: r.ParentViceChairEmail,
			colParentViceChairAffil: r.ParentViceChairAffiliation,
		}
		fields := make([]string, len(CSVHeader))
		for i, col := range CSVHeader {
			fields[i] = rec[col]
		}
		if err := cw.Write(fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadJSON decodes either an array of rows or an array of [Group] values
// as produced by the fetch command. Groups are flattened with [Expand].
func ReadJSON(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(probe) > 0 {
		if _, ok := probe[0]["issue"]; ok {
			var groups []Group
			if err := json.Unmarshal(data, &groups); err != nil {
				return nil, fmt.Errorf("decode groups: %w", err)
			}
			return Expand(groups), nil
		}
	}

	var out []Row
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return out, nil
}

// WriteJSON encodes rows as an indented JSON array.
func WriteJSON(w io.Writer, rs []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if rs == nil {
		rs = []Row{}
	}
	return enc.Encode(rs)
}

// yamlDoc accepts both a bare list of rows and a document with a "groups" key.
type yamlDoc struct {
	Groups []Row `yaml:"groups"`
}

// ReadYAML decodes rows from a YAML list, or from the "groups" key of a
// YAML mapping.
func ReadYAML(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	doc := node.Content[0]
	if doc.Kind == yaml.MappingNode {
		var d yamlDoc
		if err := doc.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode groups: %w", err)
		}
		return d.Groups, nil
	}
	var out []Row
	if err := doc.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return out, nil
}

// WriteYAML encodes rows as a YAML list.
func WriteYAML(w io.Writer, rs []Row) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rs); err != nil {
		return err
	}
	return enc.Close()
}

func parseYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true
	}
	return false
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// splitDate splits "Month Year" at the last space.
func splitDate(s string) (month, year string) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, " ")
	if i < 0 {
		if _, err := strconv.Atoi(s); err == nil {
			return "", s
		}
		return s, ""
	}
	return s[:i], s[i+1:]
}
