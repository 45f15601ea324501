package rows

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `Issue,Summary,Status,Chair,Chair Email,Is Acting Chair,Next Election Month,Next Election Year,Linked Issue Summary,Linked Issue Chair
RVG-1,Example WG,Active,Ada,ada@example.org,Yes,March,2026,Example Committee (HC),Grace
RVG-2,Example Committee (HC),Active,Grace,,No,,,Technical Steering Committee (TSC),Linus
RVG-3,Dormant SIG,Inactive,,,,,,,
`

func TestReadCSV(t *testing.T) {
	rs, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rs) != 3 {
		t.Fatalf("ReadCSV() = %d rows, want 3", len(rs))
	}

	r := rs[0]
	if r.ID != "RVG-1" || r.Name != "Example WG" || r.ParentName != "Example Committee (HC)" {
		t.Errorf("row 0 identity = %+v", r)
	}
	if r.ParentChair != "Grace" || r.Chair != "Ada" || r.ChairEmail != "ada@example.org" {
		t.Errorf("row 0 leadership = %+v", r)
	}
	if !r.ActingChair {
		t.Error("ActingChair = false, want true")
	}
	if r.NextElection != "March 2026" {
		t.Errorf("NextElection = %q, want %q", r.NextElection, "March 2026")
	}
	if rs[2].ParentName != "" {
		t.Errorf("row 2 ParentName = %q, want empty", rs[2].ParentName)
	}
}

func TestReadCSVByteOrderMark(t *testing.T) {
	rs, err := ReadCSV(strings.NewReader("\ufeff" + sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rs) != 3 || rs[0].ID != "RVG-1" {
		t.Errorf("ReadCSV() with BOM = %+v", rs)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	rs, err := ReadCSV(strings.NewReader(""))
	if err != nil || rs != nil {
		t.Errorf("ReadCSV(empty) = %v, %v", rs, err)
	}
}

func TestWriteCSVReadBack(t *testing.T) {
	in := []Row{{
		ID: "RVG-9", Name: "Toolchain SIG", Status: "Active",
		ParentName: "Software HC", ParentChair: "Linus",
		ActingVice: true, LastElection: "2024",
	}}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, in); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	out, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
	got := out[0]
	if got.ID != "RVG-9" || got.ParentName != "Software HC" || got.ParentChair != "Linus" {
		t.Errorf("round trip = %+v", got)
	}
	if !got.ActingVice || got.ActingChair {
		t.Errorf("acting flags = %v/%v", got.ActingChair, got.ActingVice)
	}
	if got.LastElection != "2024" {
		t.Errorf("LastElection = %q, want %q", got.LastElection, "2024")
	}
}

func TestReadJSONRows(t *testing.T) {
	data := `[{"id":"G1","name":"Example WG","parent_name":"Example Committee (HC)","status":"Active"}]`
	rs, err := ReadJSON(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if len(rs) != 1 || rs[0].ParentName != "Example Committee (HC)" {
		t.Errorf("ReadJSON() = %+v", rs)
	}
}

func TestReadJSONGroups(t *testing.T) {
	data := `[
	  {"issue": {"key": "RVG-5", "summary": "Alpha WG", "status": "Active"},
	   "linked_issues": [
	     {"key": "RVG-2", "summary": "Zeta HC", "chair": "Z"},
	     {"key": "RVG-3", "summary": "Beta HC", "chair": "B"}
	   ]},
	  {"issue": {"key": "RVG-6", "summary": "Loose SIG"}, "linked_issues": []}
	]`
	rs, err := ReadJSON(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if len(rs) != 3 {
		t.Fatalf("ReadJSON() = %d rows, want 3", len(rs))
	}
	if rs[0].ParentName != "Beta HC" || rs[0].ParentChair != "B" {
		t.Errorf("rows should be grouped by parent name, got first %+v", rs[0])
	}
	if rs[1].ParentName != "Zeta HC" {
		t.Errorf("second row parent = %q", rs[1].ParentName)
	}
	if rs[2].ID != "RVG-6" || rs[2].ParentName != "" {
		t.Errorf("parentless rows should sort last, got %+v", rs[2])
	}
}

func TestReadYAML(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"list", "- name: Example WG\n  parent_name: Example Committee (HC)\n"},
		{"mapping", "groups:\n  - name: Example WG\n    parent_name: Example Committee (HC)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := ReadYAML(strings.NewReader(tt.data))
			if err != nil {
				t.Fatalf("ReadYAML() error = %v", err)
			}
			if len(rs) != 1 || rs[0].Name != "Example WG" || rs[0].ParentName != "Example Committee (HC)" {
				t.Errorf("ReadYAML() = %+v", rs)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	rs, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(rs) != 3 {
		t.Errorf("ReadFile() = %d rows, want 3", len(rs))
	}

	if _, err := ReadFile(filepath.Join(dir, "groups.xlsx")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ReadFile(xlsx) error = %v, want %v", err, ErrUnknownFormat)
	}
}

func TestActiveOnly(t *testing.T) {
	rs := []Row{
		{Name: "a", Status: "Active"},
		{Name: "b", Status: "Proposing"},
		{Name: "c", Status: " active "},
		{Name: "d"},
	}
	got := ActiveOnly(rs)
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("ActiveOnly() = %+v", got)
	}
	if len(Filter(rs, false)) != 4 {
		t.Error("Filter(false) should keep all rows")
	}
}

func TestRowMalformedAndMeta(t *testing.T) {
	if !(Row{ID: " ", Name: ""}).Malformed() {
		t.Error("blank row should be malformed")
	}
	if (Row{ID: "RVG-1"}).Malformed() {
		t.Error("row with ID should not be malformed")
	}
	m := Row{Charter: "https://example.org/charter", ActingChair: true}.Meta()
	if m["charter"] != "https://example.org/charter" || m["acting_chair"] != true {
		t.Errorf("Meta() = %v", m)
	}
	if _, ok := m["mailing_list"]; ok {
		t.Error("empty fields should be omitted from Meta()")
	}
}
