package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/dag/build"
)

// captureUI redirects command output to a buffer for the test.
func captureUI(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := uiOut
	uiOut = &buf
	t.Cleanup(func() { uiOut = old })
	return &buf
}

func TestPrintKinds(t *testing.T) {
	out := captureUI(t)

	g := dag.New(nil)
	for _, n := range []dag.Node{
		{ID: "TSC", Kind: dag.KindCouncil},
		{ID: "HC1", Kind: dag.KindCommittee},
		{ID: "HC2", Kind: dag.KindCommittee},
		{ID: "SIG", Kind: dag.KindInterestGroup},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	printKinds(g)

	got := out.String()
	for _, want := range []string{"1 council", "2 committee", "1 interest-group"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "working-group") {
		t.Errorf("output %q lists an absent kind", got)
	}
	if strings.Index(got, "council") > strings.Index(got, "committee") {
		t.Errorf("output %q should list the council first", got)
	}
}

func TestPrintReport(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		out := captureUI(t)
		printReport(build.Report{})
		if out.Len() != 0 {
			t.Errorf("clean report printed %q", out.String())
		}
	})

	t.Run("truncated", func(t *testing.T) {
		out := captureUI(t)
		var r build.Report
		for i := range maxReportLines + 3 {
			r.UnknownParents = append(r.UnknownParents, build.Dangling{NodeID: fmt.Sprintf("G%d", i), Parent: "Gone HC"})
		}
		r.Orphans = []string{"Lonely SIG"}
		printReport(r)

		got := out.String()
		for _, want := range []string{"Dropped 8 links", "G0", "... and 3 more", "1 groups have no parent", "Lonely SIG"} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
		if strings.Contains(got, "G7") {
			t.Errorf("output should stop after %d lines:\n%s", maxReportLines, got)
		}
	})
}
