package graph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/dag/transform"
	"github.com/matzehuels/orgtower/pkg/layout/force"
	"github.com/matzehuels/orgtower/pkg/layout/text"
	"github.com/matzehuels/orgtower/pkg/layout/tree"
	"github.com/matzehuels/orgtower/pkg/viewport"
)

func sampleDAG() *dag.DAG {
	g := dag.New(dag.Metadata{"root": "TSC"})
	_ = g.AddNode(dag.Node{ID: "TSC", Name: "Technical Steering Committee (TSC)", Kind: dag.KindCouncil,
		Chair: dag.Leader{Name: "Linus", Email: "linus@example.org"}})
	_ = g.AddNode(dag.Node{ID: "HC", Name: "Example Committee (HC)", Kind: dag.KindCommittee, ExternalID: "HC1"})
	_ = g.AddNode(dag.Node{ID: "G1:Example WG", Name: "Example WG", Kind: dag.KindWorkingGroup,
		Status: "Active", Meta: dag.Metadata{"charter": "https://example.org"}})
	_, _ = g.AddEdge(dag.Edge{From: "TSC", To: "HC"})
	_, _ = g.AddEdge(dag.Edge{From: "HC", To: "G1:Example WG"})
	return g
}

func TestMarshalGraph(t *testing.T) {
	tests := []struct {
		name      string
		build     func() *dag.DAG
		wantNodes int
		wantEdges int
		check     func(t *testing.T, g Graph)
	}{
		{
			name:      "Empty",
			build:     func() *dag.DAG { return dag.New(nil) },
			wantNodes: 0,
			wantEdges: 0,
		},
		{
			name:      "Sample",
			build:     sampleDAG,
			wantNodes: 3,
			wantEdges: 2,
			check: func(t *testing.T, g Graph) {
				if g.Root != "TSC" {
					t.Errorf("root = %q, want TSC", g.Root)
				}
				if g.Nodes[0].Kind != "council" || g.Nodes[0].Chair == nil || g.Nodes[0].Chair.Name != "Linus" {
					t.Errorf("root node = %+v", g.Nodes[0])
				}
				if g.Nodes[1].ViceChair != nil {
					t.Error("empty leaders should be omitted")
				}
				if g.Nodes[2].Meta["charter"] != "https://example.org" {
					t.Errorf("meta = %v", g.Nodes[2].Meta)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalGraph(tt.build())
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}

			var result Graph
			if err := json.Unmarshal(data, &result); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := len(result.Nodes); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := len(result.Edges); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, result)
			}
		})
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := sampleDAG()
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	back, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}

	if back.Meta()["root"] != "TSC" {
		t.Errorf("root meta = %v", back.Meta()["root"])
	}
	for _, n := range g.Nodes() {
		m, ok := back.Node(n.ID)
		if !ok {
			t.Fatalf("node %q lost", n.ID)
		}
		if m.Name != n.Name || m.Kind != n.Kind || m.ExternalID != n.ExternalID || m.Status != n.Status || m.Chair != n.Chair {
			t.Errorf("node %q = %+v, want %+v", n.ID, m, n)
		}
	}
	if got, want := back.Edges(), g.Edges(); len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Valid", `{"nodes":[{"id":"A","kind":"committee"},{"id":"B"}],"edges":[{"from":"A","to":"B"}]}`, false},
		{"Empty", `{"nodes":[],"edges":[]}`, false},
		{"ByteOrderMark", "\ufeff" + `{"nodes":[{"id":"A"}],"edges":[]}`, false},
		{"Invalid", `{invalid json}`, true},
		{"UnknownKind", `{"nodes":[{"id":"A","kind":"guild"}],"edges":[]}`, true},
		{"DanglingEdge", `{"nodes":[{"id":"A"}],"edges":[{"from":"A","to":"B"}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadGraph() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	data, err := MarshalGraph(sampleDAG())
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("nodes = %d, want 3", g.NodeCount())
	}
	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestWriteTree(t *testing.T) {
	tr, _ := transform.ReduceTree(sampleDAG(), "TSC")
	var buf bytes.Buffer
	if err := WriteTree(tr, &buf); err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	var root TreeNode
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if root.ID != "TSC" || len(root.Children) != 1 || root.Children[0].Children[0].ID != "G1:Example WG" {
		t.Errorf("tree = %+v", root)
	}
	if strings.Contains(buf.String(), `"children": null`) {
		t.Error("leaves should omit children")
	}
}

func TestFromTreeNil(t *testing.T) {
	if got := FromTree(nil); got.ID != "" || got.Children != nil {
		t.Errorf("FromTree(nil) = %+v, want zero", got)
	}
}

func TestLayoutFromEngines(t *testing.T) {
	g := sampleDAG()

	sim := force.New(g, force.Config{})
	force.Settle(sim, 0)
	fl := FromForce(sim, map[string]string{"HC": "Example Committee (HC)"}, viewport.Identity)
	if !fl.IsGraph() || len(fl.Nodes) != 3 || len(fl.Connectors) != 2 || !fl.Settled {
		t.Errorf("force layout = %+v", fl)
	}
	if fl.Nodes[1].Label != "Example Committee (HC)" || fl.Nodes[0].Label != "TSC" {
		t.Errorf("labels = %q, %q", fl.Nodes[0].Label, fl.Nodes[1].Label)
	}
	if fl.Nodes[0].Radius != force.DefaultRadiusCouncil {
		t.Errorf("root radius = %v", fl.Nodes[0].Radius)
	}

	tr, _ := transform.ReduceTree(g, "TSC")
	res := tree.Layout(tr, tree.Measure(tr, text.Approx{}, tree.Style{}), tree.Config{})
	tl := FromTreeLayout(res, 960, 640, res.Transform)
	if !tl.IsTree() || len(tl.Nodes) != 3 || len(tl.Connectors) != 2 {
		t.Errorf("tree layout = %+v", tl)
	}
	if tl.Connectors[0].Path != res.Connectors[0].Path {
		t.Error("connector paths should be carried over")
	}

	data, err := MarshalLayout(tl)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if back.Transform != tl.Transform || len(back.Nodes) != 3 {
		t.Errorf("layout round trip = %+v", back)
	}
}

func TestUnmarshalLayoutValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"DefaultMode", `{"nodes":[]}`, false},
		{"BadMode", `{"mode":"tower"}`, true},
		{"DanglingConnector", `{"mode":"tree","nodes":[{"id":"a"}],"connectors":[{"from":"a","to":"b"}]}`, true},
		{"Invalid", `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLayout([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalLayout() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	l := Layout{Mode: ModeTree, Width: 10, Height: 10, Transform: viewport.Identity}
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil || got.Mode != ModeTree {
		t.Errorf("ReadLayoutFile() = %+v, %v", got, err)
	}
}
