package transform

import (
	"testing"

	"github.com/matzehuels/orgtower/pkg/dag"
)

func newGraph(ids []string, edges [][2]string) *dag.DAG {
	g := dag.New(nil)
	for _, id := range ids {
		_ = g.AddNode(dag.Node{ID: id, Name: id})
	}
	for _, e := range edges {
		_, _ = g.AddEdge(dag.Edge{From: e[0], To: e[1]})
	}
	return g
}

func TestBreakCycles_NoCycles(t *testing.T) {
	g := newGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})

	removed := BreakCycles(g, "a")

	if removed != 0 {
		t.Errorf("BreakCycles() removed %d edges, want 0", removed)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestBreakCycles_SimpleCycle(t *testing.T) {
	g := newGraph([]string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})

	removed := BreakCycles(g, "a")

	if removed != 1 {
		t.Errorf("BreakCycles() removed %d edges, want 1", removed)
	}
	if !g.HasEdge("a", "b") || g.HasEdge("b", "a") {
		t.Error("the edge back toward the root should be removed")
	}
}

func TestBreakCycles_TriangleCycle(t *testing.T) {
	g := newGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})

	removed := BreakCycles(g, "a")

	if removed != 1 {
		t.Errorf("BreakCycles() removed %d edges, want 1", removed)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() after BreakCycles = %v", err)
	}
}

func TestBreakCycles_MissingRoot(t *testing.T) {
	g := newGraph([]string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})

	if removed := BreakCycles(g, "zzz"); removed != 1 {
		t.Errorf("BreakCycles() removed %d edges, want 1", removed)
	}
}
