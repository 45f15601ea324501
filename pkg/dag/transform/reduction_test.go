package transform

import "testing"

func TestTransitiveReduction(t *testing.T) {
	tests := []struct {
		name    string
		edges   [][2]string
		removed int
		gone    [2]string
	}{
		{"chain", [][2]string{{"r", "a"}, {"a", "b"}}, 0, [2]string{}},
		{"shortcut", [][2]string{{"r", "a"}, {"a", "b"}, {"r", "b"}}, 1, [2]string{"r", "b"}},
		{"diamond", [][2]string{{"r", "a"}, {"r", "b"}, {"a", "c"}, {"b", "c"}}, 0, [2]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGraph([]string{"r", "a", "b", "c"}, tt.edges)
			if got := TransitiveReduction(g); got != tt.removed {
				t.Errorf("TransitiveReduction() = %d, want %d", got, tt.removed)
			}
			if tt.gone != ([2]string{}) && g.HasEdge(tt.gone[0], tt.gone[1]) {
				t.Errorf("edge %v should be removed", tt.gone)
			}
		})
	}
}

func TestTransitiveReductionChangesTreeParent(t *testing.T) {
	g := newGraph([]string{"r", "c", "b"}, [][2]string{{"r", "c"}, {"r", "b"}, {"b", "c"}})

	TransitiveReduction(g)
	tree, _ := ReduceTree(g, "r")
	if p, _ := tree.Parent("c"); p == nil || p.Node.ID != "b" {
		t.Errorf("Parent(c) = %v, want b", p)
	}
}
