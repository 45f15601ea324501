package transform

import (
	"cmp"
	"slices"

	"github.com/matzehuels/orgtower/pkg/dag"
)

// ReduceTree derives a strict hierarchy rooted at rootID from g.
//
// Edges are considered in insertion order and every node keeps the first
// parent it is seen with; later edges to an already-parented node are
// dropped. The root never receives a parent. Children are sorted by display
// name, ties broken by ID, so the result depends only on the graph and not
// on map iteration. Nodes with no path from the root are left out, and
// cycles are broken at the first revisit.
//
// The graph is not modified. ReduceTree returns false if rootID is not a
// node of g.
func ReduceTree(g *dag.DAG, rootID string) (*dag.Tree, bool) {
	rootNode, ok := g.Node(rootID)
	if !ok {
		return nil, false
	}

	parent := make(map[string]string, g.NodeCount())
	children := make(map[string][]string, g.NodeCount())
	for _, e := range g.Edges() {
		if e.To == rootID {
			continue
		}
		if _, taken := parent[e.To]; taken {
			continue
		}
		parent[e.To] = e.From
		children[e.From] = append(children[e.From], e.To)
	}

	visited := map[string]bool{rootID: true}
	var build func(n *dag.Node) *dag.TreeNode
	build = func(n *dag.Node) *dag.TreeNode {
		tn := &dag.TreeNode{Node: n}
		ids := children[n.ID]
		kids := make([]*dag.Node, 0, len(ids))
		for _, id := range ids {
			if visited[id] {
				continue
			}
			if c, ok := g.Node(id); ok {
				visited[id] = true
				kids = append(kids, c)
			}
		}
		slices.SortFunc(kids, compareNodes)
		for _, c := range kids {
			tn.Children = append(tn.Children, build(c))
		}
		return tn
	}

	return &dag.Tree{Root: build(rootNode)}, true
}

func compareNodes(a, b *dag.Node) int {
	return cmp.Or(cmp.Compare(a.Label(), b.Label()), cmp.Compare(a.ID, b.ID))
}

// Unreachable returns the IDs of nodes with no directed path from rootID,
// in insertion order. A tree reduction never contains these nodes; it may
// additionally omit nodes whose first parent is itself unreachable.
func Unreachable(g *dag.DAG, rootID string) []string {
	seen := map[string]bool{}
	stack := []string{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, g.Children(id)...)
	}

	var out []string
	for _, n := range g.Nodes() {
		if !seen[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}
