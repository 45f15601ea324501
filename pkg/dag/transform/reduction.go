package transform

import "github.com/matzehuels/orgtower/pkg/dag"

// TransitiveReduction removes every edge (u, v) for which v is also
// reachable from u through another child of u, and returns the number of
// edges removed.
//
// Governance data often lists a committee both under the council and under
// another committee that itself reports to the council. Reducing first
// makes the tree reducer pick the deeper parent instead of the first one
// seen. The graph must be acyclic; run [BreakCycles] first when in doubt.
//
// Time is O(V·E) for the reachability sweep and space O(V²).
func TransitiveReduction(g *dag.DAG) int {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return 0
	}

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}
	adjacency := make([][]int, len(nodes))
	for _, e := range g.Edges() {
		adjacency[index[e.From]] = append(adjacency[index[e.From]], index[e.To])
	}

	reachable := computeReachability(adjacency)

	removed := 0
	for _, e := range g.Edges() {
		src, dst := index[e.From], index[e.To]
		for _, mid := range adjacency[src] {
			if mid != dst && reachable[mid][dst] {
				g.RemoveEdge(e.From, e.To)
				removed++
				break
			}
		}
	}
	return removed
}

// computeReachability returns reach[i][j], true when j is reachable from
// i in zero or more steps.
func computeReachability(adjacency [][]int) [][]bool {
	reach := make([][]bool, len(adjacency))
	stack := make([]int, 0, len(adjacency))
	for src := range adjacency {
		seen := make([]bool, len(adjacency))
		seen[src] = true
		stack = append(stack[:0], src)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range adjacency[cur] {
				if !seen[next] {
					seen[next] = true
					stack = append(stack, next)
				}
			}
		}
		reach[src] = seen
	}
	return reach
}
