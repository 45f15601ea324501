package transform

import "github.com/matzehuels/orgtower/pkg/dag"

// BreakCycles makes g acyclic by removing every edge that closes a cycle
// in a depth-first walk, and returns how many it removed. The walk starts
// at rootID when it exists, so a link pointing back toward the council is
// the one that goes; other components follow in insertion order.
func BreakCycles(g *dag.DAG, rootID string) int {
	const (
		unseen = iota
		open
		done
	)
	type frame struct {
		id   string
		next int
	}

	state := make(map[string]int, g.NodeCount())
	var back []dag.Edge

	walk := func(start string) {
		state[start] = open
		stack := []frame{{id: start}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				state[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch state[child] {
			case unseen:
				state[child] = open
				stack = append(stack, frame{id: child})
			case open:
				back = append(back, dag.Edge{From: top.id, To: child})
			}
		}
	}

	if _, ok := g.Node(rootID); ok {
		walk(rootID)
	}
	for _, n := range g.Nodes() {
		if state[n.ID] == unseen {
			walk(n.ID)
		}
	}

	for _, e := range back {
		g.RemoveEdge(e.From, e.To)
	}
	return len(back)
}
