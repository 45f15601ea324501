// Package transform derives layout-ready structures from a governance DAG.
//
// # Tree Reduction
//
// [ReduceTree] turns the (possibly multi-parent) graph into a strict
// hierarchy rooted at the council. Every node keeps the first parent it
// appears with in edge insertion order, children are sorted by display
// name, and nodes with no path from the root are left out. The graph is
// never modified, so the same DAG can feed both the force layout and the
// hierarchical layout. [Unreachable] lists the nodes a tree always leaves
// out, which callers surface as a warning.
//
// # Cleanup
//
// Two optional passes run before reduction when the input is messy:
//
//   - [BreakCycles] removes back edges found by a depth-first search
//     starting at the root.
//   - [TransitiveReduction] drops shortcut edges such as council→X when
//     X is also reachable through a committee.
//
// Both passes mutate the graph in place and report how many edges they
// removed.
package transform
