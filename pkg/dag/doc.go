// Package dag provides the directed graph of governance groups and the
// strict tree derived from it.
//
// # Overview
//
// Orgtower renders a governance hierarchy (a top-level council, the
// committees it charters, and the working and interest groups those
// committees govern) either as a force-directed graph or as a
// left-to-right organizational tree. This package holds the shared data
// model for both views.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode] or merge them
// with [DAG.UpsertNode], and connect parents to children with [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "TSC", Kind: dag.KindCouncil})
//	g.AddNode(dag.Node{ID: "Security HC", Kind: dag.KindCommittee})
//	g.AddEdge(dag.Edge{From: "TSC", To: "Security HC"})
//
// Edges have set semantics over the (From, To) pair, so adding the same
// relationship twice leaves one edge. Nodes and edges keep insertion order.
//
// # Node Kinds
//
// [Classify] maps a display name to a [Kind] using an ordered decision
// table. The first matching rule wins:
//
//  1. "(TSC)" or "Technical Steering Committee": [KindCouncil]
//  2. "(HC)", "Horizontal Committee", "Committee" or a trailing "HC": [KindCommittee]
//  3. "(WG)", "(TG)", "Working Group", "Task Group" or a trailing "WG"/"TG": [KindWorkingGroup]
//  4. "(SIG)", "Special Interest Group" or a trailing "SIG": [KindInterestGroup]
//
// Names matching no rule default to [KindWorkingGroup].
//
// # Trees
//
// A [Tree] is a strict hierarchy of [TreeNode] values. Trees are built
// from a DAG by the [transform] subpackage; a node with several parents in
// the graph keeps only one of them in the tree.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Each rebuild produces a
// fresh graph that is handed to the layout engines by value of its pointer;
// callers must not mutate a graph that a running layout still reads.
//
// [transform]: github.com/matzehuels/orgtower/pkg/dag/transform
package dag
