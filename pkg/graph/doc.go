// Package graph provides serialization types for governance graphs, trees
// and layouts.
//
// This package defines the canonical wire format for orgtower's data, used
// for JSON files, API responses, the layout cache and scene streaming.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [TreeNode], [Layout]: serialization types (this package)
//   - pkg/dag.DAG, pkg/dag.Tree: internal graph and tree
//   - pkg/layout/force.Simulation, pkg/layout/tree.Result: layout engines
//
// Use [FromDAG]/[ToDAG], [FromTree], [FromForce] and [FromTreeLayout]
// conversion to move between them.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format that keeps insertion order:
//
//	{
//	  "root": "TSC",
//	  "nodes": [{"id": "TSC", "label": "Technical Steering Committee (TSC)", "kind": "council"}],
//	  "edges": [{"from": "TSC", "to": "Example Committee (HC)"}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("groups.json") // File → DAG
//	graph.WriteGraph(g, os.Stdout)             // DAG → io.Writer
//	data, _ := graph.MarshalGraph(g)           // DAG → []byte
//	parsed, _ := graph.UnmarshalGraph(data)    // []byte → Graph
//
// # Layout Serialization
//
// Layouts are discriminated by Mode:
//
//	layout, _ := graph.UnmarshalLayout(data)
//	if layout.IsTree() {
//	    // pills: W×H around X, Y
//	} else {
//	    // circles: Radius around X, Y
//	}
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
