// Package pkg provides the core libraries of orgtower, which turns flat
// governance records into a hierarchy graph and lays it out.
//
// # Overview
//
// A governance organization is a set of groups (committees, SIGs, task
// groups) each linked to a parent group. The data flow is:
//
//	Row file or Jira project
//	         ↓
//	    [rows] package (decode rows)
//	         ↓
//	    [dag/build] package (merge rows into a graph)
//	         ↓
//	    [dag/transform] package (tree reduction)
//	         ↓
//	    [layout/force] or [layout/tree] (place nodes)
//	         ↓
//	    [viewport] package (fit, zoom, pan)
//	         ↓
//	    SVG/PNG/PDF/DOT/JSON output or a live [scene]
//
// # Quick Start
//
// Build a graph and lay it out as a tree:
//
//	import (
//	    "github.com/matzehuels/orgtower/pkg/dag/build"
//	    "github.com/matzehuels/orgtower/pkg/pipeline"
//	    "github.com/matzehuels/orgtower/pkg/rows"
//	)
//
//	rs, _ := rows.ReadFile("groups.csv")
//	g, report := build.Build(rs, build.Options{})
//	l, _ := pipeline.GenerateLayout(g, pipeline.Options{Mode: "tree"})
//
// For interactive use, a [scene.Scene] owns the graph, the active layout
// engine and the viewport, and streams snapshots to subscribers.
//
// # Main Packages
//
// ## Domain
//
// [rows] - Governance rows and their CSV, JSON and YAML encodings.
//
// [dag] - The hierarchy graph, its node kinds and the tree reduction type.
//
// [dag/build] - Merges rows into a graph and reports data-quality
// fallbacks.
//
// [dag/transform] - First-parent tree reduction and reachability.
//
// [layout/force] - Force simulation with link, charge, collision and
// centering forces, drag pinning and an alpha-cooled background loop.
//
// [layout/tree] - Top-down tidy tree layout with measured pills.
//
// [layout/text] - Label measurement and truncation.
//
// [viewport] - Pan and zoom transforms with fit-to-bounds.
//
// [scene] - The live view combining graph, layout and viewport.
//
// ## Output
//
// [graph] - Serialization types for graphs, trees and layouts.
//
// [render] - Kind palette and SVG conversion, with the [render/sink] SVG
// snapshot writer and [render/nodelink] Graphviz output.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches with content-hash keys.
//
// [integrations] - The rate-limited, cached HTTP client used by
// [integrations/jira].
//
// [pipeline] - Orchestrates build, layout and render with caching.
//
// [server] - HTTP and WebSocket front end.
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Error codes shared by the CLI and the server.
//
// [observability] - Hooks for pipeline, cache and session events.
package pkg
