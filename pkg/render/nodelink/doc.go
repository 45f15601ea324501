// Package nodelink renders governance graphs as Graphviz node-link diagrams.
//
// # Overview
//
// This package produces a static directed-graph picture of the full graph,
// multi-parent links included, using Graphviz. It complements the
// interactive force and tree layouts when a file for a document or slide
// is wanted.
//
// # Usage
//
// Convert a DAG to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: node labels add status, chair, vice chair and metadata
//   - RankDir: Graphviz rank direction, "LR" by default
//
// Nodes are filled with the shared kind palette from [render.KindColor].
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
