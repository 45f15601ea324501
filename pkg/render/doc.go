// Package render provides the static outputs of orgtower scenes.
//
// # Overview
//
// Live surfaces (the scene server and the terminal explorer) consume
// layout data directly. This package and its subpackages cover the file
// exports:
//
//   - [sink]: SVG snapshot of a computed layout (graph or tree mode)
//   - [nodelink]: Graphviz DOT of the raw graph, rendered in-process
//   - format conversion (SVG to PDF/PNG) via [ToPDF] and [ToPNG]
//
// # Palette
//
// [KindColor] is the single mapping from node kind to color, shared by
// every sink and by the terminal explorer so all outputs agree.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(layout)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
package render
