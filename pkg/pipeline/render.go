package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/render"
	"github.com/matzehuels/orgtower/pkg/render/nodelink"
	"github.com/matzehuels/orgtower/pkg/render/sink"
)

// RenderFromLayout generates output artifacts in the requested formats.
// SVG, PNG and PDF draw the placed layout; DOT and Graphviz SVG draw the
// raw graph g and ignore the layout.
func RenderFromLayout(ctx context.Context, l graph.Layout, g *dag.DAG, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	// The scene SVG is shared by svg, png and pdf.
	var svg []byte
	sceneSVG := func() []byte {
		if svg == nil {
			svg = sink.RenderSVG(l, buildSVGOptions(opts)...)
		}
		return svg
	}
	var dot string
	dotSource := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed})
		}
		return dot
	}

	for _, format := range opts.Formats {
		if g == nil && (format == FormatDOT || format == FormatGraphviz) {
			return nil, fmt.Errorf("render %s: graph required", format)
		}
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sceneSVG()
		case FormatPNG:
			data, err = render.ToPNG(ctx, plainSVG(l, opts), opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, plainSVG(l, opts))
		case FormatDOT:
			data = []byte(dotSource())
		case FormatGraphviz:
			data, err = nodelink.RenderSVG(ctx, dotSource())
		case FormatJSON:
			data, err = graph.MarshalLayout(l)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// plainSVG renders the layout without hover scripting, which raster and
// print converters cannot run.
func plainSVG(l graph.Layout, opts Options) []byte {
	opts.Interactive = false
	return sink.RenderSVG(l, buildSVGOptions(opts)...)
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Title != "" {
		out = append(out, sink.WithTitle(opts.Title))
	}
	if opts.Interactive {
		out = append(out, sink.WithInteraction())
	}
	return out
}
