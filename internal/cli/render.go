package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/pipeline"
)

// renderFlags are the output settings shared by render and visualize.
type renderFlags struct {
	formats     string
	output      string
	detailed    bool
	interactive bool
	title       string
	scale       float64
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, graphviz, json (comma-separated)")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show status and leadership in DOT labels")
	cmd.Flags().BoolVar(&f.interactive, "interactive", true, "add hover highlighting to SVG output")
	cmd.Flags().StringVar(&f.title, "title", "", "document title")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
}

func (f *renderFlags) apply(opts *pipeline.Options) error {
	opts.Formats = parseFormats(f.formats)
	opts.Detailed = f.detailed
	opts.Interactive = f.interactive
	opts.Title = f.title
	opts.Scale = f.scale
	return pipeline.ValidateFormats(opts.Formats)
}

// renderCommand creates the render command, which runs the whole pipeline
// from rows to output files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		lf layoutFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render <rows-or-graph>",
		Short: "Render a governance hierarchy",
		Long: `Render a governance hierarchy.

Builds the graph, computes the layout, and writes every requested format:

  svg       static scene snapshot, with hover highlighting
  png, pdf  the same scene converted with rsvg-convert
  dot       Graphviz source of the raw graph
  graphviz  Graphviz-rendered SVG of the raw graph
  json      the layout, for 'visualize' or external viewers

Examples:
  orgtower render groups.csv -m tree -f svg,png
  orgtower render graph.json -m graph -o out/tsc.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], &lf, &rf)
		},
	}

	lf.register(cmd)
	rf.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, lf *layoutFlags, rf *renderFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts := c.pipelineOptions(cfg)
	lf.apply(&opts)
	if err := rf.apply(&opts); err != nil {
		return err
	}
	opts.Logger = c.Logger

	runner, err := c.newRunner(ctx, cfg, lf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := startSpinner(ctx, "Rendering...")

	var result *pipeline.Result
	if isGraphFile(input) {
		result, err = c.renderGraphFile(ctx, runner, input, opts)
	} else {
		opts.Source = input
		result, err = runner.Execute(ctx, opts)
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	printReport(result.Report)

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    rf.output,
		cacheHit:  result.CacheInfo.RenderHit,
		nodes:     result.Stats.NodeCount,
		edges:     result.Stats.EdgeCount,
	})
}

// renderGraphFile runs layout and render for a graph read from disk.
func (c *CLI) renderGraphFile(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (*pipeline.Result, error) {
	g, _, _, err := c.loadGraph(ctx, runner, input, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input, err)
	}
	layout, layoutHit, err := runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, layout, g, opts)
	if err != nil {
		return nil, err
	}
	return &pipeline.Result{
		Graph:     g,
		Layout:    layout,
		Artifacts: artifacts,
		Stats:     pipeline.Stats{NodeCount: g.NodeCount(), EdgeCount: g.EdgeCount()},
		CacheInfo: pipeline.CacheInfo{LayoutHit: layoutHit, RenderHit: renderHit},
	}, nil
}

// =============================================================================
// Artifact output
// =============================================================================

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
	nodes     int
	edges     int
}

// formatExt maps formats to file suffixes.
var formatExt = map[string]string{
	pipeline.FormatSVG:      ".svg",
	pipeline.FormatPNG:      ".png",
	pipeline.FormatPDF:      ".pdf",
	pipeline.FormatDOT:      ".dot",
	pipeline.FormatGraphviz: ".graphviz.svg",
	pipeline.FormatJSON:     ".layout.json",
}

// artifactPath returns the file a format is written to. A single format
// goes to output verbatim when set.
func artifactPath(format, input, output string, single bool) string {
	if single && output != "" {
		return output
	}
	return basePath(output, input) + formatExt[format]
}

func writeArtifacts(p artifactWriteParams) error {
	single := len(p.formats) == 1
	var written []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("no %s output produced", format)
		}
		path := artifactPath(format, p.input, p.output, single)
		out, err := openOutput(path)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			out.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := out.Close(); err != nil {
			return err
		}
		written = append(written, path)
	}

	printSuccess("Rendered %d file(s)", len(written))
	for _, path := range written {
		printFile(path)
	}
	printStats(p.nodes, p.edges, p.cacheHit)
	return nil
}
