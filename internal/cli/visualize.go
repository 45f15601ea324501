package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		rf      renderFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render visualization from a computed layout",
		Long: `Render visualization from a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it to SVG, PNG, or PDF format. The layout contains all positioning
information, so this step is purely about rendering. DOT and Graphviz output
need the raw graph; use 'render' for those.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVisualize(cmd.Context(), args[0], &rf, noCache)
		},
	}

	rf.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runVisualize loads the layout and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, rf *renderFlags, noCache bool) error {
	var opts pipeline.Options
	if err := rf.apply(&opts); err != nil {
		return err
	}
	for _, f := range opts.Formats {
		if f == pipeline.FormatDOT || f == pipeline.FormatGraphviz {
			return fmt.Errorf("format %s needs the graph: use '%s render'", f, appName)
		}
	}

	layout, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	opts.Mode = layout.Mode
	opts.Width = layout.Width
	opts.Height = layout.Height
	opts.Logger = c.Logger

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := startSpinner(ctx, fmt.Sprintf("Rendering %s layout...", layout.Mode))

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, nil, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     trimLayoutSuffix(input),
		output:    rf.output,
		cacheHit:  cacheHit,
		nodes:     len(layout.Nodes),
		edges:     len(layout.Connectors),
	})
}

// trimLayoutSuffix maps x.layout.json to x.json so artifacts are named
// after the original input.
func trimLayoutSuffix(path string) string {
	const suffix = ".layout.json"
	if strings.HasSuffix(path, suffix) {
		return strings.TrimSuffix(path, suffix) + ".json"
	}
	return path
}
