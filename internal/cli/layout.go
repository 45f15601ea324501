package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/pipeline"
)

// layoutFlags are the layout settings shared by layout and render.
type layoutFlags struct {
	mode       string
	width      float64
	height     float64
	activeOnly bool
	seed       int64
	noCache    bool
	refresh    bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "layout mode: tree (default), graph")
	cmd.Flags().Float64Var(&f.width, "width", 0, "viewport width")
	cmd.Flags().Float64Var(&f.height, "height", 0, "viewport height")
	cmd.Flags().BoolVar(&f.activeOnly, "active", false, "drop inactive groups")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "force layout seed")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "rebuild the graph even when cached")
}

// apply overlays the flags that were set onto opts.
func (f *layoutFlags) apply(opts *pipeline.Options) {
	if f.mode != "" {
		opts.Mode = strings.ToLower(strings.TrimSpace(f.mode))
	}
	if f.width > 0 {
		opts.Width = f.width
	}
	if f.height > 0 {
		opts.Height = f.height
	}
	if f.seed != 0 {
		opts.Force.Seed = f.seed
	}
	opts.ActiveOnly = opts.ActiveOnly || f.activeOnly
	opts.Refresh = f.refresh
}

// layoutCommand creates the layout command for computing scene layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout <rows-or-graph>",
		Short: "Compute a graph or tree layout",
		Long: `Compute a graph or tree layout.

The input is a row file or a graph.json produced by 'parse'. The output is a
layout.json (same format as 'render -f json') that 'visualize' renders to
SVG, PNG, or PDF.

Tree mode places the first-parent hierarchy top-down; graph mode relaxes a
force simulation until it settles and fits it to the viewport.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, &flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output string, flags *layoutFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions(cfg)
	flags.apply(&opts)
	opts.Logger = c.Logger

	g, report, _, err := c.loadGraph(ctx, runner, input, opts)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	printReport(report)

	spinner := startSpinner(ctx, "Computing layout...")

	layout, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := graph.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
	printKinds(g)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
