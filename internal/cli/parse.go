package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/dag/build"
	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/pipeline"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	output     string // output file path (stdout if empty)
	activeOnly bool   // drop inactive groups
	rootName   string // display name of the root council
	noCache    bool
	refresh    bool
}

// parseCommand creates the parse command, which merges governance rows
// into a hierarchy graph.
func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse <rows.csv|rows.json|rows.yaml>",
		Short: "Build a governance graph from a row file",
		Long: `Build a governance graph from a row file.

Rows are read as CSV (the grouped Jira export), JSON (an array of rows or a
fetch result), or YAML, chosen by file extension. Every row contributes its
group and its parent; duplicate edges are merged. Data-quality fallbacks
(unknown parents, default kinds, malformed rows) are reported.

Examples:
  orgtower parse groups.csv -o graph.json
  orgtower parse groups.json --active`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.activeOnly, "active", false, "drop inactive groups")
	cmd.Flags().StringVar(&opts.rootName, "root-name", build.RootName, "display name of the root council")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rebuild even when cached")

	return cmd
}

// runParse builds the graph and writes it as JSON.
func (c *CLI) runParse(ctx context.Context, input string, opts *parseOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := c.pipelineOptions(cfg)
	popts.Source = input
	popts.ActiveOnly = popts.ActiveOnly || opts.activeOnly
	popts.RootName = opts.rootName
	popts.Refresh = opts.refresh

	prog := newProgress(c.Logger)
	g, report, cacheHit, err := runner.BuildWithCacheInfo(ctx, popts)
	if err != nil {
		return err
	}
	prog.done("built graph", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "cached", cacheHit)
	// Stdout carries the graph; the report goes to the log instead.
	if opts.output != "" {
		printReport(report)
	} else if !report.Clean() {
		c.Logger.Warn("data-quality fallbacks", "report", report.String())
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := graph.WriteGraph(g, out); err != nil {
		return err
	}

	if opts.output != "" {
		printSuccess("Graph written")
		printFile(opts.output)
		printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
		printKinds(g)
		printNewline()
		printNextStep("Lay out", appName+" layout "+opts.output)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a known format extension, it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	for _, f := range pipeline.ValidFormats {
		if ext == f {
			return strings.TrimSuffix(output, filepath.Ext(output))
		}
	}
	return output
}
