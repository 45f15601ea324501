package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/dag/build"
	"github.com/matzehuels/orgtower/pkg/dag/transform"
	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/render"
	"github.com/matzehuels/orgtower/pkg/rows"
)

// treeCommand creates the tree command, which prints the strict hierarchy
// derived from a graph.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		asJSON     bool
		activeOnly bool
		rootID     string
		reduce     bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "tree <rows-or-graph>",
		Short: "Print the governance hierarchy as a tree",
		Long: `Print the governance hierarchy as a tree.

Every group keeps its first parent; groups reached through several parents
appear once. Groups with no path from the root are listed separately.

With --reduce, shortcut links (a group listed under the council and under a
committee that reports to the council) are dropped first, so the deeper
parent wins.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), args[0], rootID, activeOnly, asJSON, reduce, noCache)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print nested JSON instead of a drawing")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "drop inactive groups")
	cmd.Flags().StringVar(&rootID, "root", build.RootID, "root node ID")
	cmd.Flags().BoolVar(&reduce, "reduce", false, "drop shortcut links before reducing")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, input, rootID string, activeOnly, asJSON, reduce, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions(cfg)
	opts.ActiveOnly = opts.ActiveOnly || activeOnly
	opts.RootID = rootID
	g, _, _, err := c.loadGraph(ctx, runner, input, opts)
	if err != nil {
		return err
	}

	if reduce {
		if n := transform.TransitiveReduction(g); n > 0 {
			c.Logger.Info("dropped shortcut links", "edges", n)
		}
	}

	t, ok := transform.ReduceTree(g, rootID)
	if !ok {
		return fmt.Errorf("root %q is not in the graph", rootID)
	}
	if asJSON {
		return graph.WriteTree(t, os.Stdout)
	}

	fmt.Println(drawTree(t))
	if missing := transform.Unreachable(g, rootID); len(missing) > 0 {
		printNewline()
		printWarning("%d groups are not reachable from %s", len(missing), rootID)
		for _, id := range missing {
			printDetail("%s", id)
		}
	}
	printNewline()
	printStats(t.Len(), g.EdgeCount(), false)
	return nil
}

// drawTree renders t with kind-colored labels.
func drawTree(t *dag.Tree) string {
	var grow func(tn *dag.TreeNode) *tree.Tree
	grow = func(tn *dag.TreeNode) *tree.Tree {
		node := tree.Root(nodeLabel(tn.Node))
		for _, child := range tn.Children {
			if len(child.Children) == 0 {
				node.Child(nodeLabel(child.Node))
				continue
			}
			node.Child(grow(child))
		}
		return node
	}
	return grow(t.Root).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim).
		String()
}

// nodeLabel styles a node name by its kind and dims inactive groups.
func nodeLabel(n *dag.Node) string {
	style := kindStyle(n.Kind)
	label := style.Render(n.Label())
	if n.Status != "" && !strings.EqualFold(strings.TrimSpace(n.Status), rows.StatusActive) {
		label += " " + StyleDim.Render("("+n.Status+")")
	}
	return label
}

// kindStyle returns the foreground style of a node kind.
func kindStyle(k dag.Kind) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(render.KindColor(k)))
}
