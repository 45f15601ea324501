package pipeline

import (
	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/dag/transform"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/layout/force"
	"github.com/matzehuels/orgtower/pkg/layout/tree"
	"github.com/matzehuels/orgtower/pkg/viewport"
)

// GenerateLayout computes a static layout of g in the mode selected by
// opts. Tree layouts are fitted with the tree margin; force layouts are
// relaxed until settled and fitted once to FitFraction of the viewport.
func GenerateLayout(g *dag.DAG, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}
	if opts.IsTree() {
		return generateTreeLayout(g, opts)
	}
	return generateForceLayout(g, opts), nil
}

func generateTreeLayout(g *dag.DAG, opts Options) (graph.Layout, error) {
	t, ok := transform.ReduceTree(g, opts.RootID)
	if !ok {
		return graph.Layout{}, errors.New(errors.ErrCodeNotFound, "root %q is not in the graph", opts.RootID)
	}
	labels := tree.Measure(t, opts.Measurer, opts.Tree.Style)
	res := tree.Layout(t, labels, opts.Tree)

	opts.Logger.Debug("placed tree",
		"nodes", len(res.Nodes),
		"depth", t.Depth(),
		"transform", res.Transform)
	return graph.FromTreeLayout(res, opts.Width, opts.Height, res.Transform), nil
}

func generateForceLayout(g *dag.DAG, opts Options) graph.Layout {
	sim := force.New(g, opts.Force)
	steps := force.Settle(sim, 0)

	view := viewport.New(opts.Width, opts.Height, viewport.Config{})
	view.Fit(sim.Bounds(), viewport.FitOptions{
		Fraction:       opts.Force.FitFraction,
		SkipDegenerate: true,
	})

	labels := make(map[string]string, g.NodeCount())
	for _, n := range g.Nodes() {
		labels[n.ID] = n.Label()
	}

	opts.Logger.Debug("relaxed force layout",
		"nodes", g.NodeCount(),
		"steps", steps,
		"transform", view.Transform())
	return graph.FromForce(sim, labels, view.Transform())
}
