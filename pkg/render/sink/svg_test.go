package sink

import (
	"strings"
	"testing"

	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/render"
	"github.com/matzehuels/orgtower/pkg/viewport"
)

func graphLayout() graph.Layout {
	return graph.Layout{
		Mode:   graph.ModeGraph,
		Width:  400,
		Height: 300,
		Nodes: []graph.PlacedNode{
			{ID: "TSC", Label: "Technical Steering Committee (TSC)", Kind: "council", X: 200, Y: 150, Radius: 36},
			{ID: "a", Label: "R&D <SIG>", Kind: "interest-group", X: 290, Y: 150, Radius: 16, Pinned: true},
		},
		Connectors: []graph.Connector{
			{From: "TSC", To: "a", X1: 200, Y1: 150, X2: 290, Y2: 150, Path: "M 200.00,150.00 L 290.00,150.00"},
		},
		Transform: viewport.Transform{X: 10, Y: 20, K: 0.5},
	}
}

func TestRenderSVG_Graph(t *testing.T) {
	svg := string(RenderSVG(graphLayout()))

	for _, want := range []string{
		`viewBox="0 0 400.0 300.0"`,
		`transform="translate(10.00,20.00) scale(0.5000)"`,
		`<circle cx="200.00" cy="150.00" r="36.00" fill="` + render.ColorCouncil + `"`,
		`d="M 200.00,150.00 L 290.00,150.00"`,
		"R&amp;D &lt;SIG&gt;",
		`stroke="black"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("RenderSVG() missing %q", want)
		}
	}
	if strings.Contains(svg, "<script") {
		t.Error("RenderSVG() should not embed script without WithInteraction")
	}
	if !strings.Contains(svg, "Technical Steering Committe…") {
		t.Error("RenderSVG() should truncate long labels")
	}
}

func TestRenderSVG_Tree(t *testing.T) {
	l := graph.Layout{
		Mode:   graph.ModeTree,
		Width:  400,
		Height: 300,
		Nodes: []graph.PlacedNode{
			{ID: "TSC", Label: "TSC", Kind: "council", X: 0, Y: 0, W: 60, H: 28},
		},
		Transform: viewport.Identity,
	}
	svg := string(RenderSVG(l, WithInteraction(), WithTitle("Org"), WithBackground("#fff")))

	for _, want := range []string{
		`<rect x="-30.00" y="-14.00" width="60.00" height="28.00" rx="14.00"`,
		"<title>Org</title>",
		`fill="#fff"`,
		"<script",
		".dim .node",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("RenderSVG() missing %q", want)
		}
	}
	if strings.Contains(svg, "<circle") {
		t.Error("tree layouts should draw pills, not circles")
	}
}

func TestRenderSVG_WithoutTransform(t *testing.T) {
	l := graph.Layout{
		Mode:  graph.ModeTree,
		Nodes: []graph.PlacedNode{{ID: "a", X: 100, Y: 50, W: 40, H: 20}},
	}
	svg := string(RenderSVG(l, WithoutTransform()))
	if !strings.Contains(svg, `viewBox="0 0 80.0 60.0"`) {
		t.Errorf("RenderSVG() should frame content bounds, got %s", svg[:120])
	}
	if !strings.Contains(svg, `transform="translate(-60.00,-20.00)"`) {
		t.Error("RenderSVG() content translation is wrong")
	}
}

func TestRenderSVG_Empty(t *testing.T) {
	svg := string(RenderSVG(graph.Layout{Mode: graph.ModeGraph}))
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("RenderSVG() of an empty layout should still be a document")
	}
}
