// Package sink renders computed layouts as standalone SVG documents.
//
// Graph-mode layouts draw each node as a circle sized by kind with its
// label below; tree-mode layouts draw pills with the label inside. Both
// wrap the scene in a single group carrying the viewport transform, so the
// exported picture matches what an interactive surface showed.
package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/orgtower/pkg/geom"
	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/layout/text"
	"github.com/matzehuels/orgtower/pkg/render"
)

const hoverCSS = `
    .node { transition: opacity 0.2s ease; }
    .dim .node:not(.highlight), .dim .link:not(.highlight) { opacity: 0.25; }
    .link { fill: none; }
    text { pointer-events: none; }`

const hoverJS = `
    const scene = document.getElementById('scene');
    function highlight(id) {
      scene.classList.add('dim');
      document.querySelectorAll('.node').forEach(n => n.classList.toggle('highlight', n.dataset.id === id));
      document.querySelectorAll('.link').forEach(l => l.classList.toggle('highlight', l.dataset.from === id || l.dataset.to === id));
    }
    function clearHighlight() {
      scene.classList.remove('dim');
      document.querySelectorAll('.highlight').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.node').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.dataset.id));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background  string
	fontSize    float64
	interactive bool
	identity    bool
	title       string
}

// WithBackground fills the canvas with a solid color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithFontSize overrides the label font size.
func WithFontSize(size float64) SVGOption { return func(r *svgRenderer) { r.fontSize = size } }

// WithInteraction embeds hover highlighting of a node and its connectors.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithoutTransform ignores the layout transform and frames the content
// bounds instead.
func WithoutTransform() SVGOption { return func(r *svgRenderer) { r.identity = true } }

// WithTitle sets the document title.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// RenderSVG renders l as an SVG document.
func RenderSVG(l graph.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{fontSize: text.FontSize}
	for _, opt := range opts {
		opt(&r)
	}

	width, height := l.Width, l.Height
	transform := l.Transform.String()
	if r.identity || !l.Transform.Finite() {
		minX, minY, maxX, maxY := contentBounds(l)
		const pad = 20.0
		width, height = maxX-minX+2*pad, maxY-minY+2*pad
		transform = fmt.Sprintf("translate(%.2f,%.2f)", pad-minX, pad-minY)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	renderStyle(&buf, r)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}

	fmt.Fprintf(&buf, `  <g id="scene" transform="%s">`+"\n", transform)
	renderConnectors(&buf, l)
	if l.IsTree() {
		renderPills(&buf, l, r)
	} else {
		renderCircles(&buf, l, r)
	}
	buf.WriteString("  </g>\n")

	if r.interactive {
		buf.WriteString("  <script type=\"text/javascript\"><![CDATA[")
		buf.WriteString(hoverJS)
		buf.WriteString("\n  ]]></script>\n")
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderStyle(buf *bytes.Buffer, r svgRenderer) {
	fmt.Fprintf(buf, "  <style>\n    text { font-family: sans-serif; font-size: %.1fpx; }", r.fontSize)
	if r.interactive {
		buf.WriteString(hoverCSS)
	}
	buf.WriteString("\n  </style>\n")
}

func renderConnectors(buf *bytes.Buffer, l graph.Layout) {
	for _, c := range l.Connectors {
		fmt.Fprintf(buf, `    <path class="link" data-from="%s" data-to="%s" d="%s" fill="none" stroke="%s" stroke-width="1.5"/>`+"\n",
			escapeXML(c.From), escapeXML(c.To), c.Path, render.ColorConnector)
	}
}

func renderCircles(buf *bytes.Buffer, l graph.Layout, r svgRenderer) {
	for _, n := range l.Nodes {
		fmt.Fprintf(buf, `    <g class="node" data-id="%s">`+"\n", escapeXML(n.ID))
		stroke := "white"
		if n.Pinned {
			stroke = "black"
		}
		fmt.Fprintf(buf, `      <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n",
			n.X, n.Y, n.Radius, render.KindColorName(n.Kind), stroke)
		fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="hanging" font-size="%.1f">%s</text>`+"\n",
			n.X, n.Y+n.Radius+4, r.fontSize, escapeXML(text.Truncate(n.Label, text.MaxLabelChars)))
		buf.WriteString("    </g>\n")
	}
}

func renderPills(buf *bytes.Buffer, l graph.Layout, r svgRenderer) {
	for _, n := range l.Nodes {
		x, y := n.X-n.W/2, n.Y-n.H/2
		fmt.Fprintf(buf, `    <g class="node" data-id="%s">`+"\n", escapeXML(n.ID))
		fmt.Fprintf(buf, `      <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" fill="%s"/>`+"\n",
			x, y, n.W, n.H, n.H/2, render.KindColorName(n.Kind))
		fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" fill="white" font-size="%.1f">%s</text>`+"\n",
			n.X, n.Y, r.fontSize, escapeXML(text.Truncate(n.Label, text.MaxLabelChars)))
		buf.WriteString("    </g>\n")
	}
}

// labelSpace is the room reserved below a circle for its label.
const labelSpace = 20.0

// contentBounds returns the extent of all nodes including their size. An
// empty layout yields a unit box at the origin.
func contentBounds(l graph.Layout) (minX, minY, maxX, maxY float64) {
	var b geom.Rect
	for _, n := range l.Nodes {
		if n.Radius > 0 {
			b = b.Extend(r2.Vec{X: n.X - n.Radius, Y: n.Y - n.Radius})
			b = b.Extend(r2.Vec{X: n.X + n.Radius, Y: n.Y + n.Radius + labelSpace})
			continue
		}
		b = b.Extend(r2.Vec{X: n.X - n.W/2, Y: n.Y - n.H/2})
		b = b.Extend(r2.Vec{X: n.X + n.W/2, Y: n.Y + n.H/2})
	}
	if b.Empty() {
		return 0, 0, 1, 1
	}
	return b.Min.X, b.Min.Y, b.Max.X, b.Max.Y
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
