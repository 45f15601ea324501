// Package tree computes the deterministic left-to-right layout of a
// governance tree.
//
// Layout runs in two pure phases. [Measure] sizes a pill for every label
// through a pluggable [text.Measurer]; [Layout] consumes those sizes and
// assigns positions:
//
//   - depth maps to x (x = depth * LevelSpacing, root at the left)
//   - leaves are stacked in depth-first order along y, SiblingSpacing apart
//     when they share a parent and SiblingSpacing*SubtreeSeparation apart
//     otherwise
//   - internal nodes sit midway between their first and last child
//
// Connectors are cubic curves from the right edge of the parent pill to the
// left edge of the child pill with both control points at the midpoint x.
// The result also carries the transform that fits the whole tree inside
// the viewport; callers apply it once, immediately.
package tree

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/geom"
	"github.com/matzehuels/orgtower/pkg/layout/text"
	"github.com/matzehuels/orgtower/pkg/viewport"
)

// Defaults for [Config].
const (
	DefaultLevelSpacing      = 260.0
	DefaultSiblingSpacing    = 44.0
	DefaultSubtreeSeparation = 1.5
	DefaultMargin            = 40.0
	DefaultMaxScale          = 1.0
	DefaultWidth             = 960.0
	DefaultHeight            = 640.0
)

// Config holds tree spacing and fit parameters.
type Config struct {
	LevelSpacing      float64 `toml:"level_spacing" json:"level_spacing"`
	SiblingSpacing    float64 `toml:"sibling_spacing" json:"sibling_spacing"`
	SubtreeSeparation float64 `toml:"subtree_separation" json:"subtree_separation"`
	Margin            float64 `toml:"margin" json:"margin"`
	MaxScale          float64 `toml:"max_scale" json:"max_scale"`
	Width             float64 `toml:"width" json:"width"`   // Viewport width
	Height            float64 `toml:"height" json:"height"` // Viewport height
	Style             Style   `toml:"style" json:"style"`
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.LevelSpacing <= 0 {
		c.LevelSpacing = DefaultLevelSpacing
	}
	if c.SiblingSpacing <= 0 {
		c.SiblingSpacing = DefaultSiblingSpacing
	}
	if c.SubtreeSeparation < 1 {
		c.SubtreeSeparation = DefaultSubtreeSeparation
	}
	if c.Margin <= 0 {
		c.Margin = DefaultMargin
	}
	if c.MaxScale <= 0 {
		c.MaxScale = DefaultMaxScale
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	c.Style.SetDefaults()
}

// FitOptions returns the viewport fit used for trees.
func (c Config) FitOptions() viewport.FitOptions {
	return viewport.FitOptions{Fraction: 1, Margin: c.Margin, MaxScale: c.MaxScale}
}

// Node is a positioned tree node. X and Y are the pill center.
type Node struct {
	ID     string
	Name   string // Display text, possibly truncated
	Kind   dag.Kind
	Depth  int
	Parent string // Empty for the root
	X, Y   float64
	W, H   float64
}

// Rect returns the pill rectangle.
func (n Node) Rect() geom.Rect {
	return geom.RectOf(r2.Vec{X: n.X - n.W/2, Y: n.Y - n.H/2}, r2.Vec{X: n.X + n.W/2, Y: n.Y + n.H/2})
}

// Connector is the curve from a parent pill to a child pill.
type Connector struct {
	From, To string
	Source   r2.Vec // Parent right edge
	Target   r2.Vec // Child left edge
	Path     string // SVG path data
}

// Result is a computed tree layout.
type Result struct {
	Nodes      []Node // Depth-first pre-order
	Connectors []Connector
	Bounds     geom.Rect
	Transform  viewport.Transform

	cfg   Config
	index map[string]int
}

// Layout positions t. Labels missing from labels are measured with
// [text.Approx]. A nil or empty tree yields an empty result with the
// identity transform.
func Layout(t *dag.Tree, labels Labels, cfg Config) *Result {
	cfg.SetDefaults()
	res := &Result{cfg: cfg, index: make(map[string]int), Transform: viewport.Identity}
	if t == nil || t.Root == nil {
		return res
	}

	l := &layouter{cfg: cfg, labels: labels, res: res}
	l.place(t.Root, "", 0)
	res.rebuild()
	return res
}

type layouter struct {
	cfg     Config
	labels  Labels
	res     *Result
	nextY   float64
	lastPar string
	placed  bool
}

// place assigns positions in pre-order and returns the node's y.
func (l *layouter) place(tn *dag.TreeNode, parent string, depth int) float64 {
	lbl, ok := l.labels[tn.Node.ID]
	if !ok {
		lbl = measureOne(tn.Node.Label(), text.Approx{}, l.cfg.Style)
	}

	i := len(l.res.Nodes)
	l.res.Nodes = append(l.res.Nodes, Node{
		ID:     tn.Node.ID,
		Name:   lbl.Text,
		Kind:   tn.Node.Kind,
		Depth:  depth,
		Parent: parent,
		X:      float64(depth) * l.cfg.LevelSpacing,
		W:      lbl.W,
		H:      lbl.H,
	})
	l.res.index[tn.Node.ID] = i

	var y float64
	if tn.IsLeaf() {
		if l.placed {
			gap := l.cfg.SiblingSpacing
			if parent != l.lastPar {
				gap *= l.cfg.SubtreeSeparation
			}
			l.nextY += gap
		}
		y = l.nextY
		l.placed = true
		l.lastPar = parent
	} else {
		first := l.place(tn.Children[0], tn.Node.ID, depth+1)
		last := first
		for _, c := range tn.Children[1:] {
			last = l.place(c, tn.Node.ID, depth+1)
		}
		y = (first + last) / 2
	}
	l.res.Nodes[i].Y = y
	return y
}

// Node returns the positioned node with the given ID.
func (r *Result) Node(id string) (Node, bool) {
	i, ok := r.index[id]
	if !ok {
		return Node{}, false
	}
	return r.Nodes[i], true
}

// Move overrides the position of one node, as a drag does, and recomputes
// the connectors and bounds. The fit transform is left alone. It reports
// false for unknown nodes or non-finite coordinates.
func (r *Result) Move(id string, x, y float64) bool {
	i, ok := r.index[id]
	if !ok || math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return false
	}
	r.Nodes[i].X, r.Nodes[i].Y = x, y
	r.connect()
	r.measureBounds()
	return true
}

// Refit recomputes the fit transform from the current bounds.
func (r *Result) Refit() viewport.Transform {
	size := r2.Vec{X: r.cfg.Width, Y: r.cfg.Height}
	r.Transform, _ = viewport.FitTransform(r.Bounds, size, r.cfg.FitOptions())
	return r.Transform
}

func (r *Result) rebuild() {
	r.connect()
	r.measureBounds()
	r.Refit()
}

func (r *Result) connect() {
	r.Connectors = r.Connectors[:0]
	for _, n := range r.Nodes {
		if n.Parent == "" {
			continue
		}
		p := r.Nodes[r.index[n.Parent]]
		src := r2.Vec{X: p.X + p.W/2, Y: p.Y}
		dst := r2.Vec{X: n.X - n.W/2, Y: n.Y}
		r.Connectors = append(r.Connectors, Connector{
			From:   p.ID,
			To:     n.ID,
			Source: src,
			Target: dst,
			Path:   CurvePath(src, dst),
		})
	}
}

func (r *Result) measureBounds() {
	var b geom.Rect
	for _, n := range r.Nodes {
		b = b.Union(n.Rect())
	}
	r.Bounds = b
}

// CurvePath returns the horizontal cubic curve between two points as SVG
// path data: "M x1,y1 C mx,y1 mx,y2 x2,y2" with mx the midpoint x.
func CurvePath(a, b r2.Vec) string {
	mx := (a.X + b.X) / 2
	var sb strings.Builder
	sb.WriteString("M ")
	writePoint(&sb, a.X, a.Y)
	sb.WriteString(" C ")
	writePoint(&sb, mx, a.Y)
	sb.WriteByte(' ')
	writePoint(&sb, mx, b.Y)
	sb.WriteByte(' ')
	writePoint(&sb, b.X, b.Y)
	return sb.String()
}

func writePoint(sb *strings.Builder, x, y float64) {
	sb.WriteString(num(x))
	sb.WriteByte(',')
	sb.WriteString(num(y))
}

func num(f float64) string {
	r := math.Round(f*100)/100 + 0 // normalizes -0
	return strconv.FormatFloat(r, 'f', -1, 64)
}
