package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/orgtower/pkg/layout/force"
	"github.com/matzehuels/orgtower/pkg/layout/tree"
	"github.com/matzehuels/orgtower/pkg/viewport"
)

// =============================================================================
// Layout - Unified Scene Format
// =============================================================================

// Layout is the serialized scene handed to rendering surfaces: positioned
// nodes, connector geometry and the current viewport transform.
//
// Mode discriminates how nodes are drawn:
//
//	Graph ("graph"): circles of Radius centered at X, Y
//	Tree  ("tree"):  pills of W×H centered at X, Y
//
// Generation and Settled are only set for live scenes.
type Layout struct {
	Mode       string             `json:"mode"`
	Width      float64            `json:"width"`
	Height     float64            `json:"height"`
	Nodes      []PlacedNode       `json:"nodes"`
	Connectors []Connector        `json:"connectors"`
	Transform  viewport.Transform `json:"transform"`
	Generation uint64             `json:"generation,omitempty"`
	Settled    bool               `json:"settled,omitempty"`
}

// IsGraph returns true for force layouts.
func (l *Layout) IsGraph() bool { return l.Mode == ModeGraph }

// IsTree returns true for tree layouts.
func (l *Layout) IsTree() bool { return l.Mode == ModeTree }

// PlacedNode is one positioned node.
type PlacedNode struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Kind   string  `json:"kind,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w,omitempty"`
	H      float64 `json:"h,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	Depth  int     `json:"depth,omitempty"`
	Pinned bool    `json:"pinned,omitempty"`
}

// Connector is the drawn form of an edge.
type Connector struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
	Path string  `json:"path"` // SVG path data
}

// =============================================================================
// Engine → Layout Conversion
// =============================================================================

// FromForce captures the current state of a force simulation. labels maps
// node IDs to display text and may be nil.
func FromForce(sim *force.Simulation, labels map[string]string, t viewport.Transform) Layout {
	cfg := sim.Config()
	bodies := sim.Bodies()
	out := Layout{
		Mode:      ModeGraph,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Nodes:     make([]PlacedNode, len(bodies)),
		Transform: t,
		Settled:   sim.IsSettled(),
	}
	pos := make(map[string]int, len(bodies))
	for i, b := range bodies {
		label := labels[b.ID]
		if label == "" {
			label = b.ID
		}
		out.Nodes[i] = PlacedNode{
			ID:     b.ID,
			Label:  label,
			Kind:   b.Kind.String(),
			X:      b.Pos.X,
			Y:      b.Pos.Y,
			Radius: b.Radius,
			Pinned: b.Pinned,
		}
		pos[b.ID] = i
	}
	for _, l := range sim.Links() {
		a, b := bodies[pos[l.From]].Pos, bodies[pos[l.To]].Pos
		out.Connectors = append(out.Connectors, Connector{
			From: l.From, To: l.To,
			X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y,
			Path: fmt.Sprintf("M %.2f,%.2f L %.2f,%.2f", a.X, a.Y, b.X, b.Y),
		})
	}
	return out
}

// FromTreeLayout captures a tree layout with its current transform.
func FromTreeLayout(res *tree.Result, width, height float64, t viewport.Transform) Layout {
	out := Layout{
		Mode:      ModeTree,
		Width:     width,
		Height:    height,
		Nodes:     make([]PlacedNode, len(res.Nodes)),
		Transform: t,
		Settled:   true,
	}
	for i, n := range res.Nodes {
		out.Nodes[i] = PlacedNode{
			ID:    n.ID,
			Label: n.Name,
			Kind:  n.Kind.String(),
			X:     n.X,
			Y:     n.Y,
			W:     n.W,
			H:     n.H,
			Depth: n.Depth,
		}
	}
	for _, c := range res.Connectors {
		out.Connectors = append(out.Connectors, Connector{
			From: c.From, To: c.To,
			X1: c.Source.X, Y1: c.Source.Y, X2: c.Target.X, Y2: c.Target.Y,
			Path: c.Path,
		})
	}
	return out
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates the mode and that every connector references a known node.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.Mode == "" {
		l.Mode = ModeGraph
	}
	if !l.IsGraph() && !l.IsTree() {
		return Layout{}, fmt.Errorf("unknown layout mode %q", l.Mode)
	}

	ids := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		ids[n.ID] = true
	}
	for _, c := range l.Connectors {
		if !ids[c.From] || !ids[c.To] {
			return Layout{}, fmt.Errorf("connector %s→%s references an unknown node", c.From, c.To)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
