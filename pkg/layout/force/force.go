// Package force implements the force-directed layout of a governance graph.
//
// A [Simulation] is an explicit state container advanced by discrete
// [Simulation.Step] calls. Each step mixes four forces into the node
// velocities:
//
//   - link springs pulling connected nodes toward LinkDistance
//   - many-body repulsion falling off with distance
//   - a pull of the center of mass toward the viewport center
//   - collision separation keeping pills from overlapping
//
// and integrates positions with damping. A temperature (alpha) decays
// toward zero; once below AlphaMin the simulation is settled. Dragging a
// node pins it for the gesture and reheats the simulation on release so
// neighbors re-relax.
//
// [Run] drives a simulation from a ticker until stopped and schedules the
// single delayed auto-fit; [Settle] relaxes synchronously.
//
// Simulations are not safe for concurrent use. A [Runner] takes the
// caller's lock around every step.
package force

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/geom"
)

// distanceMin2 bounds the squared distance used for repulsion so nearly
// coincident nodes do not explode apart.
const distanceMin2 = 1.0

// Body is the simulated state of one node.
type Body struct {
	ID     string
	Kind   dag.Kind
	Radius float64
	Pos    r2.Vec
	Vel    r2.Vec
	Pinned bool
}

type link struct {
	source, target int
	strength       float64
	bias           float64 // Share of the correction applied to the target
}

// Link is an edge between two bodies.
type Link struct {
	From, To string
}

// Simulation is the state of one force layout.
type Simulation struct {
	cfg         Config
	bodies      []Body
	pins        []r2.Vec
	index       map[string]int
	links       []link
	alpha       float64
	alphaTarget float64
	rng         *rand.Rand
	steps       int
}

// New creates a simulation for g. Nodes start on a phyllotaxis spiral
// around the viewport center; the graph is only read.
func New(g *dag.DAG, cfg Config) *Simulation {
	cfg.SetDefaults()
	nodes := g.Nodes()
	s := &Simulation{
		cfg:    cfg,
		bodies: make([]Body, len(nodes)),
		pins:   make([]r2.Vec, len(nodes)),
		index:  make(map[string]int, len(nodes)),
		alpha:  1,
		rng:    rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0x9e3779b97f4a7c15)),
	}

	center := s.Center()
	golden := math.Pi * (3 - math.Sqrt(5))
	for i, n := range nodes {
		radius := 10 * math.Sqrt(0.5+float64(i))
		angle := float64(i) * golden
		s.bodies[i] = Body{
			ID:     n.ID,
			Kind:   n.Kind,
			Radius: cfg.Radius(n.Kind),
			Pos:    r2.Add(center, r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}),
		}
		s.index[n.ID] = i
	}

	for _, e := range g.Edges() {
		src, ok1 := s.index[e.From]
		dst, ok2 := s.index[e.To]
		if !ok1 || !ok2 || src == dst {
			continue
		}
		ds, dt := float64(g.Degree(e.From)), float64(g.Degree(e.To))
		s.links = append(s.links, link{
			source:   src,
			target:   dst,
			strength: 1 / math.Min(ds, dt),
			bias:     ds / (ds + dt),
		})
	}
	return s
}

// Config returns the effective configuration.
func (s *Simulation) Config() Config { return s.cfg }

// Center returns the viewport center the graph is pulled toward.
func (s *Simulation) Center() r2.Vec {
	return r2.Vec{X: s.cfg.Width / 2, Y: s.cfg.Height / 2}
}

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Steps returns the number of steps taken so far.
func (s *Simulation) Steps() int { return s.steps }

// IsSettled reports whether the temperature has decayed below AlphaMin
// with nothing holding it up.
func (s *Simulation) IsSettled() bool {
	return s.alpha < s.cfg.AlphaMin && s.alphaTarget == 0
}

// Reheat raises the temperature to at least alpha.
func (s *Simulation) Reheat(alpha float64) {
	s.alpha = math.Max(s.alpha, alpha)
}

// Step advances the simulation by dt (1 is one animation frame).
func (s *Simulation) Step(dt float64) {
	if dt <= 0 || len(s.bodies) == 0 {
		return
	}
	s.steps++
	s.alpha += (s.alphaTarget - s.alpha) * math.Min(1, s.cfg.AlphaDecay*dt)

	s.applyLinks()
	s.applyCharge()
	s.applyCenter()
	s.applyCollide()

	decay := 1 - s.cfg.VelocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.Pinned {
			b.Pos, b.Vel = s.pins[i], r2.Vec{}
			continue
		}
		b.Vel = r2.Scale(decay, b.Vel)
		b.Pos = r2.Add(b.Pos, r2.Scale(dt, b.Vel))
	}
}

func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		src, dst := &s.bodies[l.source], &s.bodies[l.target]
		d := r2.Sub(r2.Add(dst.Pos, dst.Vel), r2.Add(src.Pos, src.Vel))
		d = s.nonZero(d)
		dist := r2.Norm(d)
		k := (dist - s.cfg.LinkDistance) / dist * s.alpha * l.strength
		d = r2.Scale(k, d)
		dst.Vel = r2.Sub(dst.Vel, r2.Scale(l.bias, d))
		src.Vel = r2.Add(src.Vel, r2.Scale(1-l.bias, d))
	}
}

func (s *Simulation) applyCharge() {
	for i := range s.bodies {
		for j := i + 1; j < len(s.bodies); j++ {
			bi, bj := &s.bodies[i], &s.bodies[j]
			d := s.nonZero(r2.Sub(bj.Pos, bi.Pos))
			l2 := r2.Norm2(d)
			if l2 < distanceMin2 {
				l2 = math.Sqrt(distanceMin2 * l2)
			}
			w := s.cfg.ChargeStrength * s.alpha / l2
			bi.Vel = r2.Add(bi.Vel, r2.Scale(w, d))
			bj.Vel = r2.Sub(bj.Vel, r2.Scale(w, d))
		}
	}
}

func (s *Simulation) applyCenter() {
	var sum r2.Vec
	for _, b := range s.bodies {
		sum = r2.Add(sum, b.Pos)
	}
	mean := r2.Scale(1/float64(len(s.bodies)), sum)
	pull := r2.Scale(s.cfg.CenterStrength, r2.Sub(s.Center(), mean))
	for i := range s.bodies {
		s.bodies[i].Vel = r2.Add(s.bodies[i].Vel, pull)
	}
}

func (s *Simulation) applyCollide() {
	pad := s.cfg.CollidePadding
	for i := range s.bodies {
		for j := i + 1; j < len(s.bodies); j++ {
			bi, bj := &s.bodies[i], &s.bodies[j]
			minSep := bi.Radius + bj.Radius + pad
			d := r2.Sub(r2.Add(bj.Pos, bj.Vel), r2.Add(bi.Pos, bi.Vel))
			if r2.Norm2(d) >= minSep*minSep {
				continue
			}
			d = s.nonZero(d)
			dist := r2.Norm(d)
			k := (minSep - dist) / dist * s.cfg.CollideStrength
			ri2, rj2 := bi.Radius*bi.Radius, bj.Radius*bj.Radius
			share := rj2 / (ri2 + rj2)
			bi.Vel = r2.Sub(bi.Vel, r2.Scale(k*share, d))
			bj.Vel = r2.Add(bj.Vel, r2.Scale(k*(1-share), d))
		}
	}
}

// nonZero replaces a zero vector by a tiny seeded offset, so coincident
// nodes separate deterministically without dividing by zero.
func (s *Simulation) nonZero(d r2.Vec) r2.Vec {
	if d.X == 0 {
		d.X = (s.rng.Float64() - 0.5) * 1e-6
	}
	if d.Y == 0 {
		d.Y = (s.rng.Float64() - 0.5) * 1e-6
	}
	return d
}

// =============================================================================
// Pinning and drag
// =============================================================================

// Pin holds a node at (x, y) until [Simulation.Unpin]. It reports false for
// unknown nodes or non-finite coordinates.
func (s *Simulation) Pin(id string, x, y float64) bool {
	i, ok := s.index[id]
	if !ok || !finite(x) || !finite(y) {
		return false
	}
	p := r2.Vec{X: x, Y: y}
	s.pins[i] = p
	s.bodies[i].Pinned = true
	s.bodies[i].Pos = p
	s.bodies[i].Vel = r2.Vec{}
	return true
}

// Unpin releases a pinned node.
func (s *Simulation) Unpin(id string) {
	if i, ok := s.index[id]; ok {
		s.bodies[i].Pinned = false
	}
}

// DragStart pins a node at its current position and keeps the
// simulation warm for the duration of the gesture.
func (s *Simulation) DragStart(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.Pin(id, s.bodies[i].Pos.X, s.bodies[i].Pos.Y)
	s.alphaTarget = s.cfg.ReheatAlpha
	s.Reheat(s.cfg.ReheatAlpha)
	return true
}

// DragMove moves a dragged node.
func (s *Simulation) DragMove(id string, x, y float64) bool {
	i, ok := s.index[id]
	if !ok || !s.bodies[i].Pinned {
		return false
	}
	return s.Pin(id, x, y)
}

// DragEnd releases a dragged node and nudges the temperature back up so
// its neighbors re-relax.
func (s *Simulation) DragEnd(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	s.Unpin(id)
	s.alphaTarget = 0
	s.Reheat(s.cfg.ReheatAlpha)
	return true
}

// =============================================================================
// Read access
// =============================================================================

// Bodies returns a copy of every body in graph insertion order.
func (s *Simulation) Bodies() []Body {
	out := make([]Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// Links returns the simulated edges in insertion order.
func (s *Simulation) Links() []Link {
	out := make([]Link, len(s.links))
	for i, l := range s.links {
		out[i] = Link{From: s.bodies[l.source].ID, To: s.bodies[l.target].ID}
	}
	return out
}

// Position returns the position of one node.
func (s *Simulation) Position(id string) (r2.Vec, bool) {
	i, ok := s.index[id]
	if !ok {
		return r2.Vec{}, false
	}
	return s.bodies[i].Pos, true
}

// Positions returns every node position keyed by ID.
func (s *Simulation) Positions() map[string]r2.Vec {
	out := make(map[string]r2.Vec, len(s.bodies))
	for _, b := range s.bodies {
		out[b.ID] = b.Pos
	}
	return out
}

// Bounds returns the bounding box of all node positions. It is degenerate
// for a single node.
func (s *Simulation) Bounds() geom.Rect {
	var r geom.Rect
	for _, b := range s.bodies {
		r = r.Extend(b.Pos)
	}
	return r
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
