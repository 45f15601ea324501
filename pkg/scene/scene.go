package scene

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/dag/build"
	"github.com/matzehuels/orgtower/pkg/dag/transform"
	"github.com/matzehuels/orgtower/pkg/geom"
	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/layout/force"
	"github.com/matzehuels/orgtower/pkg/layout/text"
	"github.com/matzehuels/orgtower/pkg/layout/tree"
	"github.com/matzehuels/orgtower/pkg/rows"
	"github.com/matzehuels/orgtower/pkg/viewport"
)

// Mode selects the layout engine.
type Mode string

const (
	ModeGraph Mode = graph.ModeGraph
	ModeTree  Mode = graph.ModeTree
)

// ParseMode converts a mode name. Matching ignores case and surrounding
// space.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeGraph, ModeTree:
		return m, nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be %q or %q", s, ModeGraph, ModeTree)
	}
}

// Defaults for [Config].
const (
	DefaultWidth  = 960.0
	DefaultHeight = 640.0
)

// Config holds the engine settings of a scene. Zero fields take defaults.
type Config struct {
	Width      float64 // Viewport width
	Height     float64 // Viewport height
	Mode       Mode    // Initial mode (default graph)
	ActiveOnly bool    // Initial active-only filter
	RootID     string  // Root node ID (default build.RootID)
	RootName   string  // Root display name (default build.RootName)

	// Static settles the force layout synchronously on every rebuild and
	// fits at once instead of running the background loop.
	Static bool

	Force    force.Config
	Tree     tree.Config
	Viewport viewport.Config
}

// SetDefaults fills zero fields and propagates the viewport size into the
// engine configs.
func (c *Config) SetDefaults() {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Mode == "" {
		c.Mode = ModeGraph
	}
	if c.RootID == "" {
		c.RootID = build.RootID
	}
	if c.RootName == "" {
		c.RootName = build.RootName
	}
	c.Force.Width, c.Force.Height = c.Width, c.Height
	c.Tree.Width, c.Tree.Height = c.Width, c.Height
	c.Force.SetDefaults()
	c.Tree.SetDefaults()
	c.Viewport.SetDefaults()
}

// Option configures a [Scene].
type Option func(*Scene)

// WithLogger sets the logger for lifecycle and data-quality messages.
func WithLogger(l *log.Logger) Option { return func(s *Scene) { s.logger = l } }

// WithMeasurer sets the text measurer used for tree pills.
func WithMeasurer(m text.Measurer) Option { return func(s *Scene) { s.measurer = m } }

// WithContext sets the parent context of the background simulation loop.
func WithContext(ctx context.Context) Option { return func(s *Scene) { s.ctx = ctx } }

// Scene is the interactive state of one view. It is safe for concurrent
// use; all events are serialized by one lock.
type Scene struct {
	mu       sync.Mutex
	cfg      Config
	logger   *log.Logger
	measurer text.Measurer
	ctx      context.Context

	rows       []rows.Row
	activeOnly bool
	mode       Mode
	graph      *dag.DAG
	report     build.Report
	tree       *dag.Tree
	labels     map[string]string

	sim    *force.Simulation
	runner *force.Runner
	layout *tree.Result
	view   *viewport.Controller

	generation uint64
	dragging   string
	closed     bool

	subs    map[uint64]func(graph.Layout)
	nextSub uint64
}

// New returns an empty scene. Call [Scene.SetRows] to load data.
func New(cfg Config, opts ...Option) *Scene {
	cfg.SetDefaults()
	s := &Scene{
		cfg:        cfg,
		ctx:        context.Background(),
		activeOnly: cfg.ActiveOnly,
		mode:       cfg.Mode,
		view:       viewport.New(cfg.Width, cfg.Height, cfg.Viewport),
		subs:       make(map[uint64]func(graph.Layout)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if s.measurer == nil {
		s.measurer = text.Approx{}
	}
	s.rebuildLocked()
	return s
}

// =============================================================================
// Data events
// =============================================================================

// SetRows replaces the input rows and rebuilds the graph.
func (s *Scene) SetRows(rs []rows.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.rows = append([]rows.Row(nil), rs...)
	s.rebuildLocked()
}

// SetActiveOnly toggles the active-only filter and rebuilds the graph when
// it changes.
func (s *Scene) SetActiveOnly(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.activeOnly == active {
		return
	}
	s.activeOnly = active
	s.rebuildLocked()
}

// SetMode switches the layout engine. The graph is kept; only the layout
// is torn down and rebuilt.
func (s *Scene) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.mode == m {
		return
	}
	s.mode = m
	s.teardownLocked()
	s.generation++
	s.startLayoutLocked()
	s.logger.Debug("switched mode", "mode", m, "generation", s.generation)
	s.emitLocked()
}

func (s *Scene) rebuildLocked() {
	s.teardownLocked()
	s.generation++

	g, report := build.Build(rows.Filter(s.rows, s.activeOnly), build.Options{
		RootID:   s.cfg.RootID,
		RootName: s.cfg.RootName,
		Logger:   s.logger,
	})
	s.graph, s.report = g, report
	s.labels = make(map[string]string, g.NodeCount())
	for _, n := range g.Nodes() {
		s.labels[n.ID] = n.Label()
	}
	s.tree, _ = transform.ReduceTree(g, s.cfg.RootID)
	if !report.Clean() {
		s.logger.Warn("data-quality fallbacks", "report", report.String())
	}

	s.view.Reset()
	s.startLayoutLocked()
	s.logger.Debug("rebuilt scene",
		"generation", s.generation,
		"mode", s.mode,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount())
	s.emitLocked()
}

// teardownLocked discards the active layout. The old loop exits on its
// own; it cannot step again because its context is cancelled before the
// lock is released.
func (s *Scene) teardownLocked() {
	if s.runner != nil {
		s.runner.Stop()
		s.runner = nil
	}
	s.sim, s.layout, s.dragging = nil, nil, ""
}

func (s *Scene) startLayoutLocked() {
	switch s.mode {
	case ModeTree:
		labels := tree.Measure(s.tree, s.measurer, s.cfg.Tree.Style)
		s.layout = tree.Layout(s.tree, labels, s.cfg.Tree)
		s.view.Fit(s.layout.Bounds, s.cfg.Tree.FitOptions())
	default:
		s.sim = force.New(s.graph, s.cfg.Force)
		if s.cfg.Static {
			force.Settle(s.sim, 0)
			s.fitForceLocked()
			return
		}
		s.runner = force.Run(s.ctx, s.sim, s.hooks(s.generation))
	}
}

func (s *Scene) hooks(gen uint64) force.Hooks {
	return force.Hooks{
		Locker: &s.mu,
		Tick: func() bool {
			if s.generation != gen {
				return false
			}
			s.emitLocked()
			return true
		},
		Fit: func(geom.Rect) {
			if s.generation != gen {
				return
			}
			s.fitForceLocked()
			s.emitLocked()
		},
	}
}

func (s *Scene) fitForceLocked() {
	s.view.Fit(s.sim.Bounds(), viewport.FitOptions{
		Fraction:       s.cfg.Force.FitFraction,
		SkipDegenerate: true,
	})
}

// =============================================================================
// Camera events
// =============================================================================

// ZoomIn zooms in about the viewport center.
func (s *Scene) ZoomIn() { s.camera(func(v *viewport.Controller) { v.ZoomIn() }) }

// ZoomOut zooms out about the viewport center.
func (s *Scene) ZoomOut() { s.camera(func(v *viewport.Controller) { v.ZoomOut() }) }

// Pan moves the camera by a screen-space delta.
func (s *Scene) Pan(dx, dy float64) { s.camera(func(v *viewport.Controller) { v.Pan(dx, dy) }) }

// Wheel zooms about the screen point (x, y).
func (s *Scene) Wheel(deltaY, x, y float64) {
	s.camera(func(v *viewport.Controller) { v.Wheel(deltaY, r2.Vec{X: x, Y: y}) })
}

// ResetView frames the current layout again: the tree is re-fit, the
// graph is fit to its current bounds when they are not degenerate and
// reset to the identity otherwise.
func (s *Scene) ResetView() {
	s.camera(func(v *viewport.Controller) {
		switch {
		case s.layout != nil:
			v.Fit(s.layout.Bounds, s.cfg.Tree.FitOptions())
		case s.sim != nil:
			v.Reset()
			s.fitForceLocked()
		default:
			v.Reset()
		}
	})
}

// Resize changes the viewport size. The transform is kept.
func (s *Scene) Resize(width, height float64) {
	s.camera(func(v *viewport.Controller) { v.SetSize(width, height) })
}

func (s *Scene) camera(fn func(v *viewport.Controller)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn(s.view)
	s.emitLocked()
}

// =============================================================================
// Node events
// =============================================================================

// DragStart begins dragging a node. It reports false for unknown nodes.
func (s *Scene) DragStart(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	ok := false
	switch {
	case s.sim != nil:
		ok = s.sim.DragStart(id)
	case s.layout != nil:
		_, ok = s.layout.Node(id)
	}
	if ok {
		s.dragging = id
		s.emitLocked()
	}
	return ok
}

// DragMove moves the dragged node to the screen point (x, y). It reports
// false when id is not being dragged.
func (s *Scene) DragMove(id string, x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.dragging == "" || s.dragging != id {
		return false
	}
	p := s.view.Transform().Invert(r2.Vec{X: x, Y: y})
	ok := false
	switch {
	case s.sim != nil:
		ok = s.sim.DragMove(id, p.X, p.Y)
	case s.layout != nil:
		ok = s.layout.Move(id, p.X, p.Y)
	}
	if ok {
		s.emitLocked()
	}
	return ok
}

// DragEnd releases the dragged node. In graph mode the simulation is
// reheated so neighbors re-relax; a moved tree node stays where it was
// dropped.
func (s *Scene) DragEnd(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.dragging == "" || s.dragging != id {
		return false
	}
	s.dragging = ""
	if s.sim != nil {
		s.sim.DragEnd(id)
		if s.cfg.Static {
			force.Settle(s.sim, 0)
		}
	}
	s.emitLocked()
	return true
}

// Detail is the hover panel content for one node.
type Detail struct {
	Node     graph.Node `json:"node"`
	Parents  []string   `json:"parents,omitempty"`
	Children []string   `json:"children,omitempty"`
}

// Hover returns the details of a node.
func (s *Scene) Hover(id string) (Detail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.graph.Node(id)
	if !ok {
		return Detail{}, false
	}
	d := Detail{Node: graph.NodeFromDAG(n)}
	for _, p := range s.graph.Parents(id) {
		d.Parents = append(d.Parents, s.labels[p])
	}
	for _, c := range s.graph.Children(id) {
		d.Children = append(d.Children, s.labels[c])
	}
	return d, true
}

// =============================================================================
// Read access
// =============================================================================

// Mode returns the current mode.
func (s *Scene) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ActiveOnly reports whether the active-only filter is on.
func (s *Scene) ActiveOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeOnly
}

// Generation returns the current generation. It increases on every rebuild
// and mode switch.
func (s *Scene) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Graph returns the current graph in node-link form.
func (s *Scene) Graph() graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.FromDAG(s.graph)
}

// Tree returns the current tree reduction.
func (s *Scene) Tree() graph.TreeNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return graph.TreeNode{}
	}
	return graph.FromTree(s.tree)
}

// Report returns the data-quality report of the last rebuild.
func (s *Scene) Report() build.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Snapshot returns the current layout.
func (s *Scene) Snapshot() graph.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Scene) snapshotLocked() graph.Layout {
	var l graph.Layout
	switch {
	case s.layout != nil:
		l = graph.FromTreeLayout(s.layout, s.cfg.Width, s.cfg.Height, s.view.Transform())
	case s.sim != nil:
		l = graph.FromForce(s.sim, s.labels, s.view.Transform())
	default:
		l = graph.Layout{Mode: string(s.mode), Width: s.cfg.Width, Height: s.cfg.Height, Transform: s.view.Transform()}
	}
	size := s.view.Size()
	l.Width, l.Height = size.X, size.Y
	l.Generation = s.generation
	return l
}

// Subscribe registers fn to receive a snapshot after every change and
// returns a function that removes it.
func (s *Scene) Subscribe(fn func(graph.Layout)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Scene) emitLocked() {
	if len(s.subs) == 0 {
		return
	}
	l := s.snapshotLocked()
	for _, fn := range s.subs {
		fn(l)
	}
}

// Close stops the simulation loop and waits for it to exit. Later events
// are ignored.
func (s *Scene) Close() {
	s.mu.Lock()
	r := s.runner
	s.teardownLocked()
	s.closed = true
	s.mu.Unlock()
	if r != nil {
		r.Wait()
	}
}
