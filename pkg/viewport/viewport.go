// Package viewport owns the pan/zoom camera shared by both layout modes.
//
// A [Controller] holds the single current [Transform]. User gestures (zoom
// buttons, drag-to-pan, wheel) and programmatic fits all mutate that one
// value; node positions are never touched. Scale is clamped to
// [Config.MinScale, Config.MaxScale] for every gesture.
//
//	vp := viewport.New(960, 640, viewport.Config{})
//	vp.Fit(bounds, viewport.FitOptions{Fraction: 0.8, SkipDegenerate: true})
//	vp.Wheel(-120, r2.Vec{X: 480, Y: 320})
//
// Controllers are not safe for concurrent use; the scene serializes access.
package viewport

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/orgtower/pkg/geom"
)

// Defaults for [Config].
const (
	DefaultMinScale   = 0.2
	DefaultMaxScale   = 4.0
	DefaultZoomFactor = 1.2

	// wheelSensitivity converts wheel deltas to an exponent of two.
	wheelSensitivity = 0.002
)

// Config sets the zoom behavior of a controller. Zero fields take defaults.
type Config struct {
	MinScale   float64 `toml:"min_scale" json:"min_scale"`
	MaxScale   float64 `toml:"max_scale" json:"max_scale"`
	ZoomFactor float64 `toml:"zoom_factor" json:"zoom_factor"`
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.MinScale <= 0 {
		c.MinScale = DefaultMinScale
	}
	if c.MaxScale <= 0 {
		c.MaxScale = DefaultMaxScale
	}
	if c.ZoomFactor <= 1 {
		c.ZoomFactor = DefaultZoomFactor
	}
	if c.MinScale > c.MaxScale {
		c.MinScale, c.MaxScale = c.MaxScale, c.MinScale
	}
}

// Controller is the camera state for one viewport.
type Controller struct {
	cfg  Config
	size r2.Vec
	t    Transform
}

// New returns a controller for a viewport of the given size, starting at
// the identity transform.
func New(width, height float64, cfg Config) *Controller {
	cfg.SetDefaults()
	return &Controller{cfg: cfg, size: r2.Vec{X: width, Y: height}, t: Identity}
}

// Config returns the effective configuration.
func (c *Controller) Config() Config { return c.cfg }

// Size returns the viewport size.
func (c *Controller) Size() r2.Vec { return c.size }

// SetSize changes the viewport size. The transform is kept.
func (c *Controller) SetSize(width, height float64) {
	c.size = r2.Vec{X: width, Y: height}
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.t }

// Set replaces the transform. Non-finite values are ignored; the scale is
// clamped.
func (c *Controller) Set(t Transform) {
	if !t.Finite() {
		return
	}
	t.K = c.clampScale(t.K)
	c.t = t
}

// Reset restores the identity transform.
func (c *Controller) Reset() { c.t = Identity }

// ZoomIn scales up by the zoom factor about the viewport center.
func (c *Controller) ZoomIn() { c.ZoomBy(c.cfg.ZoomFactor, c.center()) }

// ZoomOut scales down by the zoom factor about the viewport center.
func (c *Controller) ZoomOut() { c.ZoomBy(1/c.cfg.ZoomFactor, c.center()) }

// ZoomBy multiplies the scale by factor, keeping the world point under the
// screen point at fixed.
func (c *Controller) ZoomBy(factor float64, at r2.Vec) {
	if !finite(factor) || factor <= 0 || !finite(at.X) || !finite(at.Y) {
		return
	}
	world := c.t.Invert(at)
	k := c.t.K * factor
	// A fit may leave the scale outside the gesture range; zooming never
	// jumps across the range, it only stops at its edge.
	if factor < 1 {
		k = math.Max(k, math.Min(c.cfg.MinScale, c.t.K))
	} else {
		k = math.Min(k, math.Max(c.cfg.MaxScale, c.t.K))
	}
	c.t = Transform{X: at.X - world.X*k, Y: at.Y - world.Y*k, K: k}
}

// Wheel zooms about the pointer by 2^(-deltaY*0.002), so scrolling up
// (negative delta) zooms in.
func (c *Controller) Wheel(deltaY float64, at r2.Vec) {
	c.ZoomBy(math.Pow(2, -deltaY*wheelSensitivity), at)
}

// Pan translates the camera by a screen-space delta.
func (c *Controller) Pan(dx, dy float64) {
	if !finite(dx) || !finite(dy) {
		return
	}
	c.t.X += dx
	c.t.Y += dy
}

// Fit sets the transform so bounds fill the viewport as described by opts.
// The upper scale clamp never exceeds the controller's; there is no lower
// clamp unless opts sets one, so large scenes still fit. It reports false,
// leaving the transform untouched, when the fit is skipped.
func (c *Controller) Fit(bounds geom.Rect, opts FitOptions) bool {
	if opts.MaxScale <= 0 || opts.MaxScale > c.cfg.MaxScale {
		opts.MaxScale = c.cfg.MaxScale
	}
	t, ok := FitTransform(bounds, c.size, opts)
	if !ok {
		return false
	}
	c.t = t
	return true
}

func (c *Controller) center() r2.Vec { return r2.Scale(0.5, c.size) }

func (c *Controller) clampScale(k float64) float64 {
	return math.Max(c.cfg.MinScale, math.Min(c.cfg.MaxScale, k))
}
