package viewport

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/orgtower/pkg/geom"
)

// Transform maps world coordinates to screen coordinates:
// screen = world*K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the transform that leaves coordinates unchanged.
var Identity = Transform{K: 1}

// Apply maps a world point to screen space.
func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back to world space. A zero scale is treated
// as 1 so the result is always finite.
func (t Transform) Invert(p r2.Vec) r2.Vec {
	k := t.K
	if k == 0 {
		k = 1
	}
	return r2.Vec{X: (p.X - t.X) / k, Y: (p.Y - t.Y) / k}
}

// Finite reports whether every component is a finite number and the scale
// is positive.
func (t Transform) Finite() bool {
	return finite(t.X) && finite(t.Y) && finite(t.K) && t.K > 0
}

// String renders the transform as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%.2f,%.2f) scale(%.4f)", t.X, t.Y, t.K)
}

// FitOptions controls [FitTransform].
type FitOptions struct {
	Fraction       float64 // Share of the viewport the bounds may occupy (default 1)
	Margin         float64 // Fixed screen-space margin on every side
	MinScale       float64 // Lower scale clamp (0 = none)
	MaxScale       float64 // Upper scale clamp (0 = none)
	SkipDegenerate bool    // Refuse to fit empty or zero-area bounds
}

// FitTransform returns the transform that centers bounds in a viewport of
// the given size and scales it to fill the usable area.
//
// When SkipDegenerate is set, empty or zero-area bounds return false and a
// zero Transform. Otherwise a degenerate axis does not constrain the scale;
// with no constraining axis the scale is 1 (clamped) and the single point,
// or the origin for empty bounds, is centered. The result is always finite.
func FitTransform(bounds geom.Rect, size r2.Vec, opts FitOptions) (Transform, bool) {
	if opts.SkipDegenerate && bounds.Degenerate() {
		return Transform{}, false
	}
	if opts.Fraction <= 0 || opts.Fraction > 1 {
		opts.Fraction = 1
	}

	availW := size.X*opts.Fraction - 2*opts.Margin
	availH := size.Y*opts.Fraction - 2*opts.Margin
	if availW <= 0 {
		availW = size.X * opts.Fraction
	}
	if availH <= 0 {
		availH = size.Y * opts.Fraction
	}

	k := math.Inf(1)
	if w := bounds.Width(); !bounds.Empty() && w > 0 && availW > 0 {
		k = availW / w
	}
	if h := bounds.Height(); !bounds.Empty() && h > 0 && availH > 0 {
		k = math.Min(k, availH/h)
	}
	if math.IsInf(k, 1) {
		k = 1
	}
	k = clamp(k, opts.MinScale, opts.MaxScale)

	var c r2.Vec
	if !bounds.Empty() {
		c = bounds.Center()
	}
	t := Transform{X: size.X/2 - c.X*k, Y: size.Y/2 - c.Y*k, K: k}
	if !t.Finite() {
		return Identity, true
	}
	return t, true
}

func clamp(k, lo, hi float64) float64 {
	if lo > 0 && k < lo {
		k = lo
	}
	if hi > 0 && k > hi {
		k = hi
	}
	return k
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
