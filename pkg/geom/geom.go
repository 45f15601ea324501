// Package geom provides the small amount of planar geometry shared by the
// layout engines and the viewport: axis-aligned rectangles over
// [r2.Vec] points.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rect is an axis-aligned rectangle. The zero Rect is empty.
type Rect struct {
	Min, Max r2.Vec
	// set distinguishes a degenerate rectangle at the origin from no
	// rectangle at all.
	set bool
}

// RectOf returns the rectangle spanned by two corners in any order.
func RectOf(a, b r2.Vec) Rect {
	return Rect{
		Min: r2.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: r2.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
		set: true,
	}
}

// BoundsOf returns the smallest rectangle containing every point.
// Non-finite points are ignored; with no usable points the result is empty.
func BoundsOf(points ...r2.Vec) Rect {
	var r Rect
	for _, p := range points {
		r = r.Extend(p)
	}
	return r
}

// Extend returns r grown to contain p.
func (r Rect) Extend(p r2.Vec) Rect {
	if !finite(p.X) || !finite(p.Y) {
		return r
	}
	if !r.set {
		return Rect{Min: p, Max: p, set: true}
	}
	r.Min.X = math.Min(r.Min.X, p.X)
	r.Min.Y = math.Min(r.Min.Y, p.Y)
	r.Max.X = math.Max(r.Max.X, p.X)
	r.Max.Y = math.Max(r.Max.Y, p.Y)
	return r
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	if o.Empty() {
		return r
	}
	return r.Extend(o.Min).Extend(o.Max)
}

// Inset returns r grown by d on every side (shrunk when d < 0).
func (r Rect) Inset(d float64) Rect {
	if r.Empty() {
		return r
	}
	return RectOf(r2.Sub(r.Min, r2.Vec{X: d, Y: d}), r2.Add(r.Max, r2.Vec{X: d, Y: d}))
}

// Empty reports whether r contains no points at all.
func (r Rect) Empty() bool { return !r.set }

// Degenerate reports whether r is empty or has zero width or height.
func (r Rect) Degenerate() bool {
	return r.Empty() || r.Width() <= 0 || r.Height() <= 0
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Size returns the extent of r as a vector.
func (r Rect) Size() r2.Vec { return r2.Sub(r.Max, r.Min) }

// Center returns the midpoint of r.
func (r Rect) Center() r2.Vec { return r2.Scale(0.5, r2.Add(r.Min, r.Max)) }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p r2.Vec) bool {
	return r.set && p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
