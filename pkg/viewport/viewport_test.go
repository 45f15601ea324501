package viewport

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/orgtower/pkg/geom"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTransformApplyInvert(t *testing.T) {
	tr := Transform{X: 10, Y: -5, K: 2}
	p := r2.Vec{X: 3, Y: 4}
	s := tr.Apply(p)
	if s != (r2.Vec{X: 16, Y: 3}) {
		t.Errorf("Apply() = %v", s)
	}
	if back := tr.Invert(s); !near(back.X, p.X) || !near(back.Y, p.Y) {
		t.Errorf("Invert(Apply(p)) = %v, want %v", back, p)
	}
	if got := (Transform{}).Invert(r2.Vec{X: 1, Y: 1}); got != (r2.Vec{X: 1, Y: 1}) {
		t.Errorf("zero transform Invert() = %v", got)
	}
}

func TestFitTransform(t *testing.T) {
	size := r2.Vec{X: 960, Y: 640}
	tests := []struct {
		name   string
		bounds geom.Rect
		opts   FitOptions
		ok     bool
		k      float64
	}{
		{"box", geom.RectOf(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 480, Y: 100}), FitOptions{}, true, 2},
		{"fraction", geom.RectOf(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 480, Y: 100}), FitOptions{Fraction: 0.5}, true, 1},
		{"margin", geom.RectOf(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 880, Y: 10}), FitOptions{Margin: 40}, true, 1},
		{"max scale", geom.RectOf(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 10, Y: 10}), FitOptions{MaxScale: 1}, true, 1},
		{"single point", geom.BoundsOf(r2.Vec{X: 50, Y: 70}), FitOptions{}, true, 1},
		{"empty", geom.Rect{}, FitOptions{}, true, 1},
		{"skip single point", geom.BoundsOf(r2.Vec{X: 50, Y: 70}), FitOptions{SkipDegenerate: true}, false, 0},
		{"skip empty", geom.Rect{}, FitOptions{SkipDegenerate: true}, false, 0},
		{"zero viewport", geom.RectOf(r2.Vec{}, r2.Vec{X: 1, Y: 1}), FitOptions{}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := size
			if tt.name == "zero viewport" {
				s = r2.Vec{}
			}
			tr, ok := FitTransform(tt.bounds, s, tt.opts)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if !tr.Finite() {
				t.Fatalf("transform %+v is not finite", tr)
			}
			if tt.name != "zero viewport" && !near(tr.K, tt.k) {
				t.Errorf("K = %v, want %v", tr.K, tt.k)
			}
		})
	}
}

func TestFitTransformCentersSinglePoint(t *testing.T) {
	p := r2.Vec{X: 50, Y: 70}
	tr, _ := FitTransform(geom.BoundsOf(p), r2.Vec{X: 960, Y: 640}, FitOptions{})
	if got := tr.Apply(p); !near(got.X, 480) || !near(got.Y, 320) {
		t.Errorf("single point maps to %v, want viewport center", got)
	}
}

func TestControllerZoom(t *testing.T) {
	c := New(100, 100, Config{})
	c.ZoomIn()
	if !near(c.Transform().K, 1.2) {
		t.Errorf("ZoomIn() K = %v, want 1.2", c.Transform().K)
	}
	center := r2.Vec{X: 50, Y: 50}
	if got := c.Transform().Invert(center); !near(got.X, 50) || !near(got.Y, 50) {
		t.Errorf("zoom should keep the center fixed, got %v", got)
	}
	c.ZoomOut()
	if !near(c.Transform().K, 1) {
		t.Errorf("ZoomOut() K = %v, want 1", c.Transform().K)
	}

	for range 50 {
		c.ZoomIn()
	}
	if !near(c.Transform().K, DefaultMaxScale) {
		t.Errorf("K after many ZoomIn = %v, want %v", c.Transform().K, DefaultMaxScale)
	}
	for range 100 {
		c.ZoomOut()
	}
	if !near(c.Transform().K, DefaultMinScale) {
		t.Errorf("K after many ZoomOut = %v, want %v", c.Transform().K, DefaultMinScale)
	}
	c.Reset()
	if c.Transform() != Identity {
		t.Errorf("Reset() = %+v", c.Transform())
	}
}

func TestControllerWheelAndPan(t *testing.T) {
	c := New(200, 100, Config{})
	at := r2.Vec{X: 20, Y: 30}
	before := c.Transform().Invert(at)
	c.Wheel(-500, at)
	if !near(c.Transform().K, 2) {
		t.Errorf("Wheel(-500) K = %v, want 2", c.Transform().K)
	}
	if after := c.Transform().Invert(at); !near(after.X, before.X) || !near(after.Y, before.Y) {
		t.Errorf("wheel should keep the pointer fixed: %v -> %v", before, after)
	}

	c.Pan(5, -7)
	tr := c.Transform()
	c.Pan(math.NaN(), 1)
	if c.Transform() != tr {
		t.Error("non-finite pan should be ignored")
	}
}

func TestControllerFit(t *testing.T) {
	c := New(960, 640, Config{})
	c.Pan(10, 10)
	before := c.Transform()
	if c.Fit(geom.BoundsOf(r2.Vec{X: 1, Y: 1}), FitOptions{Fraction: 0.8, SkipDegenerate: true}) {
		t.Error("Fit() on a point with SkipDegenerate should report false")
	}
	if c.Transform() != before {
		t.Error("skipped fit must not change the transform")
	}

	huge := geom.RectOf(r2.Vec{}, r2.Vec{X: 96000, Y: 64000})
	if !c.Fit(huge, FitOptions{}) {
		t.Fatal("Fit() = false")
	}
	if k := c.Transform().K; !near(k, 0.01) {
		t.Errorf("fit K = %v, want 0.01 (no lower clamp)", k)
	}
	c.ZoomOut()
	if k := c.Transform().K; !near(k, 0.01) {
		t.Errorf("ZoomOut below range K = %v, want unchanged", k)
	}
	c.ZoomIn()
	if k := c.Transform().K; !near(k, 0.012) {
		t.Errorf("ZoomIn K = %v, want 0.012", k)
	}
}

func TestControllerSetRejectsNonFinite(t *testing.T) {
	c := New(10, 10, Config{})
	c.Set(Transform{X: math.Inf(1), K: 1})
	if c.Transform() != Identity {
		t.Error("Set() should ignore non-finite transforms")
	}
	c.Set(Transform{K: 100})
	if c.Transform().K != DefaultMaxScale {
		t.Errorf("Set() K = %v, want clamp to %v", c.Transform().K, DefaultMaxScale)
	}
}
