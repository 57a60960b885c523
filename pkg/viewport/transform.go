package viewport

import (
	"math"

	"github.com/vanderheijden86/bubblecap/pkg/layout"
)

const (
	// MinScale and MaxScale bound the zoom factor.
	MinScale = 0.5
	MaxScale = 20.0
)

// Transform maps hierarchy space to screen space: screen = world*K + (X, Y).
type Transform struct {
	X float64
	Y float64
	K float64
}

// Identity is the transform with no translation and unit scale.
var Identity = Transform{K: 1}

// Apply converts a hierarchy point into screen space.
func (t Transform) Apply(p layout.Point) layout.Point {
	return layout.Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert converts a screen point into hierarchy space.
func (t Transform) Invert(p layout.Point) layout.Point {
	return layout.Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// ScaleRadius converts a hierarchy-space length into screen units.
func (t Transform) ScaleRadius(r float64) float64 {
	return r * t.K
}

// ClampScale limits k to [MinScale, MaxScale].
func ClampScale(k float64) float64 {
	if math.IsNaN(k) {
		return 1
	}
	return math.Max(MinScale, math.Min(MaxScale, k))
}

// Framing returns the transform that centres a circle of radius r at c and
// fits its diameter to the shorter viewport side. The scale is clamped.
func Framing(size layout.Size, c layout.Point, r float64) Transform {
	k := MaxScale
	if r > 0 {
		k = size.Min() / (2 * r)
	}
	k = ClampScale(k)
	mid := size.Center()
	return Transform{X: mid.X - c.X*k, Y: mid.Y - c.Y*k, K: k}
}

// anchored returns t rescaled to k while keeping the hierarchy point under
// the screen point at fixed.
func anchored(t Transform, k float64, at layout.Point) Transform {
	w := t.Invert(at)
	return Transform{X: at.X - w.X*k, Y: at.Y - w.Y*k, K: k}
}
