package viewport

import (
	"math"

	"github.com/vanderheijden86/bubblecap/pkg/layout"
)

const (
	rho  = math.Sqrt2
	rho2 = 2.0
	rho4 = 4.0
)

// view is a camera expressed as the hierarchy point at the viewport centre
// and the visible width in hierarchy units.
type view struct {
	ux, uy, w float64
}

// smoothZoom interpolates between two views along the optimal path of van
// Wijk and Nuij ("Smooth and efficient zooming and panning"), the same curve
// d3.interpolateZoom follows.
func smoothZoom(v0, v1 view) func(t float64) view {
	dx, dy := v1.ux-v0.ux, v1.uy-v0.uy
	d2 := dx*dx + dy*dy

	if d2 < 1e-12 {
		s := math.Log(v1.w/v0.w) / rho
		return func(t float64) view {
			return view{
				ux: v0.ux + t*dx,
				uy: v0.uy + t*dy,
				w:  v0.w * math.Exp(rho*t*s),
			}
		}
	}

	d1 := math.Sqrt(d2)
	b0 := (v1.w*v1.w - v0.w*v0.w + rho4*d2) / (2 * v0.w * rho2 * d1)
	b1 := (v1.w*v1.w - v0.w*v0.w - rho4*d2) / (2 * v1.w * rho2 * d1)
	r0 := math.Log(math.Sqrt(b0*b0+1) - b0)
	r1 := math.Log(math.Sqrt(b1*b1+1) - b1)
	s := (r1 - r0) / rho
	coshr0 := math.Cosh(r0)

	return func(t float64) view {
		st := t * s
		u := v0.w / (rho2 * d1) * (coshr0*math.Tanh(rho*st+r0) - math.Sinh(r0))
		return view{
			ux: v0.ux + u*dx,
			uy: v0.uy + u*dy,
			w:  v0.w * coshr0 / math.Cosh(rho*st+r0),
		}
	}
}

// easeCubicOut is 1 - (1-t)^3.
func easeCubicOut(t float64) float64 {
	t--
	return t*t*t + 1
}

// interpolator builds the transform path between two transforms for a
// viewport of the given size, pivoting on the viewport centre.
func interpolator(size layout.Size, from, to Transform) func(t float64) Transform {
	p := size.Center()
	w := math.Max(size.Width, size.Height)
	if w <= 0 || from.K <= 0 || to.K <= 0 {
		return func(float64) Transform { return to }
	}
	a := from.Invert(p)
	b := to.Invert(p)
	path := smoothZoom(view{a.X, a.Y, w / from.K}, view{b.X, b.Y, w / to.K})

	return func(t float64) Transform {
		if t >= 1 {
			return to
		}
		v := path(t)
		k := w / v.w
		return Transform{X: p.X - v.ux*k, Y: p.Y - v.uy*k, K: k}
	}
}
