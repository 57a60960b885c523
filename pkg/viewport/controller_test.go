package viewport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/bubblecap/pkg/layout"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

var (
	testSize = layout.Size{Width: 1000, Height: 600}
	testRoot = layout.Node{X: 500, Y: 300, R: 300}
)

func newTestController() (*Controller, *fakeClock) {
	clk := newFakeClock()
	return New(testSize, testRoot, Config{Clock: clk}), clk
}

func assertTransform(t *testing.T, want, got Transform) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "X")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "Y")
	assert.InDelta(t, want.K, got.K, 1e-9, "K")
}

func TestNew_Defaults(t *testing.T) {
	c := New(testSize, testRoot, Config{})
	assert.Equal(t, Framing(testSize, testRoot.Center(), testRoot.R), c.Transform())
	assert.Equal(t, Identity, c.Transform(), "a root filling the short side frames at unit scale")
	assert.Equal(t, DefaultDuration, c.Duration())
	assert.IsType(t, SystemClock{}, c.clock)
	assert.False(t, c.Animating())
}

func TestPan(t *testing.T) {
	c, _ := newTestController()
	c.Pan(10, -5)
	c.Pan(2, 2)
	assertTransform(t, Transform{X: 12, Y: -3, K: 1}, c.Transform())
}

func TestWheel_AnchorsPointer(t *testing.T) {
	c, _ := newTestController()
	at := layout.Point{X: 320, Y: 140}
	before := c.ToWorld(at)

	c.Wheel(-500, at)

	assert.Greater(t, c.Transform().K, 1.0, "negative delta zooms in")
	after := c.ToWorld(at)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestWheel_Curve(t *testing.T) {
	c, _ := newTestController()
	c.Wheel(-1000, testSize.Center())
	assert.InDelta(t, 2.0, c.Transform().K, 1e-12, "1000px of wheel doubles the scale")
}

func TestZoomBy_Clamps(t *testing.T) {
	c, _ := newTestController()
	c.ZoomBy(1000, layout.Point{})
	assert.Equal(t, MaxScale, c.Transform().K)

	c.ZoomBy(1e-6, layout.Point{})
	assert.Equal(t, MinScale, c.Transform().K)

	c.ZoomBy(0, layout.Point{})
	assert.Equal(t, MinScale, c.Transform().K, "non-positive factors are ignored")
}

func TestLabelVisible_Threshold(t *testing.T) {
	c, _ := newTestController()
	mid := testSize.Center()

	c.ZoomBy(0.5, mid)
	assert.False(t, c.LabelVisible(40), "40 * 0.5 = 20 is below the threshold")

	c.ZoomBy(2, mid)
	assert.True(t, c.LabelVisible(40), "40 * 1 = 40 clears the threshold")

	assert.False(t, c.LabelVisible(30), "threshold is strict")
}

func TestLabelVisible_CustomThreshold(t *testing.T) {
	c := New(testSize, testRoot, Config{LabelThreshold: 10})
	assert.True(t, c.LabelVisible(11))
	assert.False(t, c.LabelVisible(10))
}

func TestLabelTransform_ConstantScreenSize(t *testing.T) {
	c, _ := newTestController()
	c.ZoomBy(4, layout.Point{X: 100, Y: 100})
	c.Pan(-30, 12)

	n := layout.Node{X: 250, Y: 180, R: 20}
	lt := c.LabelTransform(n)
	cam := c.Transform()

	// The node centre is a fixed point of the label transform.
	p := lt.Apply(n.Center())
	assert.InDelta(t, n.X, p.X, 1e-9)
	assert.InDelta(t, n.Y, p.Y, 1e-9)

	// Composed scale is exactly one.
	assert.InDelta(t, 1.0, cam.K*lt.K, 1e-12)

	// A glyph offset of 7 units stays 7 screen units away.
	q := cam.Apply(lt.Apply(layout.Point{X: n.X + 7, Y: n.Y}))
	o := cam.Apply(n.Center())
	assert.InDelta(t, 7.0, q.X-o.X, 1e-9)
}

func TestZoomTo_ReachesTargetExactly(t *testing.T) {
	c, clk := newTestController()
	target := layout.Point{X: 420, Y: 250}
	c.ZoomTo(target, 25, DefaultDuration)
	require.True(t, c.Animating())

	want := Framing(testSize, target, 25)
	assert.InDelta(t, 12.0, want.K, 1e-12, "scale = min(w,h) / 2r")

	clk.Advance(300 * time.Millisecond)
	assert.True(t, c.Tick())
	mid := c.Transform()
	assert.Greater(t, mid.K, 1.0)
	assert.Less(t, mid.K, want.K)

	clk.Advance(300 * time.Millisecond)
	assert.False(t, c.Tick(), "transition finishes at its duration")
	assert.Equal(t, want, c.Transform())

	screen := c.ToScreen(target)
	assert.InDelta(t, testSize.Center().X, screen.X, 1e-9)
	assert.InDelta(t, testSize.Center().Y, screen.Y, 1e-9)
}

func TestZoomTo_ClampsScale(t *testing.T) {
	c, _ := newTestController()
	c.ZoomTo(layout.Point{X: 10, Y: 10}, 0.01, 0)
	assert.Equal(t, MaxScale, c.Transform().K)
}

func TestZoomTo_ZeroDurationJumps(t *testing.T) {
	c, _ := newTestController()
	c.ZoomTo(layout.Point{X: 500, Y: 300}, 100, 0)
	assert.False(t, c.Animating())
	assertTransform(t, Framing(testSize, layout.Point{X: 500, Y: 300}, 100), c.Transform())
}

func TestZoomTo_SupersedeStartsFromInterpolatedState(t *testing.T) {
	c, clk := newTestController()
	c.ZoomTo(layout.Point{X: 200, Y: 200}, 20, DefaultDuration)
	gen := c.Generation()

	clk.Advance(200 * time.Millisecond)
	// No Tick here: the superseding call must still pick up the state at
	// the current instant, not the last rendered frame.
	c.ZoomTo(layout.Point{X: 800, Y: 400}, 50, DefaultDuration)
	assert.NotEqual(t, gen, c.Generation())

	probe, _ := newTestController()
	probe.ZoomTo(layout.Point{X: 200, Y: 200}, 20, DefaultDuration)
	probe.clock.(*fakeClock).Advance(200 * time.Millisecond)
	probe.Tick()
	assertTransform(t, probe.Transform(), c.Transform())

	clk.Advance(DefaultDuration)
	assert.False(t, c.Tick())
	assert.Equal(t, Framing(testSize, layout.Point{X: 800, Y: 400}, 50), c.Transform())
}

func TestGestureCancelsTransition(t *testing.T) {
	c, clk := newTestController()
	c.ZoomTo(layout.Point{X: 200, Y: 200}, 20, DefaultDuration)
	gen := c.Generation()

	c.Pan(5, 5)
	assert.False(t, c.Animating())
	assert.NotEqual(t, gen, c.Generation())

	before := c.Transform()
	clk.Advance(time.Second)
	assert.False(t, c.Tick())
	assert.Equal(t, before, c.Transform())
}

func TestClose_TicksAreNoOps(t *testing.T) {
	c, clk := newTestController()
	calls := 0
	c.OnChange(func(Transform) { calls++ })

	c.ZoomTo(layout.Point{X: 200, Y: 200}, 20, DefaultDuration)
	clk.Advance(100 * time.Millisecond)
	c.Tick()
	seen := calls
	before := c.Transform()

	c.Close()
	clk.Advance(time.Second)
	assert.False(t, c.Tick())
	c.Pan(1, 1)
	c.Wheel(-100, layout.Point{})
	c.Resize(layout.Size{Width: 10, Height: 10}, layout.Node{R: 4})
	c.Close()

	assert.Equal(t, before, c.Transform())
	assert.Equal(t, seen, calls)
}

func TestResize_SnapsHome(t *testing.T) {
	c, _ := newTestController()
	c.ZoomBy(3, layout.Point{X: 1, Y: 1})
	c.ZoomTo(layout.Point{X: 1, Y: 1}, 1, DefaultDuration)

	size := layout.Size{Width: 400, Height: 400}
	root := layout.Node{X: 200, Y: 200, R: 199}
	c.Resize(size, root)

	assert.False(t, c.Animating())
	assert.Equal(t, size, c.Size())
	assertTransform(t, Framing(size, root.Center(), root.R), c.Transform())
}

func TestHome_EmptyRootReturnsToIdentity(t *testing.T) {
	clk := newFakeClock()
	c := New(testSize, layout.Node{X: 500, Y: 300}, Config{Clock: clk})
	c.Pan(40, 40)
	c.Home()
	clk.Advance(DefaultDuration)
	c.Tick()
	assert.Equal(t, Identity, c.Transform())
}

func TestOnChange_FiresForEveryChange(t *testing.T) {
	c, clk := newTestController()
	var seen []Transform
	c.OnChange(func(tr Transform) { seen = append(seen, tr) })

	c.Pan(1, 0)
	c.Wheel(-10, layout.Point{})
	c.Home()
	clk.Advance(100 * time.Millisecond)
	c.Tick()
	clk.Advance(time.Second)
	c.Tick()

	require.Len(t, seen, 4)
	assert.Equal(t, c.Transform(), seen[len(seen)-1])
}

func TestEaseCubicOut(t *testing.T) {
	assert.Equal(t, 0.0, easeCubicOut(0))
	assert.Equal(t, 1.0, easeCubicOut(1))
	assert.InDelta(t, 0.875, easeCubicOut(0.5), 1e-12)
}

func TestSmoothZoom_Endpoints(t *testing.T) {
	v0 := view{ux: 10, uy: 20, w: 800}
	v1 := view{ux: 300, uy: -40, w: 50}
	path := smoothZoom(v0, v1)

	start, end := path(0), path(1)
	assert.InDelta(t, v0.ux, start.ux, 1e-9)
	assert.InDelta(t, v0.w, start.w, 1e-9)
	assert.InDelta(t, v1.ux, end.ux, 1e-6)
	assert.InDelta(t, v1.uy, end.uy, 1e-6)
	assert.InDelta(t, v1.w, end.w, 1e-6)

	pure := smoothZoom(view{w: 100}, view{w: 25})
	assert.InDelta(t, 25.0, pure(1).w, 1e-9, "zoom without pan")
}

func TestProperty_ScaleStaysClamped(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := New(testSize, testRoot, Config{Clock: newFakeClock()})
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			at := layout.Point{
				X: rapid.Float64Range(0, testSize.Width).Draw(t, "x"),
				Y: rapid.Float64Range(0, testSize.Height).Draw(t, "y"),
			}
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				c.Wheel(rapid.Float64Range(-5000, 5000).Draw(t, "dy"), at)
			case 1:
				c.ZoomBy(rapid.Float64Range(0.001, 1000).Draw(t, "f"), at)
			case 2:
				c.ZoomTo(at, rapid.Float64Range(0, 1000).Draw(t, "r"), 0)
			default:
				c.Pan(at.X-500, at.Y-300)
			}
			k := c.Transform().K
			if k < MinScale || k > MaxScale {
				t.Fatalf("scale %v escaped [%v, %v]", k, MinScale, MaxScale)
			}
		}
	})
}
