// Package viewport owns the pan/zoom camera over a packed hierarchy.
//
// The Controller is a single-owner state machine. Gestures apply
// immediately; programmatic moves (ZoomTo, Home) run as timed transitions
// that the host advances by calling Tick on every animation frame. Time is
// read from an injected Clock so transitions can be stepped deterministically.
package viewport

import (
	"math"
	"time"

	"github.com/vanderheijden86/bubblecap/pkg/layout"
)

const (
	// DefaultDuration is the length of a programmatic camera move.
	DefaultDuration = 600 * time.Millisecond
	// DefaultLabelThreshold is the on-screen radius a circle must exceed
	// before its label is drawn.
	DefaultLabelThreshold = 30.0

	wheelFactor = 0.001
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Config configures a Controller. Zero values select the defaults.
type Config struct {
	Clock          Clock
	Duration       time.Duration
	LabelThreshold float64
}

type transition struct {
	start    time.Time
	duration time.Duration
	path     func(float64) Transform
}

// Controller holds the current transform and any in-flight transition.
type Controller struct {
	clock     Clock
	duration  time.Duration
	threshold float64

	size layout.Size
	root layout.Node
	t    Transform

	active     *transition
	generation uint64
	closed     bool

	listeners []func(Transform)
}

// New creates a controller for the given viewport and root circle, framed
// on the root.
func New(size layout.Size, root layout.Node, cfg Config) *Controller {
	c := &Controller{
		clock:     cfg.Clock,
		duration:  cfg.Duration,
		threshold: cfg.LabelThreshold,
		size:      size,
		root:      root,
	}
	if c.clock == nil {
		c.clock = SystemClock{}
	}
	if c.duration <= 0 {
		c.duration = DefaultDuration
	}
	if c.threshold <= 0 {
		c.threshold = DefaultLabelThreshold
	}
	c.t = c.home()
	return c
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.t }

// Size returns the viewport size.
func (c *Controller) Size() layout.Size { return c.size }

// Duration returns the configured transition length.
func (c *Controller) Duration() time.Duration { return c.duration }

// Animating reports whether a transition is in flight.
func (c *Controller) Animating() bool { return c.active != nil }

// Generation changes every time a transition starts or is cancelled. Hosts
// tag their frame timers with it and drop frames from older generations.
func (c *Controller) Generation() uint64 { return c.generation }

// OnChange registers fn to run after every transform change.
func (c *Controller) OnChange(fn func(Transform)) {
	if fn != nil {
		c.listeners = append(c.listeners, fn)
	}
}

func (c *Controller) set(t Transform) {
	c.t = t
	for _, fn := range c.listeners {
		fn(t)
	}
}

func (c *Controller) cancel() {
	if c.active != nil {
		c.active = nil
		c.generation++
	}
}

// Pan translates the view by (dx, dy) screen units.
func (c *Controller) Pan(dx, dy float64) {
	if c.closed {
		return
	}
	c.cancel()
	c.set(Transform{X: c.t.X + dx, Y: c.t.Y + dy, K: c.t.K})
}

// Wheel applies a wheel gesture of deltaY pixels anchored at the screen
// point at. Negative deltas zoom in.
func (c *Controller) Wheel(deltaY float64, at layout.Point) {
	c.ZoomBy(math.Pow(2, -deltaY*wheelFactor), at)
}

// ZoomBy multiplies the scale by factor, keeping the hierarchy point under
// at fixed on screen.
func (c *Controller) ZoomBy(factor float64, at layout.Point) {
	if c.closed || factor <= 0 || math.IsNaN(factor) {
		return
	}
	c.cancel()
	c.set(anchored(c.t, ClampScale(c.t.K*factor), at))
}

// ZoomTo starts a transition that frames the circle (center, r). A
// duration <= 0 jumps immediately. A call made while another transition is
// running starts from the interpolated transform at the current instant.
func (c *Controller) ZoomTo(center layout.Point, r float64, d time.Duration) {
	c.animateTo(Framing(c.size, center, r), d)
}

// Focus frames a leaf with the configured duration.
func (c *Controller) Focus(n layout.Node) {
	c.ZoomTo(n.Center(), n.R, c.duration)
}

// Home animates back to the root framing.
func (c *Controller) Home() {
	c.animateTo(c.home(), c.duration)
}

func (c *Controller) home() Transform {
	if c.root.R <= 0 {
		return Identity
	}
	return Framing(c.size, c.root.Center(), c.root.R)
}

func (c *Controller) animateTo(target Transform, d time.Duration) {
	if c.closed {
		return
	}
	now := c.clock.Now()
	c.advance(now)
	c.cancel()
	if d <= 0 {
		c.set(target)
		return
	}
	c.generation++
	c.active = &transition{
		start:    now,
		duration: d,
		path:     interpolator(c.size, c.t, target),
	}
}

// Tick advances the running transition to the clock's current time and
// reports whether it is still running.
func (c *Controller) Tick() bool {
	if c.closed || c.active == nil {
		return false
	}
	c.advance(c.clock.Now())
	return c.active != nil
}

func (c *Controller) advance(now time.Time) {
	tr := c.active
	if tr == nil {
		return
	}
	frac := float64(now.Sub(tr.start)) / float64(tr.duration)
	if frac >= 1 {
		c.active = nil
		c.set(tr.path(1))
		return
	}
	if frac < 0 {
		frac = 0
	}
	c.set(tr.path(easeCubicOut(frac)))
}

// Resize replaces the viewport and root, cancels any transition and snaps
// to the home framing.
func (c *Controller) Resize(size layout.Size, root layout.Node) {
	if c.closed {
		return
	}
	c.cancel()
	c.size = size
	c.root = root
	c.set(c.home())
}

// Close cancels any transition and detaches listeners. Every later call is
// a no-op.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.cancel()
	c.closed = true
	c.listeners = nil
}

// LabelVisible reports whether a circle of hierarchy radius r is large
// enough on screen to carry a label.
func (c *Controller) LabelVisible(r float64) bool {
	return r*c.t.K > c.threshold
}

// LabelTransform returns the label-local transform
// translate(x,y) scale(1/k) translate(-x,-y), which cancels the camera
// scale so label text keeps a constant on-screen size.
func (c *Controller) LabelTransform(n layout.Node) Transform {
	inv := 1 / c.t.K
	return Transform{X: n.X - n.X*inv, Y: n.Y - n.Y*inv, K: inv}
}

// ToScreen converts a hierarchy point into screen space.
func (c *Controller) ToScreen(p layout.Point) layout.Point { return c.t.Apply(p) }

// ToWorld converts a screen point into hierarchy space.
func (c *Controller) ToWorld(p layout.Point) layout.Point { return c.t.Invert(p) }
