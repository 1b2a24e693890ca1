package viewport

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/flexview/pkg/model"
)

// State is the gesture state of a Controller.
type State int

const (
	Idle State = iota
	Panning
	Zooming
	Brushing
)

func (s State) String() string {
	switch s {
	case Panning:
		return "panning"
	case Zooming:
		return "zooming"
	case Brushing:
		return "brushing"
	default:
		return "idle"
	}
}

// Origin tags who caused a transform change.
type Origin int

const (
	OriginUser  Origin = iota // Pointer or wheel gesture on the main view, or a host call
	OriginZoom                // Derived from a zoom change
	OriginBrush               // Derived from a minimap brush change
)

func (o Origin) String() string {
	switch o {
	case OriginZoom:
		return "zoom"
	case OriginBrush:
		return "brush"
	default:
		return "user"
	}
}

// Listener receives every transform change with its origin.
type Listener func(t Transform, origin Origin)

const (
	wheelFactor = 0.002

	// DefaultDuration is the transition length hosts use to animate a
	// transform change; SlowDuration is used while the slow modifier is held.
	DefaultDuration = 250 * time.Millisecond
	SlowDuration    = 2500 * time.Millisecond
)

// Controller is the pan/zoom state machine of the main view.
//
// All methods run synchronously on the caller's goroutine; a Controller is
// not safe for concurrent use.
type Controller struct {
	viewport model.Size
	world    model.Size
	extent   ScaleExtent

	transform Transform
	committed Transform
	state     State
	last      r2.Vec
	slow      bool

	listeners []Listener
}

// NewController creates a controller at the identity transform (clamped
// into the extent).
func NewController(viewport, world model.Size, extent ScaleExtent) *Controller {
	c := &Controller{
		viewport: viewport,
		world:    world.Max(viewport),
		extent:   extent,
	}
	c.transform = c.normalize(Identity)
	c.committed = c.transform
	return c
}

// OnChange registers a listener for transform changes.
func (c *Controller) OnChange(fn Listener) {
	c.listeners = append(c.listeners, fn)
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.transform }

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

// Viewport returns the canvas size.
func (c *Controller) Viewport() model.Size { return c.viewport }

// World returns the world bound.
func (c *Controller) World() model.Size { return c.world }

// Extent returns the scale extent.
func (c *Controller) Extent() ScaleExtent { return c.extent }

// SetSlow toggles the slow-animation modifier.
func (c *Controller) SetSlow(slow bool) { c.slow = slow }

// Duration returns how long hosts should animate the next change.
func (c *Controller) Duration() time.Duration {
	if c.slow {
		return SlowDuration
	}
	return DefaultDuration
}

// SetWorld updates the world bound after a relayout. The world is floored
// at the viewport size and the current transform is re-constrained.
func (c *Controller) SetWorld(world model.Size) {
	c.world = world.Max(c.viewport)
	c.apply(c.transform, OriginUser)
	c.committed = c.transform
}

// SetViewport updates the canvas size.
func (c *Controller) SetViewport(viewport model.Size) {
	c.viewport = viewport
	c.world = c.world.Max(viewport)
	c.apply(c.transform, OriginUser)
	c.committed = c.transform
}

// SetTransform replaces the transform, e.g. for an external reset or a
// brush-driven pan. The result is clamped and constrained.
func (c *Controller) SetTransform(t Transform, origin Origin) {
	c.apply(t, origin)
	if c.state == Idle || c.state == Brushing {
		c.committed = c.transform
	}
}

// Reset returns to the identity transform.
func (c *Controller) Reset() {
	c.SetTransform(Identity, OriginUser)
}

// contains reports whether a screen point lies on the canvas.
func (c *Controller) contains(p r2.Vec) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= c.viewport.Width && p.Y <= c.viewport.Height
}

// PointerDown starts panning when p is on the canvas.
func (c *Controller) PointerDown(p r2.Vec) bool {
	if c.state != Idle || !c.contains(p) {
		return false
	}
	c.state = Panning
	c.committed = c.transform
	c.last = p
	return true
}

// PointerMove pans by the pointer delta while a pan is in progress.
func (c *Controller) PointerMove(p r2.Vec) {
	if c.state != Panning {
		return
	}
	d := r2.Sub(p, c.last)
	c.last = p
	next := c.transform
	next.X += d.X
	next.Y += d.Y
	c.apply(next, OriginUser)
}

// PointerUp commits the gesture.
func (c *Controller) PointerUp() {
	if c.state != Panning {
		return
	}
	c.committed = c.transform
	c.state = Idle
}

// PointerLeave abandons an in-progress pan and restores the transform the
// gesture started from.
func (c *Controller) PointerLeave() {
	if c.state != Panning {
		return
	}
	c.state = Idle
	c.apply(c.committed, OriginUser)
}

// Wheel zooms around p. Negative deltaY zooms in.
func (c *Controller) Wheel(p r2.Vec, deltaY float64) {
	c.ZoomBy(math.Pow(2, -deltaY*wheelFactor), p)
}

// ZoomBy multiplies the scale by factor keeping the screen point p fixed.
func (c *Controller) ZoomBy(factor float64, p r2.Vec) {
	if c.state != Idle {
		return
	}
	c.state = Zooming
	c.apply(c.zoomed(c.transform, c.transform.K*factor, p), OriginUser)
	c.committed = c.transform
	c.state = Idle
}

// FitTo scales and centers a world box inside the viewport with padding
// on each side, within the scale extent.
func (c *Controller) FitTo(box r2.Box, padding float64) {
	w := box.Max.X - box.Min.X
	h := box.Max.Y - box.Min.Y
	if w <= 0 || h <= 0 {
		c.Reset()
		return
	}
	k := math.Min((c.viewport.Width-2*padding)/w, (c.viewport.Height-2*padding)/h)
	k = c.extent.Clamp(k)
	center := r2.Scale(0.5, r2.Add(box.Min, box.Max))
	t := Transform{
		X: c.viewport.Width/2 - center.X*k,
		Y: c.viewport.Height/2 - center.Y*k,
		K: k,
	}
	c.SetTransform(t, OriginUser)
}

// zoomed returns t rescaled to k around the screen point p.
func (c *Controller) zoomed(t Transform, k float64, p r2.Vec) Transform {
	k = c.extent.Clamp(k)
	world := t.Invert(p)
	return Transform{X: p.X - world.X*k, Y: p.Y - world.Y*k, K: k}
}

func (c *Controller) normalize(t Transform) Transform {
	t.K = c.extent.Clamp(t.K)
	if c.viewport.IsZero() {
		return t
	}
	return constrain(t, c.viewport, c.world)
}

func (c *Controller) apply(t Transform, origin Origin) {
	next := c.normalize(t)
	if next == c.transform {
		return
	}
	c.transform = next
	for _, fn := range c.listeners {
		fn(next, origin)
	}
}

// BeginBrush marks a minimap brush gesture as in progress.
func (c *Controller) BeginBrush() bool {
	if c.state != Idle {
		return false
	}
	c.state = Brushing
	return true
}

// EndBrush leaves the brushing state.
func (c *Controller) EndBrush() {
	if c.state == Brushing {
		c.committed = c.transform
		c.state = Idle
	}
}
