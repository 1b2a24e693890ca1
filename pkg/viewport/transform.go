// Package viewport owns the pan/zoom transform applied to the rendered
// diagram and the gesture state machines that change it.
package viewport

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/flexview/pkg/model"
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

// Apply maps a world point to the screen.
func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back into world space.
func (t Transform) Invert(p r2.Vec) r2.Vec {
	return r2.Vec{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// Translate moves the transform by a world-space delta.
func (t Transform) Translate(dx, dy float64) Transform {
	if dx == 0 && dy == 0 {
		return t
	}
	return Transform{X: t.X + t.K*dx, Y: t.Y + t.K*dy, K: t.K}
}

// Visible returns the world-space rectangle shown in a viewport.
func (t Transform) Visible(viewport model.Size) r2.Box {
	return r2.Box{
		Min: t.Invert(r2.Vec{}),
		Max: t.Invert(r2.Vec{X: viewport.Width, Y: viewport.Height}),
	}
}

// String renders the transform as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

// ScaleExtent bounds the zoom factor.
type ScaleExtent struct {
	Min float64 `json:"min" yaml:"min" toml:"min"`
	Max float64 `json:"max" yaml:"max" toml:"max"`
}

// DefaultScaleExtent matches the legacy viewer.
func DefaultScaleExtent() ScaleExtent {
	return ScaleExtent{Min: 0.5, Max: 2}
}

// Clamp limits k to the extent.
func (e ScaleExtent) Clamp(k float64) float64 {
	if math.IsNaN(k) {
		return e.Min
	}
	return math.Max(e.Min, math.Min(e.Max, k))
}

// constrain shifts t so the viewport stays inside [0, world], centering the
// world on any axis where it is smaller than the visible region.
func constrain(t Transform, viewport, world model.Size) Transform {
	dx0 := t.Invert(r2.Vec{}).X
	dx1 := (viewport.Width-t.X)/t.K - world.Width
	dy0 := t.Invert(r2.Vec{}).Y
	dy1 := (viewport.Height-t.Y)/t.K - world.Height
	return t.Translate(axisShift(dx0, dx1), axisShift(dy0, dy1))
}

func axisShift(d0, d1 float64) float64 {
	if d1 > d0 {
		return (d0 + d1) / 2
	}
	if d0 < 0 {
		return d0
	}
	return math.Max(0, d1)
}
