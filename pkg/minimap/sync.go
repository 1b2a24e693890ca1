package minimap

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/flexview/pkg/model"
	"github.com/vanderheijden86/flexview/pkg/viewport"
)

// DefaultScale is the minimap size relative to the viewport.
const DefaultScale = 0.2

// Event is a change reported by either side of the sync.
type Event interface {
	origin() viewport.Origin
}

// ZoomEvent reports a new main-view transform.
type ZoomEvent struct {
	Source    viewport.Origin
	Transform viewport.Transform
}

// BrushEvent reports a new brush selection in minimap coordinates.
type BrushEvent struct {
	Source    viewport.Origin
	Selection r2.Box
}

func (e ZoomEvent) origin() viewport.Origin  { return e.Source }
func (e BrushEvent) origin() viewport.Origin { return e.Source }

// Sync routes zoom and brush events between a viewport controller and a
// brush. A zoom change caused by the brush never moves the brush, and a
// brush move caused by a zoom never moves the view.
type Sync struct {
	ctrl  *viewport.Controller
	brush *Brush
	scale float64

	depth    int
	maxDepth int
}

// New wires a controller to a fresh brush sized viewport·scale.
func New(ctrl *viewport.Controller, scale float64) *Sync {
	if scale <= 0 {
		scale = DefaultScale
	}
	s := &Sync{ctrl: ctrl, scale: scale}
	s.brush = NewBrush(s.Size())
	s.brush.onChange(func(sel r2.Box, source viewport.Origin) {
		s.Dispatch(BrushEvent{Source: source, Selection: sel})
	})
	ctrl.OnChange(func(t viewport.Transform, origin viewport.Origin) {
		s.Dispatch(ZoomEvent{Source: origin, Transform: t})
	})
	s.Refresh()
	return s
}

// Brush returns the minimap brush.
func (s *Sync) Brush() *Brush { return s.brush }

// Scale returns the minimap scale relative to the viewport.
func (s *Sync) Scale() float64 { return s.scale }

// Size returns the minimap size.
func (s *Sync) Size() model.Size {
	v := s.ctrl.Viewport()
	return model.Size{Width: v.Width * s.scale, Height: v.Height * s.scale}
}

// Ratio returns the per-axis factor mapping world to minimap coordinates.
func (s *Sync) Ratio() r2.Vec {
	world := s.ctrl.World()
	size := s.Size()
	r := r2.Vec{X: 1, Y: 1}
	if world.Width > 0 {
		r.X = size.Width / world.Width
	}
	if world.Height > 0 {
		r.Y = size.Height / world.Height
	}
	return r
}

// Depth returns the deepest dispatch nesting observed so far.
func (s *Sync) Depth() int { return s.maxDepth }

// Refresh recomputes the brush after the viewport or world changed.
func (s *Sync) Refresh() {
	s.brush.SetBounds(s.Size())
	s.Dispatch(ZoomEvent{Source: viewport.OriginUser, Transform: s.ctrl.Transform()})
}

// Dispatch handles one event.
func (s *Sync) Dispatch(e Event) {
	s.depth++
	s.maxDepth = max(s.maxDepth, s.depth)
	defer func() { s.depth-- }()

	switch e := e.(type) {
	case ZoomEvent:
		if e.Source == viewport.OriginBrush {
			return
		}
		s.brush.Move(s.selectionFor(e.Transform), viewport.OriginZoom)
	case BrushEvent:
		if e.Source == viewport.OriginZoom {
			return
		}
		s.ctrl.SetTransform(s.transformFor(e.Selection), viewport.OriginBrush)
		// The constrained view may not follow the brush, e.g. when the
		// selection is larger than the minimap. The brush follows the view.
		if implied := s.selectionFor(s.ctrl.Transform()); !nearBox(implied, s.brush.Selection()) {
			s.brush.set(implied)
		}
	}
}

// PointerDown starts a brush drag on the minimap, entering the controller's
// brushing state.
func (s *Sync) PointerDown(p r2.Vec) bool {
	if !s.ctrl.BeginBrush() {
		return false
	}
	if !s.brush.PointerDown(p) {
		s.ctrl.EndBrush()
		return false
	}
	return true
}

// PointerMove drags the brush.
func (s *Sync) PointerMove(p r2.Vec) { s.brush.PointerMove(p) }

// PointerUp ends the brush drag.
func (s *Sync) PointerUp() {
	if !s.brush.Dragging() {
		return
	}
	s.brush.PointerUp()
	s.ctrl.EndBrush()
}

func (s *Sync) selectionFor(t viewport.Transform) r2.Box {
	vis := t.Visible(s.ctrl.Viewport())
	r := s.Ratio()
	return r2.Box{
		Min: r2.Vec{X: vis.Min.X * r.X, Y: vis.Min.Y * r.Y},
		Max: r2.Vec{X: vis.Max.X * r.X, Y: vis.Max.Y * r.Y},
	}
}

func (s *Sync) transformFor(sel r2.Box) viewport.Transform {
	k := s.ctrl.Transform().K
	r := s.Ratio()
	return viewport.Transform{X: -k * sel.Min.X / r.X, Y: -k * sel.Min.Y / r.Y, K: k}
}

const selectionTolerance = 1e-9

func nearBox(a, b r2.Box) bool {
	return math.Abs(a.Min.X-b.Min.X) <= selectionTolerance &&
		math.Abs(a.Min.Y-b.Min.Y) <= selectionTolerance &&
		math.Abs(a.Max.X-b.Max.X) <= selectionTolerance &&
		math.Abs(a.Max.Y-b.Max.Y) <= selectionTolerance
}
