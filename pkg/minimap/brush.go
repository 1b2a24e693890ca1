// Package minimap keeps a scaled-down overview of the world and its brush
// rectangle consistent with the main view's pan/zoom transform.
package minimap

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/flexview/pkg/model"
	"github.com/vanderheijden86/flexview/pkg/viewport"
)

// Brush is the selection rectangle drawn on the minimap, in minimap
// coordinates.
type Brush struct {
	bounds    model.Size
	selection r2.Box
	dragging  bool
	last      r2.Vec

	onMove func(sel r2.Box, source viewport.Origin)
}

// NewBrush creates a brush covering the whole minimap.
func NewBrush(bounds model.Size) *Brush {
	return &Brush{
		bounds:    bounds,
		selection: r2.Box{Max: r2.Vec{X: bounds.Width, Y: bounds.Height}},
	}
}

// Selection returns the current brush rectangle.
func (b *Brush) Selection() r2.Box { return b.selection }

// Bounds returns the minimap size.
func (b *Brush) Bounds() model.Size { return b.bounds }

// Dragging reports whether a brush gesture is in progress.
func (b *Brush) Dragging() bool { return b.dragging }

// SetBounds resizes the minimap. The selection is left for the next sync to
// recompute.
func (b *Brush) SetBounds(bounds model.Size) { b.bounds = bounds }

func (b *Brush) onChange(fn func(r2.Box, viewport.Origin)) { b.onMove = fn }

// PointerDown starts dragging when p falls on the selection.
func (b *Brush) PointerDown(p r2.Vec) bool {
	if b.dragging || !inside(b.selection, p) {
		return false
	}
	b.dragging = true
	b.last = p
	return true
}

// PointerMove drags the selection, keeping it inside the minimap where it
// fits.
func (b *Brush) PointerMove(p r2.Vec) {
	if !b.dragging {
		return
	}
	d := r2.Sub(p, b.last)
	b.last = p
	sel := b.selection
	sel.Min = r2.Add(sel.Min, d)
	sel.Max = r2.Add(sel.Max, d)
	b.Move(b.clamp(sel), viewport.OriginUser)
}

// PointerUp ends the drag.
func (b *Brush) PointerUp() {
	b.dragging = false
}

// Move replaces the selection and reports the change tagged with source.
func (b *Brush) Move(sel r2.Box, source viewport.Origin) {
	if sel == b.selection {
		return
	}
	b.selection = sel
	if b.onMove != nil {
		b.onMove(sel, source)
	}
}

// set replaces the selection without reporting it.
func (b *Brush) set(sel r2.Box) { b.selection = sel }

func (b *Brush) clamp(sel r2.Box) r2.Box {
	w := sel.Max.X - sel.Min.X
	h := sel.Max.Y - sel.Min.Y
	if w <= b.bounds.Width {
		sel.Min.X = max(0, min(b.bounds.Width-w, sel.Min.X))
	}
	if h <= b.bounds.Height {
		sel.Min.Y = max(0, min(b.bounds.Height-h, sel.Min.Y))
	}
	sel.Max = r2.Vec{X: sel.Min.X + w, Y: sel.Min.Y + h}
	return sel
}

func inside(b r2.Box, p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}
