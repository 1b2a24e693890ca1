package viewport

import "math"

// WindowAction is the gesture a WindowController is performing.
type WindowAction int

const (
	None WindowAction = iota
	SelectWindow
	MoveWindowLeft
	MoveWindowRight
	MoveWindow
)

func (a WindowAction) String() string {
	switch a {
	case SelectWindow:
		return "select"
	case MoveWindowLeft:
		return "move-left"
	case MoveWindowRight:
		return "move-right"
	case MoveWindow:
		return "move"
	default:
		return "none"
	}
}

// Window is a selected range [Start, End] on an overview axis.
type Window struct {
	Start float64
	End   float64
}

// Width returns End - Start.
func (w Window) Width() float64 {
	return w.End - w.Start
}

// WindowController drives the timeline overview: a one-dimensional axis
// [0, Span] with a selectable window whose edges can be dragged.
//
// Any gesture is abandoned, restoring the window it started from, when the
// pointer leaves the overview, so a committed window is never zero-width or
// inverted.
type WindowController struct {
	span     float64
	minWidth float64
	handle   float64 // Hit tolerance around each edge

	window Window
	origin Window // Window when the gesture started
	action WindowAction
	anchor float64

	onChange func(Window)
}

// NewWindowController creates a controller over [0, span] with the whole
// span selected.
func NewWindowController(span, minWidth, handle float64) *WindowController {
	span = math.Max(span, 0)
	minWidth = math.Min(math.Max(minWidth, 0), span)
	return &WindowController{
		span:     span,
		minWidth: minWidth,
		handle:   handle,
		window:   Window{Start: 0, End: span},
	}
}

// OnChange registers the callback fired when a gesture commits.
func (w *WindowController) OnChange(fn func(Window)) {
	w.onChange = fn
}

// Window returns the current (possibly in-progress) window.
func (w *WindowController) Window() Window { return w.window }

// Action returns the gesture in progress.
func (w *WindowController) Action() WindowAction { return w.action }

// SetWindow replaces the committed window; invalid windows are ignored.
func (w *WindowController) SetWindow(win Window) bool {
	if w.action != None || !w.valid(win) {
		return false
	}
	w.window = win
	return true
}

func (w *WindowController) valid(win Window) bool {
	return win.Start >= 0 && win.End <= w.span && win.Width() >= w.minWidth && win.Width() > 0
}

// PointerDown picks the action from where x falls: on an edge handle, inside
// the window, or elsewhere on the axis (start a new selection).
func (w *WindowController) PointerDown(x float64) WindowAction {
	if w.action != None || x < 0 || x > w.span {
		return None
	}
	w.origin = w.window
	w.anchor = x
	// Handles may overlap on a narrow window; the nearer edge wins.
	dl, dr := math.Abs(x-w.window.Start), math.Abs(x-w.window.End)
	switch {
	case dl <= w.handle && dl <= dr:
		w.action = MoveWindowLeft
	case dr <= w.handle:
		w.action = MoveWindowRight
	case x > w.window.Start && x < w.window.End:
		w.action = MoveWindow
	default:
		w.action = SelectWindow
		w.window = Window{Start: x, End: x}
	}
	return w.action
}

// PointerMove updates the in-progress window.
func (w *WindowController) PointerMove(x float64) {
	x = math.Max(0, math.Min(w.span, x))
	switch w.action {
	case SelectWindow:
		w.window = Window{Start: math.Min(w.anchor, x), End: math.Max(w.anchor, x)}
	case MoveWindowLeft:
		w.window.Start = math.Min(x, w.window.End-w.minWidth)
		w.window.Start = math.Max(0, w.window.Start)
	case MoveWindowRight:
		w.window.End = math.Max(x, w.window.Start+w.minWidth)
		w.window.End = math.Min(w.span, w.window.End)
	case MoveWindow:
		width := w.origin.Width()
		start := w.origin.Start + (x - w.anchor)
		start = math.Max(0, math.Min(w.span-width, start))
		w.window = Window{Start: start, End: start + width}
	}
}

// PointerUp commits the gesture, or reverts it when the result would be
// narrower than the minimum width.
func (w *WindowController) PointerUp() {
	if w.action == None {
		return
	}
	w.action = None
	if !w.valid(w.window) {
		w.window = w.origin
		return
	}
	if w.window != w.origin && w.onChange != nil {
		w.onChange(w.window)
	}
}

// PointerLeave abandons the gesture.
func (w *WindowController) PointerLeave() {
	if w.action == None {
		return
	}
	w.action = None
	w.window = w.origin
}
