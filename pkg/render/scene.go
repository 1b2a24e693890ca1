// Package render draws an arranged forest, its links and the minimap.
// Renderers only read geometry; they never run layout.
package render

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/flexview/pkg/arrange"
	"github.com/vanderheijden86/flexview/pkg/minimap"
	"github.com/vanderheijden86/flexview/pkg/model"
	"github.com/vanderheijden86/flexview/pkg/viewport"
)

// Theme holds the colors used by both renderers, as hex strings.
type Theme struct {
	Background string
	NodeFill   string
	NodeStroke string
	DetailFill string
	Text       string
	Link       string
	Minimap    string
	Brush      string
	FontSize   float64
}

// DefaultTheme is a light theme.
func DefaultTheme() Theme {
	return Theme{
		Background: "#ffffff",
		NodeFill:   "#f4f6fb",
		NodeStroke: "#5b6b8c",
		DetailFill: "#fff8e6",
		Text:       "#1f2430",
		Link:       "#9aa5bd",
		Minimap:    "#eef1f7",
		Brush:      "#3d7be0",
		FontSize:   14,
	}
}

// MinimapView is the minimap state a renderer needs.
type MinimapView struct {
	Size      model.Size
	Ratio     r2.Vec // World to minimap factor per axis
	Selection r2.Box
}

// NewMinimapView snapshots a sync's minimap.
func NewMinimapView(s *minimap.Sync) *MinimapView {
	return &MinimapView{
		Size:      s.Size(),
		Ratio:     s.Ratio(),
		Selection: s.Brush().Selection(),
	}
}

// Scene is everything needed to draw one frame.
type Scene struct {
	Arrangement arrange.Arrangement
	Transform   viewport.Transform
	Viewport    model.Size
	Minimap     *MinimapView // Optional
	Theme       Theme
}

// canvas returns the output size: the viewport, or the whole world when no
// viewport is set.
func (s Scene) canvas() model.Size {
	if !s.Viewport.IsZero() {
		return s.Viewport
	}
	return s.Arrangement.World
}

func (s Scene) theme() Theme {
	if s.Theme == (Theme{}) {
		return DefaultTheme()
	}
	return s.Theme
}

// minimapOrigin is where the minimap's top-left corner sits on the canvas.
func (s Scene) minimapOrigin() r2.Vec {
	c := s.canvas()
	const inset = 10
	return r2.Vec{X: c.Width - s.Minimap.Size.Width - inset, Y: c.Height - s.Minimap.Size.Height - inset}
}

// ExpandHandle returns the clickable expand marker area of a node box: a
// square in its top-right corner.
func ExpandHandle(node r2.Box) r2.Box {
	const size = 32
	return r2.Box{
		Min: r2.Vec{X: node.Max.X - size, Y: node.Min.Y},
		Max: r2.Vec{X: node.Max.X, Y: node.Min.Y + size},
	}
}

func center(b r2.Box) r2.Vec {
	return r2.Scale(0.5, r2.Add(b.Min, b.Max))
}

// affordance is the expand marker drawn on collapsible nodes.
func affordance(n *model.TreeNode) string {
	switch {
	case !n.Collapsible:
		return ""
	case n.Collapsed:
		return "+"
	default:
		return "−"
	}
}

// DetailLines renders a node's fields as sorted "key: value" lines.
func DetailLines(n *model.TreeNode) []string {
	if !n.DetailVisible || len(n.Fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s: %v", k, n.Fields[k])
	}
	return lines
}
