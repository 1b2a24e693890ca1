// Package layout positions the nodes of one tree whose nodes each request
// their own footprint (flextree-style variable node size).
//
// Every node allots a rectangle of its FlexSize plus margins. Along the
// depth axis a child starts where its parent's rectangle ends, so depth
// positions are not layered. Along the breadth axis sibling subtrees are
// packed in order using their contours, so no two subtrees overlap, and a
// parent is centered over the combined extent of its first and last child.
// Children of collapsed nodes are never visited.
package layout

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/flexview/pkg/model"
)

// Orientation selects which screen axis the tree grows along.
type Orientation int

const (
	Horizontal Orientation = iota // Depth grows along x (default)
	Vertical                      // Depth grows along y
)

// String returns the configuration name of the orientation.
func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseOrientation maps a configuration name to an Orientation.
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "", "horizontal":
		return Horizontal, true
	case "vertical":
		return Vertical, true
	}
	return Horizontal, false
}

// Margin is the spacing added around each node's footprint.
type Margin struct {
	Sibling  float64 `json:"sibling" yaml:"sibling" toml:"sibling"`    // Between neighbours along the breadth axis
	Children float64 `json:"children" yaml:"children" toml:"children"` // Between a parent and its children
}

// DefaultMargin matches the legacy viewer's spacing.
func DefaultMargin() Margin {
	return Margin{Sibling: 40, Children: 60}
}

// Node is a positioned tree node. X/Y is the top-left corner of the
// node's FlexSize box in tree-local coordinates.
type Node struct {
	Node     *model.TreeNode
	X, Y     float64
	Width    float64
	Height   float64
	Depth    int
	Parent   *Node
	Children []*Node

	depthPos float64 // Start of the node's rectangle along the depth axis
	dSize    float64 // Footprint + children margin along the depth axis
	bSize    float64 // Footprint + sibling margin along the breadth axis
	rel      float64 // Breadth center relative to the parent's center
}

// Box returns the node's footprint rectangle.
func (n *Node) Box() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: n.X, Y: n.Y},
		Max: r2.Vec{X: n.X + n.Width, Y: n.Y + n.Height},
	}
}

// Center returns the middle of the node's footprint.
func (n *Node) Center() r2.Vec {
	return r2.Vec{X: n.X + n.Width/2, Y: n.Y + n.Height/2}
}

// ID returns the id of the underlying tree node.
func (n *Node) ID() string {
	return n.Node.ID
}

// Link is a parent to child edge.
type Link struct {
	Source      *Node
	Target      *Node
	Orientation Orientation
}

// Curve returns the start, control and end points of the cubic bezier
// drawn for the link, leaving the parent on its outgoing side and entering
// the child on its incoming side.
func (l Link) Curve() (start, c1, c2, end r2.Vec) {
	s, t := l.Source, l.Target
	if l.Orientation == Vertical {
		start = r2.Vec{X: s.X + s.Width/2, Y: s.Y + s.Height}
		end = r2.Vec{X: t.X + t.Width/2, Y: t.Y}
		mid := (start.Y + end.Y) / 2
		return start, r2.Vec{X: start.X, Y: mid}, r2.Vec{X: end.X, Y: mid}, end
	}
	start = r2.Vec{X: s.X + s.Width, Y: s.Y + s.Height/2}
	end = r2.Vec{X: t.X, Y: t.Y + t.Height/2}
	mid := (start.X + end.X) / 2
	return start, r2.Vec{X: mid, Y: start.Y}, r2.Vec{X: mid, Y: end.Y}, end
}

// Tree is the result of one layout pass.
type Tree struct {
	Root        *Node
	Orientation Orientation

	nodes  []*Node
	links  []Link
	byID   map[string]*Node
	bounds r2.Box
}

// Descendants returns every laid-out node in pre-order.
func (t *Tree) Descendants() []*Node {
	if t == nil {
		return nil
	}
	return t.nodes
}

// Links returns every parent to child edge in pre-order of the child.
func (t *Tree) Links() []Link {
	if t == nil {
		return nil
	}
	return t.links
}

// Bounds returns the box enclosing all node footprints.
func (t *Tree) Bounds() r2.Box {
	if t == nil {
		return r2.Box{}
	}
	return t.bounds
}

// Find returns the laid-out node for a tree node id, if it is visible.
func (t *Tree) Find(id string) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	n, ok := t.byID[id]
	return n, ok
}

// Engine runs layout passes. It holds only configuration and is safe to
// share between goroutines.
type Engine struct {
	margin      Margin
	orientation Orientation
}

// NewEngine creates a layout engine.
func NewEngine(margin Margin, orientation Orientation) *Engine {
	return &Engine{margin: margin, orientation: orientation}
}

// Margin returns the engine's spacing.
func (e *Engine) Margin() Margin {
	return e.margin
}

// Layout positions the visible part of the tree under root. A nil root
// yields an empty tree.
func (e *Engine) Layout(root *model.TreeNode) *Tree {
	t := &Tree{Orientation: e.orientation, byID: make(map[string]*Node)}
	if root == nil {
		return t
	}

	t.Root = e.build(root, nil, 0, 0)
	e.shape(t.Root)
	e.place(t, t.Root, 0)
	return t
}

// build creates the node hierarchy top-down and assigns depth positions.
func (e *Engine) build(tn *model.TreeNode, parent *Node, depth int, depthPos float64) *Node {
	n := &Node{
		Node:     tn,
		Width:    tn.FlexSize.Width,
		Height:   tn.FlexSize.Height,
		Depth:    depth,
		Parent:   parent,
		depthPos: depthPos,
	}
	if e.orientation == Vertical {
		n.dSize = n.Height + e.margin.Children
		n.bSize = n.Width + e.margin.Sibling
	} else {
		n.dSize = n.Width + e.margin.Children
		n.bSize = n.Height + e.margin.Sibling
	}

	for _, c := range tn.VisibleChildren() {
		n.Children = append(n.Children, e.build(c, n, depth+1, depthPos+n.dSize))
	}
	return n
}

// shape places each node's children relative to it and returns the
// subtree contour relative to the node's breadth center.
func (e *Engine) shape(n *Node) contour {
	own := contour{{top: n.depthPos, bottom: n.depthPos + n.dSize, lo: -n.bSize / 2, hi: n.bSize / 2}}
	if len(n.Children) == 0 {
		return own
	}

	positions := make([]float64, len(n.Children))
	var acc contour
	for i, c := range n.Children {
		cc := e.shape(c)
		if i == 0 {
			acc = cc
			continue
		}
		positions[i] = separation(acc, cc)
		acc = merge(acc, cc.shifted(positions[i]))
	}

	first, last := n.Children[0], n.Children[len(n.Children)-1]
	center := (positions[0] - first.bSize/2 + positions[len(positions)-1] + last.bSize/2) / 2
	for i, c := range n.Children {
		c.rel = positions[i] - center
	}
	return merge(own, acc.shifted(-center))
}

// place assigns absolute coordinates in pre-order and collects output.
func (e *Engine) place(t *Tree, n *Node, breadth float64) {
	if e.orientation == Vertical {
		n.X = breadth - n.Width/2
		n.Y = n.depthPos
	} else {
		n.X = n.depthPos
		n.Y = breadth - n.Height/2
	}

	box := n.Box()
	if len(t.nodes) == 0 {
		t.bounds = box
	} else {
		t.bounds = union(t.bounds, box)
	}
	t.nodes = append(t.nodes, n)
	t.byID[n.Node.ID] = n
	if n.Parent != nil {
		t.links = append(t.links, Link{Source: n.Parent, Target: n, Orientation: e.orientation})
	}

	for _, c := range n.Children {
		e.place(t, c, breadth+c.rel)
	}
}

func union(a, b r2.Box) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: min(a.Min.X, b.Min.X), Y: min(a.Min.Y, b.Min.Y)},
		Max: r2.Vec{X: max(a.Max.X, b.Max.X), Y: max(a.Max.Y, b.Max.Y)},
	}
}
