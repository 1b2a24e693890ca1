package model

import (
	"fmt"
	"strings"
)

// Size is a width/height pair in world units (pixels at scale 1).
type Size struct {
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
}

// IsZero reports whether either dimension is non-positive.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Max returns the component-wise maximum of s and o.
func (s Size) Max(o Size) Size {
	if o.Width > s.Width {
		s.Width = o.Width
	}
	if o.Height > s.Height {
		s.Height = o.Height
	}
	return s
}

// Sizes holds the two footprints a node can occupy in the layout.
type Sizes struct {
	Normal      Size `json:"normal" yaml:"normal" toml:"normal"`
	WithDetails Size `json:"with_details" yaml:"with_details" toml:"with_details"`
}

// DefaultSizes returns the footprints used when no configuration is given.
func DefaultSizes() Sizes {
	return Sizes{
		Normal:      Size{Width: 250, Height: 150},
		WithDetails: Size{Width: 400, Height: 320},
	}
}

// For returns the footprint matching the detail visibility flag.
func (s Sizes) For(detailVisible bool) Size {
	if detailVisible {
		return s.WithDetails
	}
	return s.Normal
}

// RawNode is a caller-supplied tree node. The engine never mutates it.
type RawNode struct {
	Name     string         `json:"name" yaml:"name"`
	Children []RawNode      `json:"children,omitempty" yaml:"children,omitempty"`
	Fields   map[string]any `json:"-" yaml:"-"` // Domain fields besides name/children
}

// TreeNode wraps a RawNode with identity and view state.
//
// A TreeNode is treated as immutable once it is reachable from a Forest:
// state changes produce copies along the path from the root to the changed
// node, so pointer identity changes exactly where something changed.
type TreeNode struct {
	ID            string
	Name          string
	Fields        map[string]any
	Collapsed     bool        // Children hidden from layout, kept in memory
	Collapsible   bool        // Original node had at least one child
	DetailVisible bool        // Enlarged rendering footprint
	FlexSize      Size        // Footprint used by the layout
	Children      []*TreeNode // Always the full child list, even when collapsed
}

// VisibleChildren returns the children that take part in layout.
func (n *TreeNode) VisibleChildren() []*TreeNode {
	if n == nil || n.Collapsed {
		return nil
	}
	return n.Children
}

// IsLeaf reports whether the node has no children at all.
func (n *TreeNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// clone returns a shallow copy; the children slice is copied so the caller
// can replace entries without touching the original.
func (n *TreeNode) clone() *TreeNode {
	c := *n
	if n.Children != nil {
		c.Children = make([]*TreeNode, len(n.Children))
		copy(c.Children, n.Children)
	}
	return &c
}

// IngestError reports malformed input found during ingestion.
type IngestError struct {
	Path   []int  // Child indexes from the document root to the bad node
	Reason string // What is wrong with the node
}

func (e *IngestError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("invalid document: %s", e.Reason)
	}
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return fmt.Sprintf("invalid node at [%s]: %s", strings.Join(parts, "."), e.Reason)
}
