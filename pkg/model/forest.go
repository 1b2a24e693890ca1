package model

// Forest is the set of ingested root trees plus a version counter.
//
// Forest values are never modified after construction. Every operation that
// changes view state returns a new Forest whose Version is one higher and
// whose roots are path-copied, so hosts can detect change either by
// pointer identity or by comparing versions. An operation addressed at an
// unknown id returns the receiver unchanged.
type Forest struct {
	Roots   []*TreeNode
	Version uint64

	sizes Sizes
}

// NewForest wraps already-built roots. Sizes are used by detail toggles.
func NewForest(roots []*TreeNode, sizes Sizes) *Forest {
	return &Forest{Roots: roots, sizes: sizes}
}

// Sizes returns the footprints used when swapping detail state.
func (f *Forest) Sizes() Sizes {
	return f.sizes
}

// Find looks up a node by id.
func (f *Forest) Find(id string) (*TreeNode, bool) {
	if f == nil {
		return nil, false
	}
	return FindByID(f.Roots, id)
}

// Len returns the number of root trees.
func (f *Forest) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Roots)
}

// Count returns the total number of nodes, collapsed subtrees included.
func (f *Forest) Count() int {
	n := 0
	f.Walk(func(*TreeNode, int) bool {
		n++
		return true
	})
	return n
}

// Walk visits every node depth-first (pre-order), including nodes under
// collapsed parents. Returning false from fn skips the node's children.
func (f *Forest) Walk(fn func(n *TreeNode, depth int) bool) {
	if f == nil {
		return
	}
	var walk func(n *TreeNode, depth int)
	walk = func(n *TreeNode, depth int) {
		if n == nil || !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, r := range f.Roots {
		walk(r, 0)
	}
}

// Collapse hides the node's whole subtree.
func (f *Forest) Collapse(id string) *Forest {
	return f.update(id, func(n *TreeNode) *TreeNode {
		return SetCollapsed(n, true, true)
	})
}

// Expand reveals one level below the node.
func (f *Forest) Expand(id string) *Forest {
	return f.update(id, func(n *TreeNode) *TreeNode {
		return SetCollapsed(n, false, false)
	})
}

// ToggleExpand expands a collapsed node by one level or collapses an
// expanded one recursively. Leaves are left alone.
func (f *Forest) ToggleExpand(id string) *Forest {
	n, ok := f.Find(id)
	if !ok || !n.Collapsible {
		return f
	}
	if n.Collapsed {
		return f.Expand(id)
	}
	return f.Collapse(id)
}

// SetDetailVisible switches the node between its normal and detail
// footprints.
func (f *Forest) SetDetailVisible(id string, visible bool) *Forest {
	return f.update(id, func(n *TreeNode) *TreeNode {
		return SetDetailVisible(n, visible, f.sizes)
	})
}

// ToggleDetail flips the node's detail visibility.
func (f *Forest) ToggleDetail(id string) *Forest {
	n, ok := f.Find(id)
	if !ok {
		return f
	}
	return f.SetDetailVisible(id, !n.DetailVisible)
}

// ExpandAll clears the collapsed flag everywhere.
func (f *Forest) ExpandAll() *Forest {
	return f.mapRoots(func(n *TreeNode) *TreeNode {
		return SetCollapsed(n, false, true)
	})
}

// CollapseAll collapses every root recursively.
func (f *Forest) CollapseAll() *Forest {
	return f.mapRoots(func(n *TreeNode) *TreeNode {
		return SetCollapsed(n, true, true)
	})
}

func (f *Forest) mapRoots(fn func(*TreeNode) *TreeNode) *Forest {
	if f == nil || len(f.Roots) == 0 {
		return f
	}
	roots := make([]*TreeNode, len(f.Roots))
	for i, r := range f.Roots {
		roots[i] = fn(r)
	}
	return &Forest{Roots: roots, Version: f.Version + 1, sizes: f.sizes}
}

// update path-copies from the root down to the node with id and replaces
// that node with fn's result.
func (f *Forest) update(id string, fn func(*TreeNode) *TreeNode) *Forest {
	if f == nil {
		return nil
	}
	for i, root := range f.Roots {
		replaced, ok := replaceNode(root, id, fn)
		if !ok {
			continue
		}
		roots := make([]*TreeNode, len(f.Roots))
		copy(roots, f.Roots)
		roots[i] = replaced
		return &Forest{Roots: roots, Version: f.Version + 1, sizes: f.sizes}
	}
	return f
}

func replaceNode(n *TreeNode, id string, fn func(*TreeNode) *TreeNode) (*TreeNode, bool) {
	if n == nil {
		return nil, false
	}
	if n.ID == id {
		return fn(n), true
	}
	for i, c := range n.Children {
		replaced, ok := replaceNode(c, id, fn)
		if !ok {
			continue
		}
		cp := n.clone()
		cp.Children[i] = replaced
		return cp, true
	}
	return nil, false
}
