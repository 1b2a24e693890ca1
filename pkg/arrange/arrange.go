// Package arrange places independently laid-out trees side by side and
// tracks the world bounding box they occupy.
package arrange

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/flexview/pkg/layout"
	"github.com/vanderheijden86/flexview/pkg/model"
)

// DefaultGap is the horizontal space between neighbouring trees.
const DefaultGap = 100

// Placement is one tree positioned in world space. World coordinates of a
// node are its tree-local coordinates plus Offset.
type Placement struct {
	Tree   *layout.Tree
	Offset r2.Vec
	Bounds r2.Box // Tree bounds in world coordinates
}

// Width returns the placed tree's width.
func (p Placement) Width() float64 {
	return p.Bounds.Max.X - p.Bounds.Min.X
}

// Height returns the placed tree's height.
func (p Placement) Height() float64 {
	return p.Bounds.Max.Y - p.Bounds.Min.Y
}

// NodeBox returns a node's footprint in world coordinates.
func (p Placement) NodeBox(n *layout.Node) r2.Box {
	b := n.Box()
	return r2.Box{Min: r2.Add(b.Min, p.Offset), Max: r2.Add(b.Max, p.Offset)}
}

// Arrangement is the combined world of all placed trees.
type Arrangement struct {
	Placements []Placement
	World      model.Size
}

// NodeAt returns the visible node whose footprint contains the world point.
func (a Arrangement) NodeAt(p r2.Vec) (*layout.Node, bool) {
	for _, pl := range a.Placements {
		if !contains(pl.Bounds, p) {
			continue
		}
		for _, n := range pl.Tree.Descendants() {
			if contains(pl.NodeBox(n), p) {
				return n, true
			}
		}
	}
	return nil, false
}

// Locate returns the world footprint of the node with id.
func (a Arrangement) Locate(id string) (r2.Box, bool) {
	for _, pl := range a.Placements {
		if n, ok := pl.Tree.Find(id); ok {
			return pl.NodeBox(n), true
		}
	}
	return r2.Box{}, false
}

// Content returns the box enclosing all placed trees, or an empty box when
// nothing is placed.
func (a Arrangement) Content() r2.Box {
	if len(a.Placements) == 0 {
		return r2.Box{}
	}
	box := a.Placements[0].Bounds
	for _, pl := range a.Placements[1:] {
		box.Min.X = min(box.Min.X, pl.Bounds.Min.X)
		box.Min.Y = min(box.Min.Y, pl.Bounds.Min.Y)
		box.Max.X = max(box.Max.X, pl.Bounds.Max.X)
		box.Max.Y = max(box.Max.Y, pl.Bounds.Max.Y)
	}
	return box
}

func contains(b r2.Box, p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Arranger lays trees out left to right.
type Arranger struct {
	gap      float64
	viewport model.Size
}

// New creates an Arranger. The world it computes is never smaller than
// viewport.
func New(gap float64, viewport model.Size) *Arranger {
	return &Arranger{gap: gap, viewport: viewport}
}

// SetViewport changes the minimum world size.
func (a *Arranger) SetViewport(viewport model.Size) {
	a.viewport = viewport
}

// Arrange places trees in order. Tree i is shifted so its bounding box
// starts at x = Σ(width_j + gap) for j < i and y = 0.
func (a *Arranger) Arrange(trees []*layout.Tree) Arrangement {
	arr := Arrangement{Placements: make([]Placement, 0, len(trees))}

	var offset, height float64
	for _, t := range trees {
		if t == nil || t.Root == nil {
			continue
		}
		if len(arr.Placements) > 0 {
			offset += a.gap
		}
		local := t.Bounds()
		shift := r2.Vec{X: offset - local.Min.X, Y: -local.Min.Y}
		pl := Placement{
			Tree:   t,
			Offset: shift,
			Bounds: r2.Box{Min: r2.Add(local.Min, shift), Max: r2.Add(local.Max, shift)},
		}
		arr.Placements = append(arr.Placements, pl)

		offset += pl.Width()
		height = max(height, pl.Height())
	}

	arr.World = model.Size{Width: offset, Height: height}.Max(a.viewport)
	return arr
}

// LayoutAll runs the layout engine over every root. Layouts of different
// trees are independent and run concurrently; the result keeps input order
// so it can be handed to Arrange.
func LayoutAll(ctx context.Context, engine *layout.Engine, roots []*model.TreeNode) ([]*layout.Tree, error) {
	trees := make([]*layout.Tree, len(roots))
	g, ctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("layout tree %d: %w", i, err)
			}
			trees[i] = engine.Layout(root)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}
