// Package diagram ties the tree model, layout, arrangement, viewport and
// minimap together into one embeddable viewer.
package diagram

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/flexview/pkg/arrange"
	"github.com/vanderheijden86/flexview/pkg/config"
	"github.com/vanderheijden86/flexview/pkg/layout"
	"github.com/vanderheijden86/flexview/pkg/minimap"
	"github.com/vanderheijden86/flexview/pkg/model"
	"github.com/vanderheijden86/flexview/pkg/render"
	"github.com/vanderheijden86/flexview/pkg/viewport"
)

// FitPadding is the margin kept around the content by Fit.
const FitPadding = 20

// Option configures a Viewer.
type Option func(*Viewer)

// WithExpandHandler registers the callback fired after a node's expand
// button toggles.
func WithExpandHandler(fn func(id string)) Option {
	return func(v *Viewer) { v.onExpand = fn }
}

// WithDetailHandler registers the callback fired after a node's detail
// view toggles. It receives the updated node.
func WithDetailHandler(fn func(n *model.TreeNode)) Option {
	return func(v *Viewer) { v.onDetail = fn }
}

// WithIDGenerator overrides how node ids are minted at load time.
func WithIDGenerator(gen model.IDGenerator) Option {
	return func(v *Viewer) { v.ids = gen }
}

// WithSequentialIDs numbers nodes prefix-0, prefix-1, ... in pre-order.
// Numbering restarts on every Load, so an unchanged document keeps its ids
// across reloads.
func WithSequentialIDs(prefix string) Option {
	return func(v *Viewer) {
		v.idScheme = func() model.IDGenerator { return model.SequentialIDs(prefix) }
	}
}

// Viewer is one mounted diagram. It is not safe for concurrent use; hosts
// serialize events.
type Viewer struct {
	opts     config.Options
	ids      model.IDGenerator
	idScheme func() model.IDGenerator
	engine   *layout.Engine
	arranger *arrange.Arranger
	ctrl     *viewport.Controller
	sync     *minimap.Sync

	forest *model.Forest
	arr    arrange.Arrangement

	onExpand func(string)
	onDetail func(*model.TreeNode)
}

// New creates an empty viewer.
func New(opts config.Options, options ...Option) *Viewer {
	v := &Viewer{
		opts:     opts,
		ids:      model.UUIDGenerator,
		engine:   layout.NewEngine(opts.NodeMargin, opts.LayoutOrientation()),
		arranger: arrange.New(opts.GapBetweenTrees, opts.Viewport),
		forest:   model.NewForest(nil, opts.Sizes()),
	}
	for _, o := range options {
		o(v)
	}
	v.arr = v.arranger.Arrange(nil)
	v.ctrl = viewport.NewController(opts.Viewport, v.arr.World, opts.ScaleExtent)
	v.sync = minimap.New(v.ctrl, opts.MinimapScale)
	return v
}

// Options returns the viewer's configuration.
func (v *Viewer) Options() config.Options { return v.opts }

// Forest returns the current model.
func (v *Viewer) Forest() *model.Forest { return v.forest }

// Arrangement returns the current world geometry.
func (v *Viewer) Arrangement() arrange.Arrangement { return v.arr }

// Controller returns the pan/zoom controller.
func (v *Viewer) Controller() *viewport.Controller { return v.ctrl }

// Sync returns the minimap sync.
func (v *Viewer) Sync() *minimap.Sync { return v.sync }

// Load replaces the document. On error the previous document stays.
func (v *Viewer) Load(ctx context.Context, raws ...model.RawNode) error {
	gen := v.ids
	if v.idScheme != nil {
		gen = v.idScheme()
	}
	f, err := model.IngestWith(v.opts.Sizes(), gen, raws...)
	if err != nil {
		return err
	}
	return v.setForest(ctx, f)
}

// ToggleExpand flips a collapsible node between collapsed and expanded.
// Unknown ids and leaves are ignored.
func (v *Viewer) ToggleExpand(ctx context.Context, id string) error {
	next := v.forest.ToggleExpand(id)
	if next == v.forest {
		return nil
	}
	if err := v.setForest(ctx, next); err != nil {
		return err
	}
	if v.onExpand != nil {
		v.onExpand(id)
	}
	return nil
}

// ToggleDetail flips a node's detail view. Unknown ids are ignored.
func (v *Viewer) ToggleDetail(ctx context.Context, id string) error {
	next := v.forest.ToggleDetail(id)
	if next == v.forest {
		return nil
	}
	if err := v.setForest(ctx, next); err != nil {
		return err
	}
	if v.onDetail != nil {
		if n, ok := v.forest.Find(id); ok {
			v.onDetail(n)
		}
	}
	return nil
}

// ExpandAll expands every node.
func (v *Viewer) ExpandAll(ctx context.Context) error {
	return v.setForest(ctx, v.forest.ExpandAll())
}

// CollapseAll collapses every root.
func (v *Viewer) CollapseAll(ctx context.Context) error {
	return v.setForest(ctx, v.forest.CollapseAll())
}

// Resize changes the canvas size. The world is re-floored at the new size.
func (v *Viewer) Resize(ctx context.Context, size model.Size) error {
	v.opts.Viewport = size
	v.arranger.SetViewport(size)
	v.ctrl.SetViewport(size)
	return v.relayout(ctx)
}

// Hit describes what a screen point landed on.
type Hit struct {
	Node   *layout.Node
	Handle bool // On the expand button
}

// HitTest maps a screen point to the node under it.
func (v *Viewer) HitTest(p r2.Vec) (Hit, bool) {
	world := v.ctrl.Transform().Invert(p)
	n, ok := v.arr.NodeAt(world)
	if !ok {
		return Hit{}, false
	}
	h := Hit{Node: n}
	if n.Node.Collapsible {
		box, _ := v.arr.Locate(n.ID())
		h.Handle = inside(render.ExpandHandle(box), world)
	}
	return h, true
}

// Click handles a click at a screen point: the expand button toggles
// expansion, anywhere else on a node toggles its details. It reports
// whether a node was hit.
func (v *Viewer) Click(ctx context.Context, p r2.Vec) (bool, error) {
	h, ok := v.HitTest(p)
	if !ok {
		return false, nil
	}
	if h.Handle {
		return true, v.ToggleExpand(ctx, h.Node.ID())
	}
	return true, v.ToggleDetail(ctx, h.Node.ID())
}

// Fit zooms so the whole content is visible.
func (v *Viewer) Fit() {
	v.ctrl.FitTo(v.arr.Content(), FitPadding)
}

// Focus centers the view on a node, keeping the current scale.
func (v *Viewer) Focus(id string) bool {
	box, ok := v.arr.Locate(id)
	if !ok {
		return false
	}
	t := v.ctrl.Transform()
	vp := v.ctrl.Viewport()
	c := r2.Scale(0.5, r2.Add(box.Min, box.Max))
	v.ctrl.SetTransform(viewport.Transform{X: vp.Width/2 - c.X*t.K, Y: vp.Height/2 - c.Y*t.K, K: t.K}, viewport.OriginUser)
	return true
}

// Scene snapshots the current frame for a renderer.
func (v *Viewer) Scene() render.Scene {
	return render.Scene{
		Arrangement: v.arr,
		Transform:   v.ctrl.Transform(),
		Viewport:    v.ctrl.Viewport(),
		Minimap:     render.NewMinimapView(v.sync),
		Theme:       render.DefaultTheme(),
	}
}

func (v *Viewer) setForest(ctx context.Context, f *model.Forest) error {
	prev := v.forest
	v.forest = f
	if err := v.relayout(ctx); err != nil {
		v.forest = prev
		return err
	}
	return nil
}

func (v *Viewer) relayout(ctx context.Context) error {
	trees, err := arrange.LayoutAll(ctx, v.engine, v.forest.Roots)
	if err != nil {
		return fmt.Errorf("relayout: %w", err)
	}
	v.arr = v.arranger.Arrange(trees)
	v.ctrl.SetWorld(v.arr.World)
	v.sync.Refresh()
	return nil
}

func inside(b r2.Box, p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}
