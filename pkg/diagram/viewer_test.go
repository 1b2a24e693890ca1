package diagram

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/flexview/pkg/config"
	"github.com/vanderheijden86/flexview/pkg/model"
	"github.com/vanderheijden86/flexview/pkg/viewport"
)

func document() []model.RawNode {
	return []model.RawNode{
		{Name: "root", Children: []model.RawNode{{Name: "a"}, {Name: "b"}}},
		{Name: "solo", Fields: map[string]any{"cost": 3}},
	}
}

func newViewer(t *testing.T, vp model.Size, options ...Option) *Viewer {
	t.Helper()
	opts := config.Default()
	opts.Viewport = vp
	options = append([]Option{WithIDGenerator(model.SequentialIDs("n"))}, options...)
	v := New(opts, options...)
	if err := v.Load(context.Background(), document()...); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return v
}

func TestLoadArrangesTrees(t *testing.T) {
	v := newViewer(t, model.Size{Width: 1200, Height: 800})
	arr := v.Arrangement()

	if len(arr.Placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(arr.Placements))
	}
	if x := arr.Placements[1].Bounds.Min.X; x != 660 {
		t.Errorf("second tree at %v, want 660", x)
	}
	if arr.World != (model.Size{Width: 1200, Height: 800}) {
		t.Errorf("world = %+v, want viewport floor", arr.World)
	}
	if v.Controller().World() != arr.World {
		t.Errorf("controller world %+v out of sync", v.Controller().World())
	}
}

func TestLoadErrorKeepsDocument(t *testing.T) {
	v := newViewer(t, model.Size{Width: 1200, Height: 800})
	before := v.Forest()
	if err := v.Load(context.Background(), model.RawNode{}); err == nil {
		t.Fatal("expected ingest error")
	}
	if v.Forest() != before {
		t.Error("failed load replaced the document")
	}
}

func TestSequentialIDsRestartPerLoad(t *testing.T) {
	v := New(config.Default(), WithSequentialIDs("n"))
	for i := 0; i < 2; i++ {
		if err := v.Load(context.Background(), document()...); err != nil {
			t.Fatalf("Load: %v", err)
		}
		if id := v.Forest().Roots[0].ID; id != "n-0" {
			t.Errorf("load %d: first root id = %q, want n-0", i, id)
		}
	}
}

func TestClickHandleTogglesExpand(t *testing.T) {
	var expanded []string
	v := newViewer(t, model.Size{Width: 1200, Height: 800}, WithExpandHandler(func(id string) {
		expanded = append(expanded, id)
	}))

	hit, err := v.Click(context.Background(), r2.Vec{X: 240, Y: 100})
	if err != nil || !hit {
		t.Fatalf("Click = %v, %v", hit, err)
	}
	if len(expanded) != 1 || expanded[0] != "n-0" {
		t.Fatalf("expand callback got %v", expanded)
	}
	root, _ := v.Forest().Find("n-0")
	if !root.Collapsed {
		t.Error("root should be collapsed")
	}
	if n := len(v.Arrangement().Placements[0].Tree.Descendants()); n != 1 {
		t.Errorf("collapsed tree shows %d nodes", n)
	}
}

func TestClickBodyTogglesDetail(t *testing.T) {
	var detailed *model.TreeNode
	v := newViewer(t, model.Size{Width: 1200, Height: 800}, WithDetailHandler(func(n *model.TreeNode) {
		detailed = n
	}))

	if _, err := v.Click(context.Background(), r2.Vec{X: 100, Y: 200}); err != nil {
		t.Fatal(err)
	}
	if detailed == nil || detailed.ID != "n-0" || !detailed.DetailVisible {
		t.Fatalf("detail callback got %+v", detailed)
	}
	if detailed.FlexSize != config.Default().DetailSize {
		t.Errorf("detail footprint = %+v", detailed.FlexSize)
	}

	hit, err := v.Click(context.Background(), r2.Vec{X: 5, Y: 5})
	if err != nil || hit {
		t.Errorf("empty space click = %v, %v", hit, err)
	}
}

func TestStaleIDsAreIgnored(t *testing.T) {
	calls := 0
	v := newViewer(t, model.Size{Width: 1200, Height: 800},
		WithExpandHandler(func(string) { calls++ }),
		WithDetailHandler(func(*model.TreeNode) { calls++ }),
	)
	version := v.Forest().Version

	ctx := context.Background()
	for _, err := range []error{
		v.ToggleExpand(ctx, "missing"),
		v.ToggleDetail(ctx, "missing"),
		v.ToggleExpand(ctx, "n-1"), // leaf
	} {
		if err != nil {
			t.Errorf("unexpected error %v", err)
		}
	}
	if calls != 0 {
		t.Errorf("callbacks fired %d times", calls)
	}
	if v.Forest().Version != version {
		t.Error("forest changed")
	}
}

func TestRelayoutPreservesTransform(t *testing.T) {
	v := newViewer(t, model.Size{Width: 400, Height: 300})
	want := viewport.Transform{X: -100, Y: -20, K: 1}
	v.Controller().SetTransform(want, viewport.OriginUser)
	if got := v.Controller().Transform(); got != want {
		t.Fatalf("setup transform = %+v", got)
	}

	if err := v.ToggleDetail(context.Background(), "n-3"); err != nil {
		t.Fatal(err)
	}
	if got := v.Controller().Transform(); got != want {
		t.Errorf("transform after relayout = %+v, want %+v", got, want)
	}
	if w := v.Arrangement().World.Width; w != 1060 {
		t.Errorf("world width = %v, want 1060", w)
	}
}

func TestFitAndFocus(t *testing.T) {
	v := newViewer(t, model.Size{Width: 1200, Height: 800})
	v.Fit()
	if k, want := v.Controller().Transform().K, 1160.0/910; math.Abs(k-want) > 1e-9 {
		t.Errorf("fit scale = %v, want %v", k, want)
	}

	if v.Focus("missing") {
		t.Error("focus on unknown id should fail")
	}
	if !v.Focus("n-3") {
		t.Error("focus on solo should succeed")
	}
}

func TestResize(t *testing.T) {
	v := newViewer(t, model.Size{Width: 1200, Height: 800})
	if err := v.Resize(context.Background(), model.Size{Width: 2000, Height: 1000}); err != nil {
		t.Fatal(err)
	}
	if w := v.Arrangement().World; w != (model.Size{Width: 2000, Height: 1000}) {
		t.Errorf("world = %+v", w)
	}
	if s := v.Sync().Size(); s != (model.Size{Width: 400, Height: 200}) {
		t.Errorf("minimap = %+v", s)
	}
	if v.Scene().Minimap == nil {
		t.Error("scene lacks minimap")
	}
}

func TestViewersAreIndependent(t *testing.T) {
	a := newViewer(t, model.Size{Width: 1200, Height: 800})
	b := newViewer(t, model.Size{Width: 1200, Height: 800})

	if err := a.CollapseAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	root, _ := b.Forest().Find("n-0")
	if root.Collapsed {
		t.Error("collapsing one viewer affected another")
	}
	if err := a.ExpandAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := a.Forest().Count(); n != 4 {
		t.Errorf("count = %d", n)
	}
}
