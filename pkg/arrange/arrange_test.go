package arrange

import (
	"context"
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/flexview/pkg/layout"
	"github.com/vanderheijden86/flexview/pkg/model"
)

func layoutDoc(t testing.TB, raws ...model.RawNode) []*layout.Tree {
	t.Helper()
	f, err := model.IngestWith(model.DefaultSizes(), model.SequentialIDs("n"), raws...)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	trees, err := LayoutAll(context.Background(), layout.NewEngine(layout.DefaultMargin(), layout.Horizontal), f.Roots)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	return trees
}

func TestArrangeTwoSingleNodeTrees(t *testing.T) {
	trees := layoutDoc(t, model.RawNode{Name: "one"}, model.RawNode{Name: "two"})
	arr := New(100, model.Size{Width: 100, Height: 100}).Arrange(trees)

	if len(arr.Placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(arr.Placements))
	}
	if w := arr.Placements[0].Width(); w != 250 {
		t.Errorf("expected tree width 250, got %v", w)
	}
	if x := arr.Placements[1].Bounds.Min.X; x != 350 {
		t.Errorf("expected second tree at 350, got %v", x)
	}
	if arr.World.Width != 600 {
		t.Errorf("expected world width 600, got %v", arr.World.Width)
	}
	if arr.World.Height != 150 {
		t.Errorf("expected world height 150, got %v", arr.World.Height)
	}
}

func TestArrangeNormalizesTop(t *testing.T) {
	trees := layoutDoc(t, model.RawNode{Name: "root", Children: []model.RawNode{{Name: "a"}, {Name: "b"}}})
	arr := New(100, model.Size{}).Arrange(trees)

	pl := arr.Placements[0]
	if pl.Bounds.Min.X != 0 || pl.Bounds.Min.Y != 0 {
		t.Errorf("expected bounds to start at origin, got %v", pl.Bounds.Min)
	}
	root := pl.NodeBox(pl.Tree.Root)
	if root.Min.Y != 95 {
		t.Errorf("expected root top at 95, got %v", root.Min.Y)
	}
}

func TestArrangeWorldFloorsAtViewport(t *testing.T) {
	viewport := model.Size{Width: 1200, Height: 800}

	arr := New(100, viewport).Arrange(nil)
	if arr.World != viewport {
		t.Errorf("empty arrangement world = %+v, want viewport %+v", arr.World, viewport)
	}

	arr = New(100, viewport).Arrange(layoutDoc(t, model.RawNode{Name: "solo"}))
	if arr.World != viewport {
		t.Errorf("small world = %+v, want viewport %+v", arr.World, viewport)
	}
}

func TestNodeAtAndLocate(t *testing.T) {
	trees := layoutDoc(t, model.RawNode{Name: "one"}, model.RawNode{Name: "two"})
	arr := New(100, model.Size{}).Arrange(trees)

	n, ok := arr.NodeAt(r2.Vec{X: 400, Y: 10})
	if !ok || n.Node.Name != "two" {
		t.Fatalf("expected hit on tree two, got %v %v", n, ok)
	}
	if _, ok := arr.NodeAt(r2.Vec{X: 300, Y: 10}); ok {
		t.Error("gap between trees should not hit anything")
	}

	box, ok := arr.Locate("n-1")
	if !ok || box.Min.X != 350 {
		t.Errorf("Locate(n-1) = %v, %v", box, ok)
	}
	if _, ok := arr.Locate("missing"); ok {
		t.Error("expected missing id not to be located")
	}
}

func TestLayoutAllCancelled(t *testing.T) {
	f, _ := model.Ingest(model.RawNode{Name: "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LayoutAll(ctx, layout.NewEngine(layout.DefaultMargin(), layout.Horizontal), f.Roots)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPropertyWorldNeverSmallerThanViewport(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(t, "trees")
		raws := make([]model.RawNode, n)
		for i := range raws {
			raws[i] = model.RawNode{Name: "t"}
			for k := rapid.IntRange(0, 4).Draw(t, "kids"); k > 0; k-- {
				raws[i].Children = append(raws[i].Children, model.RawNode{Name: "c"})
			}
		}
		viewport := model.Size{
			Width:  rapid.Float64Range(0, 5000).Draw(t, "vw"),
			Height: rapid.Float64Range(0, 5000).Draw(t, "vh"),
		}
		gap := rapid.Float64Range(0, 300).Draw(t, "gap")

		f, err := model.Ingest(raws...)
		if err != nil {
			t.Fatalf("ingest: %v", err)
		}
		trees, err := LayoutAll(context.Background(), layout.NewEngine(layout.DefaultMargin(), layout.Horizontal), f.Roots)
		if err != nil {
			t.Fatalf("layout: %v", err)
		}
		arr := New(gap, viewport).Arrange(trees)
		if arr.World.Width < viewport.Width || arr.World.Height < viewport.Height {
			t.Fatalf("world %+v smaller than viewport %+v", arr.World, viewport)
		}
		content := arr.Content()
		if arr.World.Width < content.Max.X-1e-6 || arr.World.Height < content.Max.Y-1e-6 {
			t.Fatalf("world %+v does not contain content %v", arr.World, content)
		}
	})
}
