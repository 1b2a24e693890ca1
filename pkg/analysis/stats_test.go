package analysis

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/flexview/pkg/model"
)

// root(a(c, d), b) and a lone root e
func sampleForest(t *testing.T) *model.Forest {
	t.Helper()
	f, err := model.IngestWith(model.DefaultSizes(), model.SequentialIDs("n"),
		model.RawNode{Name: "root", Children: []model.RawNode{
			{Name: "a", Children: []model.RawNode{{Name: "c"}, {Name: "d"}}},
			{Name: "b"},
		}},
		model.RawNode{Name: "e"},
	)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestCompute(t *testing.T) {
	f := sampleForest(t)
	f = f.ToggleDetail("n-3").Collapse("n-1")

	s := Compute(f, 3)
	if s.Trees != 2 || s.Nodes != 6 || s.Leaves != 4 {
		t.Errorf("counts = %+v", s)
	}
	if s.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d", s.MaxDepth)
	}
	if s.Collapsed != 1 || s.Detailed != 1 {
		t.Errorf("Collapsed = %d, Detailed = %d", s.Collapsed, s.Detailed)
	}
	// root and a both have two children; root comes first
	if s.Widest != "n-0" || s.MaxFanOut != 2 {
		t.Errorf("Widest = %q (%d)", s.Widest, s.MaxFanOut)
	}
	if len(s.Hubs) != 1 || s.Hubs[0].ID != "n-1" || s.Hubs[0].Name != "a" {
		t.Errorf("Hubs = %+v", s.Hubs)
	}
}

func TestComputeWithoutHubs(t *testing.T) {
	s := Compute(sampleForest(t), 0)
	if s.Hubs != nil {
		t.Errorf("topK 0 should skip hubs, got %+v", s.Hubs)
	}

	empty := Compute(model.NewForest(nil, model.DefaultSizes()), 5)
	if empty.Nodes != 0 || empty.Hubs != nil || empty.Widest != "" {
		t.Errorf("empty forest = %+v", empty)
	}
}

// A chain is the worst case for depth: every inner node is a hub.
func TestComputeChainProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "length")
		raw := model.RawNode{Name: "leaf"}
		for i := 1; i < n; i++ {
			raw = model.RawNode{Name: "link", Children: []model.RawNode{raw}}
		}
		f, err := model.Ingest(raw)
		if err != nil {
			t.Fatal(err)
		}
		s := Compute(f, n)
		if s.Nodes != n || s.MaxDepth != n-1 || s.Leaves != 1 {
			t.Fatalf("stats = %+v", s)
		}
		if want := max(n-2, 0); len(s.Hubs) != want {
			t.Fatalf("%d hubs for a chain of %d", len(s.Hubs), n)
		}
		for i := 1; i < len(s.Hubs); i++ {
			if s.Hubs[i].Score > s.Hubs[i-1].Score {
				t.Fatal("hubs not sorted by score")
			}
		}
	})
}
