package model

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func sampleDoc() []RawNode {
	return []RawNode{{
		Name: "root",
		Children: []RawNode{
			{Name: "a", Children: []RawNode{{Name: "a1"}, {Name: "a2", Children: []RawNode{{Name: "a2x"}}}}},
			{Name: "b", Fields: map[string]any{"rows": 12}},
		},
	}}
}

func mustIngest(t *testing.T, raws ...RawNode) *Forest {
	t.Helper()
	f, err := IngestWith(DefaultSizes(), SequentialIDs("n"), raws...)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	return f
}

func TestIngestAssignsDefaults(t *testing.T) {
	f := mustIngest(t, sampleDoc()...)

	if f.Len() != 1 {
		t.Fatalf("expected 1 root, got %d", f.Len())
	}
	if f.Count() != 6 {
		t.Errorf("expected 6 nodes, got %d", f.Count())
	}

	root := f.Roots[0]
	if root.ID != "n-0" {
		t.Errorf("expected pre-order id n-0 for root, got %s", root.ID)
	}
	if !root.Collapsible {
		t.Error("root has children and should be collapsible")
	}
	b := root.Children[1]
	if b.Collapsible {
		t.Error("leaf b should not be collapsible")
	}
	if b.Fields["rows"] != 12 {
		t.Errorf("domain fields not carried over: %#v", b.Fields)
	}
	if b.FlexSize != DefaultSizes().Normal {
		t.Errorf("expected normal footprint, got %+v", b.FlexSize)
	}
}

func TestIngestMissingName(t *testing.T) {
	doc := []RawNode{{Name: "root", Children: []RawNode{{Name: "ok"}, {Children: []RawNode{{Name: "x"}}}}}}

	_, err := Ingest(doc...)
	if err == nil {
		t.Fatal("expected error for node without name")
	}
	var ie *IngestError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *IngestError, got %T", err)
	}
	if !reflect.DeepEqual(ie.Path, []int{0, 1}) {
		t.Errorf("expected path [0 1], got %v", ie.Path)
	}
	if got := err.Error(); got != "invalid node at [0.1]: missing name" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestIngestEmpty(t *testing.T) {
	f, err := Ingest()
	if err != nil {
		t.Fatalf("empty document should not fail: %v", err)
	}
	if f.Len() != 0 || f.Count() != 0 {
		t.Errorf("expected empty forest, got %d roots", f.Len())
	}
}

func TestFindByID(t *testing.T) {
	f := mustIngest(t, sampleDoc()...)

	tests := []struct {
		id   string
		want string
		ok   bool
	}{
		{"n-0", "root", true},
		{"n-4", "a2x", true},
		{"n-5", "b", true},
		{"stale", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n, ok := FindByID(f.Roots, tt.id)
			if ok != tt.ok {
				t.Fatalf("FindByID(%q) ok = %v, want %v", tt.id, ok, tt.ok)
			}
			if ok && n.Name != tt.want {
				t.Errorf("FindByID(%q) = %s, want %s", tt.id, n.Name, tt.want)
			}
		})
	}
}

func TestCollapseIsRecursiveExpandIsOneLevel(t *testing.T) {
	f := mustIngest(t, sampleDoc()...)

	collapsed := f.Collapse("n-0")
	collapsed.Walk(func(n *TreeNode, _ int) bool {
		if !n.Collapsed {
			t.Errorf("node %s should be collapsed after recursive collapse", n.Name)
		}
		return true
	})

	expanded := collapsed.Expand("n-0")
	root := expanded.Roots[0]
	if root.Collapsed {
		t.Error("root should be expanded")
	}
	for _, c := range root.Children {
		if !c.Collapsed {
			t.Errorf("child %s should stay collapsed after single-level expand", c.Name)
		}
	}
}

func TestUpdatesArePathCopies(t *testing.T) {
	f := mustIngest(t, sampleDoc()...)
	before := f.Roots[0]
	untouched := before.Children[1]

	next := f.Collapse("n-1") // "a"
	if next == f {
		t.Fatal("expected a new forest")
	}
	if next.Version != f.Version+1 {
		t.Errorf("expected version %d, got %d", f.Version+1, next.Version)
	}
	if next.Roots[0] == before {
		t.Error("root on the mutated path must be copied")
	}
	if next.Roots[0].Children[1] != untouched {
		t.Error("sibling off the mutated path should be shared")
	}
	if before.Children[0].Collapsed {
		t.Error("original forest must not change")
	}
}

func TestUnknownIDIsNoop(t *testing.T) {
	f := mustIngest(t, sampleDoc()...)

	for name, op := range map[string]func(string) *Forest{
		"collapse": f.Collapse,
		"expand":   f.Expand,
		"toggle":   f.ToggleExpand,
		"detail":   f.ToggleDetail,
	} {
		if got := op("gone"); got != f {
			t.Errorf("%s on unknown id should return the same forest", name)
		}
	}
}

func TestToggleExpandIgnoresLeaves(t *testing.T) {
	f := mustIngest(t, sampleDoc()...)
	if got := f.ToggleExpand("n-5"); got != f {
		t.Error("toggling a leaf should be a no-op")
	}
}

func TestSetDetailVisibleSwapsFootprint(t *testing.T) {
	f := mustIngest(t, sampleDoc()...)
	sizes := DefaultSizes()

	on := f.SetDetailVisible("n-5", true)
	n, _ := on.Find("n-5")
	if !n.DetailVisible || n.FlexSize != sizes.WithDetails {
		t.Errorf("expected detail footprint, got visible=%v size=%+v", n.DetailVisible, n.FlexSize)
	}

	off := on.ToggleDetail("n-5")
	n, _ = off.Find("n-5")
	if n.DetailVisible || n.FlexSize != sizes.Normal {
		t.Errorf("expected normal footprint, got visible=%v size=%+v", n.DetailVisible, n.FlexSize)
	}
}

func TestExpandAllCollapseAll(t *testing.T) {
	f := mustIngest(t, sampleDoc()...).CollapseAll()
	f.Walk(func(n *TreeNode, _ int) bool {
		if !n.Collapsed {
			t.Errorf("%s not collapsed", n.Name)
		}
		return true
	})
	f = f.ExpandAll()
	f.Walk(func(n *TreeNode, _ int) bool {
		if n.Collapsed {
			t.Errorf("%s still collapsed", n.Name)
		}
		return true
	})
}

// genRaw draws a random raw tree of bounded depth.
func genRaw(t *rapid.T, depth int, label string) RawNode {
	n := RawNode{Name: rapid.StringMatching(`[a-z]{1,6}`).Draw(t, label+"name")}
	if depth == 0 {
		return n
	}
	kids := rapid.IntRange(0, 3).Draw(t, label+"kids")
	for i := 0; i < kids; i++ {
		n.Children = append(n.Children, genRaw(t, depth-1, fmt.Sprintf("%s%d.", label, i)))
	}
	return n
}

func genDoc(t *rapid.T) []RawNode {
	roots := rapid.IntRange(0, 3).Draw(t, "roots")
	doc := make([]RawNode, roots)
	for i := range doc {
		doc[i] = genRaw(t, rapid.IntRange(0, 4).Draw(t, "depth"), fmt.Sprintf("r%d.", i))
	}
	return doc
}

func TestPropertyIDsUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f, err := Ingest(genDoc(t)...)
		if err != nil {
			t.Fatalf("ingest: %v", err)
		}
		seen := make(map[string]bool)
		f.Walk(func(n *TreeNode, _ int) bool {
			if seen[n.ID] {
				t.Fatalf("duplicate id %s", n.ID)
			}
			seen[n.ID] = true
			return true
		})
	})
}

type shape struct {
	ID       string
	Name     string
	Children []shape
}

func shapeOf(n *TreeNode) shape {
	s := shape{ID: n.ID, Name: n.Name}
	for _, c := range n.Children {
		s.Children = append(s.Children, shapeOf(c))
	}
	return s
}

func TestPropertyCollapseNonDestructive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := genDoc(t)
		if len(doc) == 0 {
			return
		}
		f, err := IngestWith(DefaultSizes(), SequentialIDs("p"), doc...)
		if err != nil {
			t.Fatalf("ingest: %v", err)
		}
		var ids []string
		f.Walk(func(n *TreeNode, _ int) bool {
			ids = append(ids, n.ID)
			return true
		})
		id := rapid.SampledFrom(ids).Draw(t, "id")
		orig, _ := f.Find(id)

		round := f.Collapse(id).Expand(id)
		got, ok := round.Find(id)
		if !ok {
			t.Fatalf("node %s lost after collapse/expand", id)
		}
		if !reflect.DeepEqual(shapeOf(orig), shapeOf(got)) {
			t.Fatalf("structure changed for %s", id)
		}
	})
}
