package ui

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/flexview/pkg/config"
	"github.com/vanderheijden86/flexview/pkg/diagram"
	"github.com/vanderheijden86/flexview/pkg/model"
	"github.com/vanderheijden86/flexview/pkg/render"
)

// newTestModel loads root(a, b) and solo into a 100x30 terminal.
// Ids are n-0 root, n-1 a, n-2 b, n-3 solo.
func newTestModel(t *testing.T) Model {
	t.Helper()
	v := diagram.New(config.Default(), diagram.WithIDGenerator(model.SequentialIDs("n")))
	err := v.Load(context.Background(),
		model.RawNode{Name: "root", Children: []model.RawNode{{Name: "a"}, {Name: "b"}}},
		model.RawNode{Name: "solo", Fields: map[string]any{"cost": 3}},
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m := NewModel(context.Background(), v, "plan")
	m.copy = func(string) error { return nil }
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelResizesViewer(t *testing.T) {
	m := newTestModel(t)
	vp := m.viewer.Controller().Viewport()
	if vp.Width != 100*cellWidth || vp.Height != float64(m.canvasRows*cellHeight) {
		t.Errorf("viewport = %+v for %d canvas rows", vp, m.canvasRows)
	}
	if m.isSplitView {
		t.Error("100 columns should not split")
	}
}

func TestModelSelection(t *testing.T) {
	m := newTestModel(t)
	if got := m.Selected(); got != "n-0" {
		t.Fatalf("initial selection = %q", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.Selected(); got != "n-1" {
		t.Errorf("after tab = %q, want n-1", got)
	}

	// Back past the first node wraps to the last
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := m.Selected(); got != "n-3" {
		t.Errorf("wrap = %q, want n-3", got)
	}
}

func TestModelCollapseHidesChildrenFromSelection(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	n, _ := m.viewer.Forest().Find("n-0")
	if !n.Collapsed {
		t.Fatal("enter should collapse the selected root")
	}
	if strings.Join(m.order, ",") != "n-0,n-3" {
		t.Errorf("order = %v", m.order)
	}
	if m.Selected() != "n-0" {
		t.Errorf("selection moved to %q", m.Selected())
	}

	m = update(t, m, runes("E"))
	if len(m.order) != 4 {
		t.Errorf("expand all should show every node, got %v", m.order)
	}
}

func TestModelDetailKey(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, runes("d"))
	n, _ := m.viewer.Forest().Find("n-0")
	if !n.DetailVisible {
		t.Error("d should show details of the selected node")
	}
}

func TestModelPanAndZoom(t *testing.T) {
	m := newTestModel(t)
	ctrl := m.viewer.Controller()

	// The world fits the canvas at scale 1, so there is nowhere to pan
	m = update(t, m, runes("h"))
	if tr := ctrl.Transform(); tr.X != 0 || tr.Y != 0 {
		t.Fatalf("pan at fit = %v", tr)
	}

	m = update(t, m, runes("+"))
	zoomed := ctrl.Transform()
	if zoomed.K != zoomStep {
		t.Fatalf("zoom = %v", zoomed)
	}

	m = update(t, m, runes("h"))
	if got := ctrl.Transform().X; math.Abs(got-(zoomed.X+panStep)) > 1e-9 {
		t.Errorf("pan left X = %v, want %v", got, zoomed.X+panStep)
	}

	// Panning stops at the world edge
	m = update(t, m, runes("h"))
	m = update(t, m, runes("h"))
	if got := ctrl.Transform().X; got != 0 {
		t.Errorf("X past the edge = %v", got)
	}

	m = update(t, m, runes("0"))
	if tr := ctrl.Transform(); tr.K != 1 {
		t.Errorf("reset = %v", tr)
	}
}

func TestModelMouse(t *testing.T) {
	m := newTestModel(t)

	// Cell (10,11) is inside root's body, below its expand button
	m = update(t, m, tea.MouseMsg{X: 10, Y: 11, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	n, _ := m.viewer.Forest().Find("n-0")
	if !n.DetailVisible {
		t.Error("clicking a node body should show its details")
	}

	m = update(t, m, tea.MouseMsg{X: 50, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if k := m.viewer.Controller().Transform().K; k <= 1 {
		t.Errorf("wheel up should zoom in, k = %v", k)
	}
}

func TestModelReload(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m = update(t, m, DocumentMsg{Err: errors.New("bad document")})
	if m.Err() == nil || m.viewer.Forest().Count() != 4 {
		t.Fatal("a failed reload should keep the previous document")
	}
	if !strings.Contains(m.View(), "bad document") {
		t.Error("view should show the reload error")
	}

	m = update(t, m, DocumentMsg{Raws: []model.RawNode{{Name: "only"}}})
	if m.Err() != nil {
		t.Errorf("err = %v", m.Err())
	}
	if m.viewer.Forest().Count() != 1 || m.Selected() == "" {
		t.Errorf("reload not applied, selected %q", m.Selected())
	}
}

func TestModelCopyAndQuit(t *testing.T) {
	m := newTestModel(t)
	var copied string
	m.copy = func(s string) error { copied = s; return nil }

	m = update(t, m, runes("y"))
	if copied != "n-0" || !strings.Contains(m.status, "copied n-0") {
		t.Errorf("copied %q, status %q", copied, m.status)
	}

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	for _, want := range []string{"fv · plan", "root", "solo", "╔", "█"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelSplitViewShowsDetails(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})
	if !m.isSplitView {
		t.Fatal("160 columns should split")
	}
	for range 3 {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	if !strings.Contains(m.View(), "cost") {
		t.Error("detail pane should list the fields of solo")
	}
}

func TestNodeMarkdown(t *testing.T) {
	n := &model.TreeNode{ID: "x", Name: "scan", Fields: map[string]any{"rows": 42, "expr": "a|b"}}
	md := nodeMarkdown(n)
	for _, want := range []string{"## scan", "`x`", "| rows | 42 |", `| expr | a\|b |`} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestGridText(t *testing.T) {
	g := newGrid(6, 1)
	g.text(0, 0, "表a", 6)
	if got := g.String(); got != "表a   " {
		t.Errorf("wide rune = %q", got)
	}

	g = newGrid(6, 1)
	g.text(0, 0, "abcdefgh", 4)
	if got := g.String(); got != "abc…  " {
		t.Errorf("truncated = %q", got)
	}
}

func TestMinimapBar(t *testing.T) {
	mm := &render.MinimapView{Size: model.Size{Width: 200, Height: 100}}
	mm.Selection.Max.X = 100
	if got := minimapBar(mm, 12); got != "[█████─────]" {
		t.Errorf("bar = %q", got)
	}
	if got := minimapBar(nil, 12); got != "" {
		t.Errorf("nil minimap = %q", got)
	}
}
