package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/flexview/pkg/diagram"
	"github.com/vanderheijden86/flexview/pkg/model"
	"github.com/vanderheijden86/flexview/pkg/render"
)

// SplitViewThreshold is the terminal width above which details of the
// selected node are shown in a side pane.
const SplitViewThreshold = 120

const (
	panStep  = 80   // px per pan key press
	zoomStep = 1.25 // factor per zoom key press
	wheelDY  = 100  // deltaY per mouse wheel notch
)

// DocumentMsg delivers a (re)loaded document, typically from a file watcher.
type DocumentMsg struct {
	Raws []model.RawNode
	Err  error
}

type dragMode int

const (
	dragNone dragMode = iota
	dragPan
	dragBrush
)

// Model is the bubbletea model of the terminal viewer.
type Model struct {
	ctx    context.Context
	viewer *diagram.Viewer
	title  string

	theme    Theme
	keys     keyMap
	help     help.Model
	detail   viewport.Model
	renderer *glamour.TermRenderer

	order  []string // Visible node ids in pre-order
	cursor int

	width, height int
	canvasCols    int
	canvasRows    int
	isSplitView   bool
	ready         bool

	drag   dragMode
	slow   bool
	status string
	err    error

	copy func(string) error
}

// NewModel wraps a loaded viewer.
func NewModel(ctx context.Context, v *diagram.Viewer, title string) Model {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(60),
	)
	m := Model{
		ctx:      ctx,
		viewer:   v,
		title:    title,
		theme:    DefaultTheme(lipgloss.DefaultRenderer()),
		keys:     defaultKeyMap(),
		help:     help.New(),
		detail:   viewport.New(0, 0),
		renderer: r,
		copy:     clipboard.WriteAll,
	}
	m.refreshOrder("")
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the id of the selected node, or "" when there is none.
func (m Model) Selected() string {
	if m.cursor < 0 || m.cursor >= len(m.order) {
		return ""
	}
	return m.order[m.cursor]
}

// Err returns the last error, such as a failed reload.
func (m Model) Err() error { return m.err }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()

	case DocumentMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.status = "reload failed, showing previous document"
			break
		}
		selected := m.Selected()
		if err := m.viewer.Load(m.ctx, msg.Raws...); err != nil {
			m.err = err
			m.status = "reload failed, showing previous document"
			break
		}
		m.err = nil
		m.status = fmt.Sprintf("reloaded %d nodes", m.viewer.Forest().Count())
		m.refreshOrder(selected)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	m.updateDetail()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.viewer.Controller()
	vp := ctrl.Viewport()
	center := r2.Vec{X: vp.Width / 2, Y: vp.Height / 2}
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	case key.Matches(msg, m.keys.PanLeft):
		m.pan(r2.Vec{X: panStep})
	case key.Matches(msg, m.keys.PanRight):
		m.pan(r2.Vec{X: -panStep})
	case key.Matches(msg, m.keys.PanUp):
		m.pan(r2.Vec{Y: panStep})
	case key.Matches(msg, m.keys.PanDown):
		m.pan(r2.Vec{Y: -panStep})
	case key.Matches(msg, m.keys.ZoomIn):
		ctrl.ZoomBy(zoomStep, center)
	case key.Matches(msg, m.keys.ZoomOut):
		ctrl.ZoomBy(1/zoomStep, center)
	case key.Matches(msg, m.keys.Next):
		m.move(1)
	case key.Matches(msg, m.keys.Prev):
		m.move(-1)
	case key.Matches(msg, m.keys.Expand):
		if id := m.Selected(); id != "" {
			m.setErr(m.viewer.ToggleExpand(m.ctx, id))
			m.refreshOrder(id)
		}
	case key.Matches(msg, m.keys.Detail):
		if id := m.Selected(); id != "" {
			m.setErr(m.viewer.ToggleDetail(m.ctx, id))
		}
	case key.Matches(msg, m.keys.ExpandAll):
		m.setErr(m.viewer.ExpandAll(m.ctx))
		m.refreshOrder(m.Selected())
	case key.Matches(msg, m.keys.CollapseAll):
		m.setErr(m.viewer.CollapseAll(m.ctx))
		m.refreshOrder(m.Selected())
	case key.Matches(msg, m.keys.Fit):
		m.viewer.Fit()
	case key.Matches(msg, m.keys.Reset):
		ctrl.Reset()
	case key.Matches(msg, m.keys.Slow):
		m.slow = !m.slow
		ctrl.SetSlow(m.slow)
		m.status = fmt.Sprintf("transitions %s", ctrl.Duration())
	case key.Matches(msg, m.keys.Copy):
		if id := m.Selected(); id != "" {
			if err := m.copy(id); err != nil {
				m.status = fmt.Sprintf("copy failed: %v", err)
			} else {
				m.status = fmt.Sprintf("copied %s", id)
			}
		}
	}
	m.updateDetail()
	return m, nil
}

// pan drags the canvas by delta through the controller's gesture path so
// the translate constraint applies.
func (m *Model) pan(delta r2.Vec) {
	ctrl := m.viewer.Controller()
	vp := ctrl.Viewport()
	from := r2.Vec{X: vp.Width / 2, Y: vp.Height / 2}
	if !ctrl.PointerDown(from) {
		return
	}
	ctrl.PointerMove(r2.Add(from, delta))
	ctrl.PointerUp()
}

func (m *Model) move(step int) {
	if len(m.order) == 0 {
		return
	}
	m.cursor = (m.cursor + step + len(m.order)) % len(m.order)
	m.viewer.Focus(m.order[m.cursor])
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	ctrl := m.viewer.Controller()
	sync := m.viewer.Sync()
	// Row 0 is the header; the minimap bar sits right below the canvas.
	p := r2.Vec{
		X: (float64(msg.X) + 0.5) * cellWidth,
		Y: (float64(msg.Y-1) + 0.5) * cellHeight,
	}
	onBar := msg.Y == m.canvasRows+1
	mm := r2.Vec{}
	if m.canvasCols > 2 {
		size := sync.Size()
		mm = r2.Vec{
			X: (float64(msg.X-1) + 0.5) * size.Width / float64(m.canvasCols-2),
			Y: (sync.Brush().Selection().Min.Y + sync.Brush().Selection().Max.Y) / 2,
		}
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			ctrl.Wheel(p, -wheelDY)
		case tea.MouseButtonWheelDown:
			ctrl.Wheel(p, wheelDY)
		case tea.MouseButtonLeft:
			if onBar {
				if sync.PointerDown(mm) {
					m.drag = dragBrush
				}
				return
			}
			if h, ok := m.viewer.HitTest(p); ok {
				_, err := m.viewer.Click(m.ctx, p)
				m.setErr(err)
				m.refreshOrder(h.Node.ID())
				return
			}
			if ctrl.PointerDown(p) {
				m.drag = dragPan
			}
		}
	case tea.MouseActionMotion:
		switch m.drag {
		case dragPan:
			ctrl.PointerMove(p)
		case dragBrush:
			sync.PointerMove(mm)
		}
	case tea.MouseActionRelease:
		switch m.drag {
		case dragPan:
			ctrl.PointerUp()
		case dragBrush:
			sync.PointerUp()
		}
		m.drag = dragNone
	}
}

func (m *Model) setErr(err error) {
	if err != nil {
		m.err = err
	}
}

// refreshOrder recomputes the visible node order and keeps the cursor on
// keep when it is still visible.
func (m *Model) refreshOrder(keep string) {
	m.order = nil
	var visit func(n *model.TreeNode)
	visit = func(n *model.TreeNode) {
		m.order = append(m.order, n.ID)
		for _, c := range n.VisibleChildren() {
			visit(c)
		}
	}
	for _, r := range m.viewer.Forest().Roots {
		visit(r)
	}
	m.cursor = 0
	for i, id := range m.order {
		if id == keep {
			m.cursor = i
			break
		}
	}
}

// layout sizes the canvas and the detail pane for the terminal size and
// resizes the viewer to match.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	footer := lipgloss.Height(m.help.View(m.keys))
	rows := max(m.height-2-footer, 1) // header and minimap bar
	cols := m.width
	m.isSplitView = m.width > SplitViewThreshold
	if m.isSplitView {
		cols = int(float64(m.width) * 0.65)
		detailWidth := m.width - cols - 4 // border and padding
		m.detail = viewport.New(detailWidth, rows-2)
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(detailWidth),
		)
	}
	m.canvasCols, m.canvasRows = cols, rows
	size := model.Size{Width: float64(cols * cellWidth), Height: float64(rows * cellHeight)}
	m.setErr(m.viewer.Resize(m.ctx, size))
}

func (m *Model) updateDetail() {
	if !m.isSplitView {
		return
	}
	n, ok := m.viewer.Forest().Find(m.Selected())
	if !ok {
		m.detail.SetContent("")
		return
	}
	md := nodeMarkdown(n)
	if m.renderer != nil {
		if out, err := m.renderer.Render(md); err == nil {
			md = out
		}
	}
	m.detail.SetContent(md)
}

// nodeMarkdown describes a node for the detail pane.
func nodeMarkdown(n *model.TreeNode) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n`%s`\n\n", n.Name, n.ID)
	if len(n.Children) > 0 {
		state := "expanded"
		if n.Collapsed {
			state = "collapsed"
		}
		fmt.Fprintf(&sb, "%d children, %s\n\n", len(n.Children), state)
	}
	if len(n.Fields) > 0 {
		sb.WriteString("| Field | Value |\n|---|---|\n")
		for _, line := range fieldRows(n) {
			sb.WriteString(line)
		}
	}
	return sb.String()
}

func fieldRows(n *model.TreeNode) []string {
	shown := *n
	shown.DetailVisible = true
	var rows []string
	for _, line := range render.DetailLines(&shown) {
		k, v, _ := strings.Cut(line, ": ")
		rows = append(rows, fmt.Sprintf("| %s | %s |\n", k, strings.ReplaceAll(v, "|", `\|`)))
	}
	return rows
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	t := m.viewer.Controller().Transform()
	header := m.theme.Renderer.NewStyle().Foreground(m.theme.Primary).Bold(true).Render(" fv · "+m.title) +
		m.theme.Status.Render(fmt.Sprintf("  %d nodes  zoom %.2f  %s", m.viewer.Forest().Count(), t.K, m.Selected()))

	canvas := rasterize(m.viewer.Scene(), m.canvasCols, m.canvasRows, m.Selected()).String()
	if m.isSplitView {
		pane := m.theme.Border.Height(m.canvasRows - 2).Render(m.detail.View())
		canvas = lipgloss.JoinHorizontal(lipgloss.Top, canvas, pane)
	}

	bar := m.theme.Status.Render(minimapBar(m.viewer.Scene().Minimap, m.canvasCols))

	var footer string
	switch {
	case m.err != nil:
		footer = m.theme.Renderer.NewStyle().Foreground(m.theme.Error).Render("error: " + m.err.Error())
	case m.status != "":
		footer = m.theme.Status.Render(m.status)
	default:
		footer = m.help.View(m.keys)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, canvas, bar, footer)
}
