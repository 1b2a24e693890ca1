package ui

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/flexview/pkg/render"
)

// One terminal cell covers this many screen pixels.
const (
	cellWidth  = 10
	cellHeight = 20
)

// wideFiller marks the second cell of a double-width rune.
const wideFiller = -1

type grid struct {
	cols, rows int
	cells      [][]rune
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: max(cols, 0), rows: max(rows, 0)}
	g.cells = make([][]rune, g.rows)
	for y := range g.cells {
		g.cells[y] = []rune(strings.Repeat(" ", g.cols))
	}
	return g
}

func (g *grid) set(x, y int, r rune) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return
	}
	g.cells[y][x] = r
}

func (g *grid) get(x, y int) rune {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return 0
	}
	return g.cells[y][x]
}

// text writes s starting at (x, y), clipped to maxWidth display columns.
func (g *grid) text(x, y int, s string, maxWidth int) {
	if maxWidth <= 0 {
		return
	}
	s = runewidth.Truncate(s, maxWidth, "…")
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		g.set(x, y, r)
		if w == 2 {
			g.set(x+1, y, wideFiller)
		}
		x += max(w, 1)
	}
}

func (g *grid) box(x0, y0, x1, y1 int, double bool) {
	h, v, tl, tr, bl, br := '─', '│', '┌', '┐', '└', '┘'
	if double {
		h, v, tl, tr, bl, br = '═', '║', '╔', '╗', '╚', '╝'
	}
	for x := x0 + 1; x < x1; x++ {
		g.set(x, y0, h)
		g.set(x, y1, h)
	}
	for y := y0 + 1; y < y1; y++ {
		g.set(x0, y, v)
		g.set(x1, y, v)
		for x := x0 + 1; x < x1; x++ {
			g.set(x, y, ' ')
		}
	}
	g.set(x0, y0, tl)
	g.set(x1, y0, tr)
	g.set(x0, y1, bl)
	g.set(x1, y1, br)
}

func (g *grid) String() string {
	var sb strings.Builder
	for y, row := range g.cells {
		for _, r := range row {
			if r != wideFiller {
				sb.WriteRune(r)
			}
		}
		if y < len(g.cells)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func toCell(p r2.Vec) (int, int) {
	return int(math.Floor(p.X / cellWidth)), int(math.Floor(p.Y / cellHeight))
}

// rasterize draws a scene onto a cols×rows character grid. Links are
// dotted bezier samples; nodes are boxes with their name, expand marker and
// as many detail lines as fit. The selected node gets a double border.
func rasterize(scene render.Scene, cols, rows int, selected string) *grid {
	g := newGrid(cols, rows)
	t := scene.Transform

	for _, pl := range scene.Arrangement.Placements {
		for _, l := range pl.Tree.Links() {
			s, c1, c2, e := l.Curve()
			const samples = 32
			for i := 0; i <= samples; i++ {
				p := bezier(s, c1, c2, e, float64(i)/samples)
				x, y := toCell(t.Apply(r2.Add(p, pl.Offset)))
				if g.get(x, y) == ' ' {
					g.set(x, y, '·')
				}
			}
		}
	}

	for _, pl := range scene.Arrangement.Placements {
		for _, n := range pl.Tree.Descendants() {
			b := pl.NodeBox(n)
			x0, y0 := toCell(t.Apply(b.Min))
			x1, y1 := toCell(t.Apply(b.Max))
			x1, y1 = max(x1-1, x0+2), max(y1-1, y0+2)
			g.box(x0, y0, x1, y1, n.ID() == selected)

			inner := x1 - x0 - 1
			label := n.Node.Name
			if n.Node.Collapsible {
				marker := "▾ "
				if n.Node.Collapsed {
					marker = "▸ "
				}
				label = marker + label
			}
			g.text(x0+1, y0+1, label, inner)
			if !n.Node.DetailVisible {
				continue
			}
			for i, line := range render.DetailLines(n.Node) {
				y := y0 + 2 + i
				if y >= y1 {
					break
				}
				g.text(x0+1, y, line, inner)
			}
		}
	}
	return g
}

func bezier(p0, p1, p2, p3 r2.Vec, t float64) r2.Vec {
	u := 1 - t
	return r2.Add(
		r2.Add(r2.Scale(u*u*u, p0), r2.Scale(3*u*u*t, p1)),
		r2.Add(r2.Scale(3*u*t*t, p2), r2.Scale(t*t*t, p3)),
	)
}

// minimapBar renders the brush's horizontal extent over the minimap as a
// one-line bar of the given width.
func minimapBar(mm *render.MinimapView, width int) string {
	if mm == nil || width <= 2 || mm.Size.Width <= 0 {
		return ""
	}
	inner := width - 2
	scale := float64(inner) / mm.Size.Width
	from := int(math.Floor(mm.Selection.Min.X * scale))
	to := int(math.Ceil(mm.Selection.Max.X * scale))
	from = max(0, min(inner-1, from))
	to = max(from+1, min(inner, to))
	return "[" + strings.Repeat("─", from) + strings.Repeat("█", to-from) + strings.Repeat("─", inner-to) + "]"
}
