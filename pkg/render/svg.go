package render

import (
	"fmt"
	"html"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/flexview/pkg/arrange"
	"github.com/vanderheijden86/flexview/pkg/layout"
)

// SVG writes the scene as a standalone SVG document.
func SVG(w io.Writer, scene Scene) error {
	ew := &errWriter{w: w}
	th := scene.theme()
	c := scene.canvas()
	width, height := px(c.Width), px(c.Height)

	canvas := svg.New(ew)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:"+th.Background)

	canvas.Gtransform(scene.Transform.String())
	for _, pl := range scene.Arrangement.Placements {
		svgPlacement(canvas, pl, th)
	}
	canvas.Gend()

	if mm := scene.Minimap; mm != nil {
		o := scene.minimapOrigin()
		canvas.Gtransform(fmt.Sprintf("translate(%g,%g)", o.X, o.Y))
		canvas.Rect(0, 0, px(mm.Size.Width), px(mm.Size.Height),
			fmt.Sprintf("fill:%s;stroke:%s", th.Minimap, th.NodeStroke))
		canvas.Gtransform(fmt.Sprintf("scale(%g,%g)", mm.Ratio.X, mm.Ratio.Y))
		for _, pl := range scene.Arrangement.Placements {
			for _, n := range pl.Tree.Descendants() {
				b := pl.NodeBox(n)
				canvas.Rect(px(b.Min.X), px(b.Min.Y), px(b.Max.X-b.Min.X), px(b.Max.Y-b.Min.Y), "fill:"+th.NodeStroke)
			}
		}
		canvas.Gend()
		sel := mm.Selection
		canvas.Path(fmt.Sprintf("M%g,%g H%g V%g H%g Z", sel.Min.X, sel.Min.Y, sel.Max.X, sel.Max.Y, sel.Min.X),
			fmt.Sprintf(`class="brush" fill="%s" fill-opacity="0.15" stroke="%s"`, th.Brush, th.Brush))
		canvas.Gend()
	}

	canvas.End()
	return ew.err
}

func svgPlacement(canvas *svg.SVG, pl arrange.Placement, th Theme) {
	canvas.Gtransform(fmt.Sprintf("translate(%g,%g)", pl.Offset.X, pl.Offset.Y))
	for _, l := range pl.Tree.Links() {
		canvas.Path(linkPath(l), fmt.Sprintf(`fill="none" stroke="%s"`, th.Link))
	}
	fs := th.FontSize
	for _, n := range pl.Tree.Descendants() {
		fill := th.NodeFill
		if n.Node.DetailVisible {
			fill = th.DetailFill
		}
		canvas.Group(fmt.Sprintf(`class="node" data-id="%s"`, html.EscapeString(n.ID())))
		canvas.Rect(px(n.X), px(n.Y), px(n.Width), px(n.Height),
			fmt.Sprintf("fill:%s;stroke:%s", fill, th.NodeStroke))
		canvas.Text(px(n.X+n.Width/2), px(n.Y+fs*1.5), n.Node.Name,
			fmt.Sprintf("text-anchor:middle;font-size:%gpx;fill:%s", fs, th.Text))
		if a := affordance(n.Node); a != "" {
			c := center(ExpandHandle(n.Box()))
			canvas.Text(px(c.X), px(c.Y+fs/3), a,
				fmt.Sprintf(`class="expand" style="text-anchor:middle;font-size:%gpx;fill:%s"`, fs, th.Text))
			// Clickable over the whole handle square, not just the glyph.
			h := ExpandHandle(n.Box())
			canvas.Rect(px(h.Min.X), px(h.Min.Y), px(h.Max.X-h.Min.X), px(h.Max.Y-h.Min.Y), `class="expand" fill="transparent"`)
		}
		for i, line := range DetailLines(n.Node) {
			canvas.Text(px(n.X+fs/2), px(n.Y+fs*(3+1.3*float64(i))), line,
				fmt.Sprintf("font-size:%gpx;fill:%s", fs*0.85, th.Text))
		}
		canvas.Gend()
	}
	canvas.Gend()
}

func linkPath(l layout.Link) string {
	s, c1, c2, e := l.Curve()
	return fmt.Sprintf("M%g,%g C%g,%g %g,%g %g,%g", s.X, s.Y, c1.X, c1.Y, c2.X, c2.Y, e.X, e.Y)
}

func px(v float64) int {
	return int(math.Round(v))
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = fmt.Errorf("write svg: %w", err)
	}
	return n, err
}
