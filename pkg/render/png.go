package render

import (
	"fmt"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"

	"github.com/vanderheijden86/flexview/pkg/arrange"
)

// PNG rasterizes the scene.
func PNG(w io.Writer, scene Scene) error {
	th := scene.theme()
	c := scene.canvas()
	width, height := max(px(c.Width), 1), max(px(c.Height), 1)

	face, err := monoFace(th.FontSize)
	if err != nil {
		return err
	}
	defer face.Close()

	dc := gg.NewContext(width, height)
	dc.SetHexColor(th.Background)
	dc.Clear()
	dc.SetFontFace(face)

	t := scene.Transform
	dc.Push()
	dc.Translate(t.X, t.Y)
	dc.Scale(t.K, t.K)
	for _, pl := range scene.Arrangement.Placements {
		pngPlacement(dc, pl, th)
	}
	dc.Pop()

	if mm := scene.Minimap; mm != nil {
		o := scene.minimapOrigin()
		dc.Push()
		dc.Translate(o.X, o.Y)
		dc.DrawRectangle(0, 0, mm.Size.Width, mm.Size.Height)
		dc.SetHexColor(th.Minimap)
		dc.FillPreserve()
		dc.SetHexColor(th.NodeStroke)
		dc.SetLineWidth(1)
		dc.Stroke()
		for _, pl := range scene.Arrangement.Placements {
			for _, n := range pl.Tree.Descendants() {
				b := pl.NodeBox(n)
				dc.DrawRectangle(b.Min.X*mm.Ratio.X, b.Min.Y*mm.Ratio.Y,
					(b.Max.X-b.Min.X)*mm.Ratio.X, (b.Max.Y-b.Min.Y)*mm.Ratio.Y)
			}
		}
		dc.SetHexColor(th.NodeStroke)
		dc.Fill()
		sel := mm.Selection
		dc.DrawRectangle(sel.Min.X, sel.Min.Y, sel.Max.X-sel.Min.X, sel.Max.Y-sel.Min.Y)
		dc.SetHexColor(th.Brush)
		dc.Stroke()
		dc.Pop()
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func pngPlacement(dc *gg.Context, pl arrange.Placement, th Theme) {
	dc.Push()
	dc.Translate(pl.Offset.X, pl.Offset.Y)

	dc.SetHexColor(th.Link)
	dc.SetLineWidth(1.5)
	for _, l := range pl.Tree.Links() {
		s, c1, c2, e := l.Curve()
		dc.MoveTo(s.X, s.Y)
		dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, e.X, e.Y)
		dc.Stroke()
	}

	fs := th.FontSize
	for _, n := range pl.Tree.Descendants() {
		dc.DrawRectangle(n.X, n.Y, n.Width, n.Height)
		if n.Node.DetailVisible {
			dc.SetHexColor(th.DetailFill)
		} else {
			dc.SetHexColor(th.NodeFill)
		}
		dc.FillPreserve()
		dc.SetHexColor(th.NodeStroke)
		dc.SetLineWidth(1)
		dc.Stroke()

		dc.SetHexColor(th.Text)
		dc.DrawStringAnchored(n.Node.Name, n.X+n.Width/2, n.Y+fs*1.5, 0.5, 0.5)
		if a := affordance(n.Node); a != "" {
			c := center(ExpandHandle(n.Box()))
			dc.DrawStringAnchored(a, c.X, c.Y, 0.5, 0.5)
		}
		for i, line := range DetailLines(n.Node) {
			dc.DrawString(line, n.X+fs/2, n.Y+fs*(3+1.3*float64(i)))
		}
	}
	dc.Pop()
}

func monoFace(size float64) (font.Face, error) {
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("load font face: %w", err)
	}
	return face, nil
}
