package export

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/flexview/pkg/arrange"
	"github.com/vanderheijden86/flexview/pkg/model"
)

// layoutDoc is the JSON shape of an arrangement.
type layoutDoc struct {
	World model.Size   `json:"world"`
	Trees []layoutTree `json:"trees"`
}

type layoutTree struct {
	Root   string       `json:"root"`
	Offset [2]float64   `json:"offset"`
	Bounds [4]float64   `json:"bounds"` // minX, minY, maxX, maxY in world space
	Nodes  []layoutNode `json:"nodes"`
	Links  []layoutLink `json:"links"`
}

type layoutNode struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	X             float64        `json:"x"`
	Y             float64        `json:"y"`
	Width         float64        `json:"width"`
	Height        float64        `json:"height"`
	Depth         int            `json:"depth"`
	Collapsed     bool           `json:"collapsed,omitempty"`
	Collapsible   bool           `json:"collapsible,omitempty"`
	DetailVisible bool           `json:"detail_visible,omitempty"`
	Fields        map[string]any `json:"fields,omitempty"`
}

type layoutLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Path   string `json:"path"` // SVG path data in world space
}

// LayoutJSON serializes the world geometry: node boxes in world
// coordinates and link curves as SVG path data.
func LayoutJSON(arr arrange.Arrangement) ([]byte, error) {
	doc := layoutDoc{World: arr.World, Trees: make([]layoutTree, 0, len(arr.Placements))}
	for _, pl := range arr.Placements {
		lt := layoutTree{
			Root:   pl.Tree.Root.ID(),
			Offset: [2]float64{pl.Offset.X, pl.Offset.Y},
			Bounds: [4]float64{pl.Bounds.Min.X, pl.Bounds.Min.Y, pl.Bounds.Max.X, pl.Bounds.Max.Y},
		}
		for _, n := range pl.Tree.Descendants() {
			b := pl.NodeBox(n)
			lt.Nodes = append(lt.Nodes, layoutNode{
				ID:            n.ID(),
				Name:          n.Node.Name,
				X:             b.Min.X,
				Y:             b.Min.Y,
				Width:         n.Width,
				Height:        n.Height,
				Depth:         n.Depth,
				Collapsed:     n.Node.Collapsed,
				Collapsible:   n.Node.Collapsible,
				DetailVisible: n.Node.DetailVisible,
				Fields:        n.Node.Fields,
			})
		}
		for _, l := range pl.Tree.Links() {
			s, c1, c2, e := l.Curve()
			o := pl.Offset
			lt.Links = append(lt.Links, layoutLink{
				Source: l.Source.ID(),
				Target: l.Target.ID(),
				Path: fmt.Sprintf("M%g,%g C%g,%g %g,%g %g,%g",
					s.X+o.X, s.Y+o.Y, c1.X+o.X, c1.Y+o.Y, c2.X+o.X, c2.Y+o.Y, e.X+o.X, e.Y+o.Y),
			})
		}
		doc.Trees = append(doc.Trees, lt)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}
	return data, nil
}
