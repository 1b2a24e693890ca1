// Package analysis computes structural statistics of a forest: size,
// depth, fan-out and the hub nodes that most root-to-leaf paths run
// through.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/vanderheijden86/flexview/pkg/model"
)

// MaxHubNodes is the largest forest for which hubs are computed. Above it
// Stats.Hubs is left empty.
const MaxHubNodes = 5000

// Hub is a node ranked by betweenness centrality.
type Hub struct {
	ID    string
	Name  string
	Score float64 // Number of ancestor-descendant paths through the node
}

// Stats summarizes a forest.
type Stats struct {
	Trees     int
	Nodes     int
	Leaves    int
	Collapsed int // Collapsible nodes that hide their children
	Detailed  int // Nodes showing their details
	MaxDepth  int // 0 for a forest of lone roots

	// Widest is the node with the most children; ties go to the first in
	// pre-order.
	Widest    string
	MaxFanOut int

	Hubs []Hub
}

// Compute walks the forest once and ranks the topK hubs.
func Compute(f *model.Forest, topK int) Stats {
	s := Stats{Trees: f.Len()}
	g := simple.NewDirectedGraph()
	index := make(map[int64]*model.TreeNode)

	var visit func(n *model.TreeNode, depth int) int64
	visit = func(n *model.TreeNode, depth int) int64 {
		id := int64(len(index))
		index[id] = n
		g.AddNode(simple.Node(id))

		s.Nodes++
		s.MaxDepth = max(s.MaxDepth, depth)
		if len(n.Children) == 0 {
			s.Leaves++
		}
		if n.Collapsed && n.Collapsible {
			s.Collapsed++
		}
		if n.DetailVisible {
			s.Detailed++
		}
		if len(n.Children) > s.MaxFanOut {
			s.MaxFanOut = len(n.Children)
			s.Widest = n.ID
		}
		for _, c := range n.Children {
			child := visit(c, depth+1)
			g.SetEdge(g.NewEdge(simple.Node(id), simple.Node(child)))
		}
		return id
	}
	for _, r := range f.Roots {
		visit(r, 0)
	}

	if topK <= 0 || s.Nodes > MaxHubNodes {
		return s
	}
	for id, score := range network.Betweenness(g) {
		if score <= 0 {
			continue
		}
		n := index[id]
		s.Hubs = append(s.Hubs, Hub{ID: n.ID, Name: n.Name, Score: score})
	}
	sort.Slice(s.Hubs, func(i, j int) bool {
		if s.Hubs[i].Score != s.Hubs[j].Score {
			return s.Hubs[i].Score > s.Hubs[j].Score
		}
		return s.Hubs[i].ID < s.Hubs[j].ID
	})
	if len(s.Hubs) > topK {
		s.Hubs = s.Hubs[:topK]
	}
	return s
}
