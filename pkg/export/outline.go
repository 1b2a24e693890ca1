package export

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/vanderheijden86/flexview/pkg/analysis"
	"github.com/vanderheijden86/flexview/pkg/model"
)

// outlineHubs is how many hub nodes the outline lists.
const outlineHubs = 5

// GenerateOutline renders the forest as a markdown report: a summary, the
// hub nodes, a mermaid graph of the visible tree and a nested outline of
// every node.
func GenerateOutline(f *model.Forest, title string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	sb.WriteString("## Summary\n\n")
	stats := analysis.Compute(f, outlineHubs)
	sb.WriteString(fmt.Sprintf("- **Trees**: %d\n", stats.Trees))
	sb.WriteString(fmt.Sprintf("- **Nodes**: %d\n", stats.Nodes))
	sb.WriteString(fmt.Sprintf("- **Leaves**: %d\n", stats.Leaves))
	sb.WriteString(fmt.Sprintf("- **Deepest level**: %d\n", stats.MaxDepth))
	if stats.Widest != "" {
		w, _ := f.Find(stats.Widest)
		sb.WriteString(fmt.Sprintf("- **Widest node**: %s (%d children)\n", w.Name, stats.MaxFanOut))
	}
	sb.WriteString(fmt.Sprintf("- **Collapsed**: %d\n", stats.Collapsed))
	sb.WriteString(fmt.Sprintf("- **Showing details**: %d\n\n", stats.Detailed))

	if len(stats.Hubs) > 0 {
		sb.WriteString("## Hubs\n\n")
		sb.WriteString("| Node | Paths through |\n|------|---------------|\n")
		for _, h := range stats.Hubs {
			sb.WriteString(fmt.Sprintf("| %s `%s` | %.0f |\n", h.Name, h.ID, h.Score))
		}
		sb.WriteString("\n")
	}

	// Only what the diagram currently shows goes into the graph.
	sb.WriteString("## Graph\n\n")
	sb.WriteString("```mermaid\ngraph LR\n")
	aliases := make(map[string]string)
	alias := func(id string) string {
		if a, ok := aliases[id]; ok {
			return a
		}
		a := fmt.Sprintf("n%d", len(aliases))
		aliases[id] = a
		return a
	}
	var graph func(n *model.TreeNode)
	graph = func(n *model.TreeNode) {
		label := mermaidLabel(n.Name)
		if n.Collapsed && n.Collapsible {
			sb.WriteString(fmt.Sprintf("    %s[\"%s (+%d)\"]\n", alias(n.ID), label, len(n.Children)))
		} else {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", alias(n.ID), label))
		}
		for _, c := range n.VisibleChildren() {
			graph(c)
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", alias(n.ID), alias(c.ID)))
		}
	}
	for _, r := range f.Roots {
		graph(r)
	}
	if len(f.Roots) == 0 {
		sb.WriteString("    Empty[No Nodes]\n")
	}
	sb.WriteString("```\n\n")

	sb.WriteString("## Outline\n\n")
	f.Walk(func(n *model.TreeNode, depth int) bool {
		indent := strings.Repeat("  ", depth)
		marker := ""
		if n.Collapsed && n.Collapsible {
			marker = " _(collapsed)_"
		}
		sb.WriteString(fmt.Sprintf("%s- **%s**%s `%s`\n", indent, n.Name, marker, n.ID))
		for _, k := range sortedKeys(n.Fields) {
			sb.WriteString(fmt.Sprintf("%s  - %s: %v\n", indent, k, n.Fields[k]))
		}
		return true
	})

	return sb.String()
}

// SaveOutline writes the markdown outline to a file
func SaveOutline(f *model.Forest, title, filename string) error {
	return os.WriteFile(filename, []byte(GenerateOutline(f, title)), 0o644)
}

// mermaidLabel sanitizes a name for a quoted mermaid label.
func mermaidLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.NewReplacer("[", "", "]", "", "(", "", ")", "", "\n", " ").Replace(s)
	if r := []rune(s); len(r) > 30 {
		s = string(r[:27]) + "..."
	}
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
