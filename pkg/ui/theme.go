// Package ui is the terminal front end: a bubbletea model that draws the
// diagram as a character canvas and maps keys and mouse to viewer events.
package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the terminal colors and styles.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor

	Selected lipgloss.Style
	Status   lipgloss.Style
	Border   lipgloss.Style
}

// DefaultTheme builds the styles for a renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#1f5fbf", Dark: "#7aa2f7"},
		Secondary: lipgloss.AdaptiveColor{Light: "#5b6b8c", Dark: "#9aa5ce"},
		Muted:     lipgloss.AdaptiveColor{Light: "#8a8f98", Dark: "#565f89"},
		Highlight: lipgloss.AdaptiveColor{Light: "#b35900", Dark: "#e0af68"},
		Error:     lipgloss.AdaptiveColor{Light: "#b3261e", Dark: "#f7768e"},
	}
	t.Selected = r.NewStyle().Foreground(t.Highlight).Bold(true)
	t.Status = r.NewStyle().Foreground(t.Secondary)
	t.Border = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(0, 1)
	return t
}
