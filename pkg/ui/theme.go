package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the chrome colours. The chart itself is drawn with the
// render palette.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Match     lipgloss.AdaptiveColor
	Selected  lipgloss.AdaptiveColor
	StatusBg  lipgloss.AdaptiveColor
}

// DefaultTheme returns the standard theme for renderer r (nil selects the
// default renderer).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"},
		Secondary: lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#9CA3AF"},
		Border:    lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#374151"},
		Match:     lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"},
		Selected:  lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1E3A8A"},
		StatusBg:  lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#111827"},
	}
}
