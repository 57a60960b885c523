package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// helpSection groups key bindings under a heading.
type helpSection struct {
	title string
	keys  [][2]string
}

var helpSections = []helpSection{
	{"Chart", [][2]string{
		{"h j k l", "pan"},
		{"+ / -", "zoom in / out"},
		{"0", "back to the whole market"},
		{"wheel", "zoom at the pointer"},
		{"drag", "pan"},
		{"y", "copy the hovered ISIN"},
	}},
	{"Search", [][2]string{
		{"/", "focus the search box"},
		{"↑ / ↓", "move through suggestions"},
		{"enter", "zoom to the selection"},
		{"esc", "clear and zoom out"},
	}},
	{"", [][2]string{
		{"?", "toggle this help"},
		{"q", "quit"},
	}},
}

// RenderHelp renders the key binding modal centred in width x height.
func RenderHelp(theme Theme, width, height int) string {
	r := theme.Renderer

	modalWidth := min(48, max(width-4, 20))

	titleStyle := r.NewStyle().Bold(true).Foreground(theme.Primary)
	headStyle := r.NewStyle().Bold(true).Foreground(theme.Secondary)
	keyStyle := r.NewStyle().Foreground(theme.Match).Width(10)
	descStyle := r.NewStyle().Foreground(theme.Subtext)
	footerStyle := r.NewStyle().Foreground(theme.Subtext).Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys"))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", modalWidth-6)))
	b.WriteString("\n")
	for _, s := range helpSections {
		b.WriteString("\n")
		if s.title != "" {
			b.WriteString(headStyle.Render(s.title))
			b.WriteString("\n")
		}
		for _, kv := range s.keys {
			b.WriteString("  " + keyStyle.Render(kv[0]) + descStyle.Render(kv[1]) + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("? or esc to close"))

	modal := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(1, 2).
		Width(modalWidth).
		Render(b.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}
