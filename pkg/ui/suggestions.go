package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/bubblecap/pkg/search"
)

// suggestionLines renders the suggestion list shown under the search box,
// matched characters highlighted.
func (m Model) suggestionLines() []string {
	matches := m.session.Suggestions()
	if len(matches) == 0 {
		return nil
	}
	t := m.theme
	cursor, hasCursor := m.session.Cursor()

	width := min(m.width, 72)
	lines := make([]string, 0, len(matches))
	for i, match := range matches {
		selected := hasCursor && i == cursor

		base := t.Renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#111111", Dark: "#F9FAFB"})
		if selected {
			base = base.Background(t.Selected)
		}
		hit := base.Foreground(t.Match).Bold(true)
		dim := base.Foreground(t.Subtext)

		var sb strings.Builder
		if selected {
			sb.WriteString(base.Render("▸ "))
		} else {
			sb.WriteString(base.Render("  "))
		}
		sb.WriteString(renderSegments(match.Record.Name, match.Ranges[search.FieldName], base, hit))
		if sym := string(match.Record.NSESymbol); sym != "" {
			sb.WriteString(dim.Render("  NSE "))
			sb.WriteString(renderSegments(sym, match.Ranges[search.FieldNSE], dim, hit))
		}
		if code := string(match.Record.BSECode); code != "" {
			sb.WriteString(dim.Render("  BSE "))
			sb.WriteString(renderSegments(code, match.Ranges[search.FieldBSE], dim, hit))
		}

		line := sb.String()
		pad := max(width-lipgloss.Width(line), 0)
		lines = append(lines, lipgloss.NewStyle().MaxWidth(width).Render(line+base.Render(strings.Repeat(" ", pad))))
	}
	return lines
}

func renderSegments(text string, ranges []search.Range, plain, hit lipgloss.Style) string {
	var sb strings.Builder
	for _, seg := range search.Highlight(text, ranges) {
		if seg.Matched {
			sb.WriteString(hit.Render(seg.Text))
		} else {
			sb.WriteString(plain.Render(seg.Text))
		}
	}
	return sb.String()
}
