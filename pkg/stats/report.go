package stats

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
)

// Markdown creates a markdown report of s.
func Markdown(s Summary, title string, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC1123)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Companies**: %d\n", s.Count))
	sb.WriteString(fmt.Sprintf("- **With market cap**: %d\n", s.Valid))
	sb.WriteString(fmt.Sprintf("- **Total**: %s\n", crore(s.Total)))
	sb.WriteString(fmt.Sprintf("- **Mean**: %s\n", crore(s.Mean)))
	sb.WriteString(fmt.Sprintf("- **Median**: %s\n", crore(s.Median)))
	sb.WriteString(fmt.Sprintf("- **Std dev**: %s\n\n", crore(s.StdDev)))

	if len(s.Largest) > 0 {
		sb.WriteString("## Largest\n\n")
		sb.WriteString("| # | Company | Market cap |\n")
		sb.WriteString("|---|---|---|\n")
		for i, l := range s.Largest {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s |\n", i+1, cell(l.Name), crore(l.MarketCap)))
		}
		sb.WriteString("\n")
	}

	if len(s.Sectors) > 0 {
		sb.WriteString("## Sectors\n\n")
		sb.WriteString("| Sector | Companies | Market cap | Share |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, sec := range s.Sectors {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %.1f%% |\n",
				cell(sec.Sector), sec.Companies, crore(sec.MarketCap), sec.Share*100))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Render formats markdown for a terminal of the given width.
func Render(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func crore(v float64) string {
	return "₹" + humanize.Comma(int64(math.Round(v))) + " Cr"
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
